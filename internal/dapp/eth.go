package dapp

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/frostlabs/frostgate/internal/wallet"
)

// defaultTransferGas is the gas limit for a plain value transfer.
const defaultTransferGas = 21000

// EVMConn is the node connection an EVM transaction approval needs.
type EVMConn interface {
	ChainID() *big.Int
	PendingNonce(ctx context.Context, addr common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	Broadcast(ctx context.Context, tx *ethtypes.Transaction) (common.Hash, error)
}

// EthHandler serves the eth_ transaction and signing methods.
type EthHandler struct {
	wallet  *wallet.Service
	connect func(ctx context.Context) (EVMConn, error)
}

// NewEthHandler creates the EVM method handler. connect dials the active
// network's node on demand.
func NewEthHandler(w *wallet.Service, connect func(ctx context.Context) (EVMConn, error)) *EthHandler {
	return &EthHandler{wallet: w, connect: connect}
}

func (h *EthHandler) Methods() []string {
	return []string{
		MethodEthSendTransaction,
		MethodEthSign,
		MethodPersonalSign,
		MethodEthSignTypedData,
		MethodEthSignTypedDataV1,
		MethodEthSignTypedDataV3,
		MethodEthSignTypedDataV4,
	}
}

// ethTxParams is the transaction object of eth_sendTransaction.
type ethTxParams struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      *hexutil.Uint64 `json:"gas,omitempty"`
	GasPrice *hexutil.Big    `json:"gasPrice,omitempty"`
	Value    *hexutil.Big    `json:"value,omitempty"`
	Data     hexutil.Bytes   `json:"data,omitempty"`
	Nonce    *hexutil.Uint64 `json:"nonce,omitempty"`
}

// signApproval is the parked state for a signing request.
type signApproval struct {
	Method  string `json:"method"`
	Address string `json:"address"`
	Data    string `json:"data"`
}

func (h *EthHandler) Handle(ctx context.Context, req *Request) Outcome {
	if req.Method == MethodEthSendTransaction {
		return h.handleSendTransaction(req)
	}
	return h.handleSign(req)
}

func (h *EthHandler) handleSendTransaction(req *Request) Outcome {
	var params []ethTxParams
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return Failed(rpcErr)
	}
	if len(params) == 0 {
		return Failed(ErrInvalidParams("transaction object is required"))
	}
	tx := params[0]

	active, err := h.wallet.ActiveAccount()
	if err != nil {
		return Failed(ErrInternal(err))
	}
	if tx.From != active.EVMAddress {
		return Failed(ErrInvalidParams("from address %s is not the active account", tx.From.Hex()))
	}
	if tx.To == nil && len(tx.Data) == 0 {
		return Failed(ErrInvalidParams("transaction needs a recipient or contract code"))
	}
	if tx.Gas == nil && len(tx.Data) > 0 {
		return Failed(ErrInvalidParams("gas is required for contract calls"))
	}

	return Pending(tx)
}

// handleSign parks message signing requests. Params arrive positionally;
// personal_sign and the v1 typed variant put the data first, the rest put
// the address first.
func (h *EthHandler) handleSign(req *Request) Outcome {
	var params []json.RawMessage
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return Failed(rpcErr)
	}
	if len(params) < 2 {
		return Failed(ErrInvalidParams("%s requires address and data", req.Method))
	}

	dataIdx, addrIdx := 1, 0
	if req.Method == MethodPersonalSign || req.Method == MethodEthSignTypedDataV1 || req.Method == MethodEthSignTypedData {
		dataIdx, addrIdx = 0, 1
	}

	var addr string
	if err := json.Unmarshal(params[addrIdx], &addr); err != nil {
		return Failed(ErrInvalidParams("malformed address: %v", err))
	}

	active, err := h.wallet.ActiveAccount()
	if err != nil {
		return Failed(ErrInternal(err))
	}
	if !strings.EqualFold(addr, active.EVMAddress.Hex()) {
		return Failed(ErrInvalidParams("address %s is not the active account", addr))
	}

	// Typed data params are JSON objects sent as strings or inline.
	var data string
	if err := json.Unmarshal(params[dataIdx], &data); err != nil {
		data = string(params[dataIdx])
	}

	return Pending(signApproval{Method: req.Method, Address: addr, Data: data})
}

func (h *EthHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	if req.Method == MethodEthSendTransaction {
		return h.approveSendTransaction(ctx, displayData)
	}
	return h.approveSign(displayData)
}

func (h *EthHandler) approveSendTransaction(ctx context.Context, displayData interface{}) Outcome {
	p, err := decodeDisplayData[ethTxParams](displayData)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	conn, err := h.connect(ctx)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	var nonce uint64
	if p.Nonce != nil {
		nonce = uint64(*p.Nonce)
	} else {
		nonce, err = conn.PendingNonce(ctx, p.From)
		if err != nil {
			return Failed(ErrInternal(err))
		}
	}

	gasPrice := new(big.Int)
	if p.GasPrice != nil {
		gasPrice = (*big.Int)(p.GasPrice)
	} else {
		gasPrice, err = conn.SuggestGasPrice(ctx)
		if err != nil {
			return Failed(ErrInternal(err))
		}
	}

	gas := uint64(defaultTransferGas)
	if p.Gas != nil {
		gas = uint64(*p.Gas)
	}

	value := new(big.Int)
	if p.Value != nil {
		value = (*big.Int)(p.Value)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       p.To,
		Value:    value,
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     p.Data,
	})

	signed, err := h.wallet.SignEVMTx(tx, conn.ChainID())
	if err != nil {
		return Failed(ErrInternal(err))
	}

	hash, err := conn.Broadcast(ctx, signed)
	if err != nil {
		return Failed(ErrInternal(err))
	}
	return Resolved(hash.Hex())
}

func (h *EthHandler) approveSign(displayData interface{}) Outcome {
	p, err := decodeDisplayData[signApproval](displayData)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	var sig []byte
	switch p.Method {
	case MethodEthSignTypedDataV3, MethodEthSignTypedDataV4:
		var typed apitypes.TypedData
		if err := json.Unmarshal([]byte(p.Data), &typed); err != nil {
			return Failed(ErrInvalidParams("malformed typed data: %v", err))
		}
		digest, _, err := apitypes.TypedDataAndHash(typed)
		if err != nil {
			return Failed(ErrInvalidParams("hash typed data: %v", err))
		}
		sig, err = h.wallet.SignDigest(digest)
		if err != nil {
			return Failed(ErrInternal(err))
		}
	default:
		// personal_sign, eth_sign, and the v1 typed variant all sign the
		// EIP-191 prefixed payload.
		data, err := decodeSignData(p.Data)
		if err != nil {
			return Failed(ErrInvalidParams("malformed sign data: %v", err))
		}
		sig, err = h.wallet.SignPersonalMessage(data)
		if err != nil {
			return Failed(ErrInternal(err))
		}
	}

	return Resolved(hexutil.Encode(sig))
}

// decodeSignData interprets sign payloads: hex when 0x-prefixed,
// raw UTF-8 otherwise.
func decodeSignData(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") {
		return hexutil.Decode(s)
	}
	return []byte(s), nil
}
