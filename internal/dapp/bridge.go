package dapp

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/frostlabs/frostgate/internal/wallet"
)

// BridgeHandler serves avalanche_bridgeAsset: moving an asset across the
// bridge by transferring it to the bridge custody address.
type BridgeHandler struct {
	wallet  *wallet.Service
	connect func(ctx context.Context) (EVMConn, error)
	custody common.Address
}

// NewBridgeHandler creates the bridge handler. custody is the bridge
// custody address assets are transferred to.
func NewBridgeHandler(w *wallet.Service, connect func(ctx context.Context) (EVMConn, error), custody common.Address) *BridgeHandler {
	return &BridgeHandler{wallet: w, connect: connect, custody: custody}
}

func (h *BridgeHandler) Methods() []string {
	return []string{MethodAvalancheBridgeAsset}
}

// bridgeParams describes the requested transfer.
type bridgeParams struct {
	Asset       string       `json:"asset"`
	Amount      *hexutil.Big `json:"amount"`
	TargetChain string       `json:"targetChain"`
}

func (h *BridgeHandler) Handle(ctx context.Context, req *Request) Outcome {
	var params bridgeParams
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return Failed(rpcErr)
	}
	if params.Asset == "" {
		return Failed(ErrInvalidParams("asset is required"))
	}
	if params.Amount == nil || (*big.Int)(params.Amount).Sign() <= 0 {
		return Failed(ErrInvalidParams("amount must be positive"))
	}
	if params.TargetChain == "" {
		return Failed(ErrInvalidParams("targetChain is required"))
	}
	if h.custody == (common.Address{}) {
		return Failed(ErrInvalidParams("bridge is not configured"))
	}
	return Pending(params)
}

func (h *BridgeHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	params, err := decodeDisplayData[bridgeParams](displayData)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	active, err := h.wallet.ActiveAccount()
	if err != nil {
		return Failed(ErrInternal(err))
	}

	conn, err := h.connect(ctx)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	nonce, err := conn.PendingNonce(ctx, active.EVMAddress)
	if err != nil {
		return Failed(ErrInternal(err))
	}
	gasPrice, err := conn.SuggestGasPrice(ctx)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	custody := h.custody
	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &custody,
		Value:    (*big.Int)(params.Amount),
		Gas:      defaultTransferGas,
		GasPrice: gasPrice,
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
