package dapp

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/frostlabs/frostgate/internal/signer"
	"github.com/frostlabs/frostgate/internal/wallet"
	"github.com/frostlabs/frostgate/pkg/avax"
	"github.com/frostlabs/frostgate/pkg/types"
)

// TxIssuer submits signed transaction bytes to an X or P chain.
type TxIssuer interface {
	IssueTx(ctx context.Context, alias types.ChainAlias, txHex string) (string, error)
}

// AvaxHandler serves avalanche_sendTransaction and avalanche_signTransaction:
// UTXO transactions that may carry co-signer signatures in either direction.
type AvaxHandler struct {
	wallet *wallet.Service
	issuer TxIssuer
}

// NewAvaxHandler creates the UTXO transaction handler.
func NewAvaxHandler(w *wallet.Service, issuer TxIssuer) *AvaxHandler {
	return &AvaxHandler{wallet: w, issuer: issuer}
}

func (h *AvaxHandler) Methods() []string {
	return []string{
		MethodAvalancheSendTransaction,
		MethodAvalancheSignTransaction,
	}
}

// avaxTxParams is the parameter object shared by both methods.
type avaxTxParams struct {
	TransactionHex  string   `json:"transactionHex"`
	ChainAlias      string   `json:"chainAlias"`
	ExternalIndices []uint32 `json:"externalIndices,omitempty"`
	InternalIndices []uint32 `json:"internalIndices,omitempty"`
}

// avaxApproval is the parked state for a UTXO signing request.
type avaxApproval struct {
	Params avaxTxParams `json:"params"`

	// Display fields for the approval UI.
	TxID            string   `json:"txId"`
	Chain           string   `json:"chainAlias"`
	FromAddresses   []string `json:"fromAddresses"`
	PartiallySigned bool     `json:"partiallySigned"`
}

func (h *AvaxHandler) Handle(ctx context.Context, req *Request) Outcome {
	var params avaxTxParams
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return Failed(rpcErr)
	}

	sr, rpcErr := h.buildRequest(params)
	if rpcErr != nil {
		return Failed(rpcErr)
	}

	from := make([]string, 0, len(sr.FromAddresses))
	for _, a := range sr.FromAddresses {
		enc, err := types.EncodeAddress(sr.Chain, types.MainnetHRP, a)
		if err != nil {
			return Failed(ErrInternal(err))
		}
		from = append(from, enc)
	}

	return Pending(avaxApproval{
		Params:          params,
		TxID:            sr.Unsigned.Tx.ID().String(),
		Chain:           string(sr.Chain),
		FromAddresses:   from,
		PartiallySigned: sr.PartiallySigned,
	})
}

// buildRequest parses and validates the transaction from the params.
func (h *AvaxHandler) buildRequest(params avaxTxParams) (*signer.SignRequest, *Error) {
	alias, err := types.ParseChainAlias(params.ChainAlias)
	if err != nil {
		return nil, ErrInvalidParams("invalid chainAlias: %v", err)
	}

	txBytes, err := hex.DecodeString(strings.TrimPrefix(params.TransactionHex, "0x"))
	if err != nil {
		return nil, ErrInvalidParams("invalid transactionHex: %v", err)
	}

	sr, err := signer.BuildSignRequest(alias, txBytes, params.ExternalIndices, params.InternalIndices, h.wallet)
	if err != nil {
		if errors.Is(err, signer.ErrInvalidRequest) {
			return nil, ErrInvalidParams("%v", err)
		}
		return nil, ErrInternal(err)
	}
	return sr, nil
}

// signResult is the response of avalanche_signTransaction.
type signResult struct {
	SignedTransactionHex string                `json:"signedTransactionHex"`
	Signatures           []signer.OwnSignature `json:"signatures"`
}

// sendResult is the response of avalanche_sendTransaction.
type sendResult struct {
	TxID string `json:"txID"`
}

func (h *AvaxHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	approval, err := decodeDisplayData[avaxApproval](displayData)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	// Rebuild from the original params; the parsed transaction is not
	// serialized into the pending store.
	sr, rpcErr := h.buildRequest(approval.Params)
	if rpcErr != nil {
		return Failed(rpcErr)
	}

	signed, ownSigs, err := signer.Reconcile(sr.Unsigned, h.wallet)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	switch req.Method {
	case MethodAvalancheSignTransaction:
		return Resolved(signResult{
			SignedTransactionHex: "0x" + hex.EncodeToString(signed.Bytes()),
			Signatures:           ownSigs,
		})

	case MethodAvalancheSendTransaction:
		if !(&avax.UnsignedTx{Tx: signed.Tx, Credentials: signed.Credentials}).HasAllSignatures() {
			return Failed(ErrInternal(errIncompleteSignatures))
		}
		txID, err := h.issuer.IssueTx(ctx, sr.Chain, hex.EncodeToString(signed.Bytes()))
		if err != nil {
			return Failed(ErrInternal(err))
		}
		return Resolved(sendResult{TxID: txID})
	}

	return Failed(ErrMethodNotSupported(req.Method))
}

var errIncompleteSignatures = errors.New("transaction is missing co-signer signatures and cannot be issued")
