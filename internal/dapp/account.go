package dapp

import (
	"context"

	"github.com/frostlabs/frostgate/internal/wallet"
	"github.com/frostlabs/frostgate/pkg/types"
)

// AccountHandler serves the account query and selection methods.
type AccountHandler struct {
	wallet  *wallet.Service
	testnet func() bool
}

// NewAccountHandler creates the account handler. testnet reports whether
// the wallet currently targets test networks, which controls the bech32
// HRP of reported X/P addresses.
func NewAccountHandler(w *wallet.Service, testnet func() bool) *AccountHandler {
	return &AccountHandler{wallet: w, testnet: testnet}
}

func (h *AccountHandler) Methods() []string {
	return []string{
		MethodAvalancheGetAccounts,
		MethodAvalancheSelectAccount,
	}
}

// accountInfo is one entry of the avalanche_getAccounts response.
type accountInfo struct {
	Index      uint32 `json:"index"`
	Name       string `json:"name"`
	AddressEVM string `json:"address"`
	AddressX   string `json:"addressAVM"`
	AddressP   string `json:"addressPVM"`
	Active     bool   `json:"active"`
}

// selectAccountParams carries the account index to activate.
type selectAccountParams struct {
	Index uint32 `json:"index"`
}

func (h *AccountHandler) Handle(ctx context.Context, req *Request) Outcome {
	switch req.Method {
	case MethodAvalancheGetAccounts:
		return h.handleGetAccounts()
	case MethodAvalancheSelectAccount:
		return h.handleSelectAccount(req)
	}
	return Failed(ErrMethodNotSupported(req.Method))
}

func (h *AccountHandler) handleGetAccounts() Outcome {
	hrp := types.MainnetHRP
	if h.testnet() {
		hrp = types.TestnetHRP
	}

	active, err := h.wallet.ActiveAccount()
	if err != nil {
		return Failed(ErrInternal(err))
	}

	accounts := h.wallet.Accounts()
	out := make([]accountInfo, 0, len(accounts))
	for _, a := range accounts {
		addrX, err := types.EncodeAddress(types.ChainX, hrp, a.XPAddress)
		if err != nil {
			return Failed(ErrInternal(err))
		}
		addrP, err := types.EncodeAddress(types.ChainP, hrp, a.XPAddress)
		if err != nil {
			return Failed(ErrInternal(err))
		}
		out = append(out, accountInfo{
			Index:      a.Index,
			Name:       a.Name,
			AddressEVM: a.EVMAddress.Hex(),
			AddressX:   addrX,
			AddressP:   addrP,
			Active:     a.Index == active.Index,
		})
	}
	return Resolved(out)
}

func (h *AccountHandler) handleSelectAccount(req *Request) Outcome {
	var params selectAccountParams
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		// Positional form: [index].
		var positional []uint32
		if rpcErr2 := parseParams(req, &positional); rpcErr2 != nil || len(positional) == 0 {
			return Failed(rpcErr)
		}
		params.Index = positional[0]
	}

	found := false
	for _, a := range h.wallet.Accounts() {
		if a.Index == params.Index {
			found = true
			break
		}
	}
	if !found {
		return Failed(ErrResourceNotFound("account %d not found", params.Index))
	}

	return Pending(params)
}

func (h *AccountHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	params, err := decodeDisplayData[selectAccountParams](displayData)
	if err != nil {
		return Failed(ErrInternal(err))
	}
	if err := h.wallet.SelectAccount(params.Index); err != nil {
		return Failed(ErrInternal(err))
	}
	return Resolved(nil)
}
