package dapp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/frostlabs/frostgate/internal/network"
)

// ChainHandler serves wallet_addEthereumChain and wallet_switchEthereumChain.
type ChainHandler struct {
	networks *network.Registry
}

// NewChainHandler creates the chain management handler.
func NewChainHandler(networks *network.Registry) *ChainHandler {
	return &ChainHandler{networks: networks}
}

func (h *ChainHandler) Methods() []string {
	return []string{MethodWalletAddChain, MethodWalletSwitchChain}
}

// switchChainParams is the EIP-3326 parameter object.
type switchChainParams struct {
	ChainID string `json:"chainId"`
}

// addChainParams is the EIP-3085 parameter object.
type addChainParams struct {
	ChainID        string   `json:"chainId"`
	ChainName      string   `json:"chainName"`
	RPCURLs        []string `json:"rpcUrls"`
	ExplorerURLs   []string `json:"blockExplorerUrls,omitempty"`
	NativeCurrency struct {
		Symbol   string `json:"symbol"`
		Decimals uint8  `json:"decimals"`
	} `json:"nativeCurrency"`
	IsTestnet bool `json:"isTestnet,omitempty"`
}

// chainApproval is the parked state for a chain request: the network to
// add (when new) and the chain to switch to.
type chainApproval struct {
	Add     *network.Network `json:"add,omitempty"`
	ChainID uint64           `json:"chainId"`
}

func (h *ChainHandler) Handle(ctx context.Context, req *Request) Outcome {
	switch req.Method {
	case MethodWalletSwitchChain:
		return h.handleSwitch(req)
	case MethodWalletAddChain:
		return h.handleAdd(req)
	}
	return Failed(ErrMethodNotSupported(req.Method))
}

func (h *ChainHandler) handleSwitch(req *Request) Outcome {
	var params []switchChainParams
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return Failed(rpcErr)
	}
	if len(params) == 0 || params[0].ChainID == "" {
		return Failed(ErrInvalidParams("chainId is required"))
	}

	id, err := parseChainID(params[0].ChainID)
	if err != nil {
		return Failed(ErrInvalidParams("invalid chainId %q", params[0].ChainID))
	}

	if _, err := h.networks.ByChainID(id); err != nil {
		return Failed(ErrUnrecognizedChain(params[0].ChainID))
	}

	// Switching to the already-active chain is a silent success; no
	// approval prompt is shown.
	if h.networks.Active().ChainID == id {
		return Resolved(nil)
	}

	return Pending(chainApproval{ChainID: id})
}

func (h *ChainHandler) handleAdd(req *Request) Outcome {
	var params []addChainParams
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return Failed(rpcErr)
	}
	if len(params) == 0 || params[0].ChainID == "" {
		return Failed(ErrInvalidParams("chainId is required"))
	}
	p := params[0]

	id, err := parseChainID(p.ChainID)
	if err != nil {
		return Failed(ErrInvalidParams("invalid chainId %q", p.ChainID))
	}

	// A chain the wallet already knows degrades to a switch.
	if _, err := h.networks.ByChainID(id); err == nil {
		if h.networks.Active().ChainID == id {
			return Resolved(nil)
		}
		return Pending(chainApproval{ChainID: id})
	}

	if len(p.RPCURLs) == 0 {
		return Failed(ErrInvalidParams("rpcUrls is required"))
	}
	n := network.Network{
		Name:          p.ChainName,
		ChainID:       id,
		VM:            network.VMEVM,
		RPCURL:        p.RPCURLs[0],
		TokenSymbol:   p.NativeCurrency.Symbol,
		TokenDecimals: p.NativeCurrency.Decimals,
		Testnet:       p.IsTestnet,
	}
	if len(p.ExplorerURLs) > 0 {
		n.ExplorerURL = p.ExplorerURLs[0]
	}
	return Pending(chainApproval{Add: &n, ChainID: id})
}

func (h *ChainHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	approval, err := decodeDisplayData[chainApproval](displayData)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	if approval.Add != nil {
		if err := h.networks.Add(*approval.Add); err != nil {
			return Failed(ErrInternal(err))
		}
	}
	if _, err := h.networks.SetActive(approval.ChainID); err != nil {
		return Failed(ErrInternal(err))
	}
	return Resolved(nil)
}

// parseChainID accepts both "0x"-prefixed hex and decimal chain IDs.
func parseChainID(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

// decodeDisplayData recovers a typed approval payload from the pending
// store. Payloads survive as their original type in memory, but decode
// via JSON when a restart reloaded them.
func decodeDisplayData[T any](displayData interface{}) (T, error) {
	if v, ok := displayData.(T); ok {
		return v, nil
	}
	var out T
	raw, err := json.Marshal(displayData)
	if err != nil {
		return out, fmt.Errorf("decode approval payload: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode approval payload: %w", err)
	}
	return out, nil
}
