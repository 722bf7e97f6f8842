package dapp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/frostlabs/frostgate/internal/storage"
)

// WatchedAsset is a token the user chose to track.
type WatchedAsset struct {
	Type     string `json:"type"`
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Image    string `json:"image,omitempty"`
}

// AssetHandler serves wallet_watchAsset, persisting approved tokens.
type AssetHandler struct {
	db storage.DB
}

// NewAssetHandler creates the token watching handler.
func NewAssetHandler(db storage.DB) *AssetHandler {
	return &AssetHandler{db: db}
}

func (h *AssetHandler) Methods() []string {
	return []string{MethodWalletWatchAsset}
}

// watchAssetParams is the EIP-747 parameter object.
type watchAssetParams struct {
	Type    string `json:"type"`
	Options struct {
		Address  string `json:"address"`
		Symbol   string `json:"symbol"`
		Decimals uint8  `json:"decimals"`
		Image    string `json:"image,omitempty"`
	} `json:"options"`
}

func (h *AssetHandler) Handle(ctx context.Context, req *Request) Outcome {
	var params watchAssetParams
	if rpcErr := parseParams(req, &params); rpcErr != nil {
		return Failed(rpcErr)
	}
	if !strings.EqualFold(params.Type, "ERC20") {
		return Failed(ErrInvalidParams("unsupported asset type %q", params.Type))
	}
	if params.Options.Address == "" || params.Options.Symbol == "" {
		return Failed(ErrInvalidParams("asset address and symbol are required"))
	}
	return Pending(params)
}

func (h *AssetHandler) Approve(ctx context.Context, req *Request, displayData interface{}) Outcome {
	params, err := decodeDisplayData[watchAssetParams](displayData)
	if err != nil {
		return Failed(ErrInternal(err))
	}

	asset := WatchedAsset{
		Type:     strings.ToUpper(params.Type),
		Address:  params.Options.Address,
		Symbol:   params.Options.Symbol,
		Decimals: params.Options.Decimals,
		Image:    params.Options.Image,
	}
	raw, err := json.Marshal(asset)
	if err != nil {
		return Failed(ErrInternal(err))
	}
	if err := h.db.Put([]byte(strings.ToLower(asset.Address)), raw); err != nil {
		return Failed(ErrInternal(err))
	}
	return Resolved(true)
}

// WatchedAssets lists all tracked tokens.
func (h *AssetHandler) WatchedAssets() ([]WatchedAsset, error) {
	var out []WatchedAsset
	err := h.db.ForEach(nil, func(key, value []byte) error {
		var a WatchedAsset
		if err := json.Unmarshal(value, &a); err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	return out, err
}
