package network

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/pkg/types"
)

// AvaxClient talks to an Avalanche node's X-Chain and P-Chain APIs, plus
// the C-Chain's atomic transaction endpoint.
type AvaxClient struct {
	avm      *rpcClient
	platform *rpcClient
	catomic  *rpcClient
}

// NewAvaxClient creates a client for the node at baseURL, e.g.
// "https://api.avax.network".
func NewAvaxClient(baseURL string, timeout time.Duration) *AvaxClient {
	base := strings.TrimRight(baseURL, "/")
	return &AvaxClient{
		avm:      newRPCClient(base+"/ext/bc/X", timeout),
		platform: newRPCClient(base+"/ext/P", timeout),
		catomic:  newRPCClient(base+"/ext/bc/C/avax", timeout),
	}
}

// issueTxArgs is the request body shared by avm.issueTx and platform.issueTx.
type issueTxArgs struct {
	Tx       string `json:"tx"`
	Encoding string `json:"encoding"`
}

// issueTxReply is the response body shared by avm.issueTx and platform.issueTx.
type issueTxReply struct {
	TxID string `json:"txID"`
}

// IssueTx submits hex-encoded signed transaction bytes to the chain named
// by alias and returns the node-assigned transaction ID.
func (c *AvaxClient) IssueTx(ctx context.Context, alias types.ChainAlias, txHex string) (string, error) {
	if !strings.HasPrefix(txHex, "0x") {
		txHex = "0x" + txHex
	}
	args := issueTxArgs{Tx: txHex, Encoding: "hex"}

	var (
		reply  issueTxReply
		err    error
		method string
	)
	switch alias {
	case types.ChainX:
		method = "avm.issueTx"
		err = c.avm.call(ctx, method, args, &reply)
	case types.ChainP:
		method = "platform.issueTx"
		err = c.platform.call(ctx, method, args, &reply)
	case types.ChainC:
		// Atomic import/export transactions go through the C-Chain's
		// avax API, not the EVM endpoint.
		method = "avax.issueTx"
		err = c.catomic.call(ctx, method, args, &reply)
	default:
		return "", fmt.Errorf("cannot issue tx to %s-chain", alias)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", method, err)
	}

	log.Network.Info().
		Str("chain", string(alias)).
		Str("tx_id", reply.TxID).
		Msg("transaction issued")
	return reply.TxID, nil
}

// getTxStatusReply is the response body of platform.getTxStatus.
type getTxStatusReply struct {
	Status string `json:"status"`
}

// TxStatus queries the confirmation status of a P-Chain transaction.
func (c *AvaxClient) TxStatus(ctx context.Context, txID string) (string, error) {
	var reply getTxStatusReply
	err := c.platform.call(ctx, "platform.getTxStatus", map[string]string{"txID": txID}, &reply)
	if err != nil {
		return "", fmt.Errorf("platform.getTxStatus: %w", err)
	}
	return reply.Status, nil
}
