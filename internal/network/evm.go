package network

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/frostlabs/frostgate/internal/log"
)

// EVMClient wraps an ethclient connection to one EVM network.
type EVMClient struct {
	client  *ethclient.Client
	chainID *big.Int
}

// DialEVM connects to the network's RPC endpoint and verifies that the
// node reports the expected chain ID.
func DialEVM(ctx context.Context, n Network) (*EVMClient, error) {
	if n.VM != VMEVM {
		return nil, fmt.Errorf("network %s is not an EVM network", n.Name)
	}

	client, err := ethclient.DialContext(ctx, n.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", n.RPCURL, err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("query chain id: %w", err)
	}
	if chainID.Uint64() != n.ChainID {
		client.Close()
		return nil, fmt.Errorf("node reports chain id %d, expected %d", chainID.Uint64(), n.ChainID)
	}

	return &EVMClient{client: client, chainID: chainID}, nil
}

// ChainID returns the connected network's chain ID.
func (c *EVMClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// PendingNonce returns the next nonce for the given account, including
// pending transactions.
func (c *EVMClient) PendingNonce(ctx context.Context, addr common.Address) (uint64, error) {
	nonce, err := c.client.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("fetch nonce for %s: %w", addr.Hex(), err)
	}
	return nonce, nil
}

// SuggestGasPrice returns the node's suggested gas price.
func (c *EVMClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	return price, nil
}

// Broadcast submits a signed transaction and returns its hash.
func (c *EVMClient) Broadcast(ctx context.Context, tx *ethtypes.Transaction) (common.Hash, error) {
	if err := c.client.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, fmt.Errorf("broadcast transaction: %w", err)
	}

	hash := tx.Hash()
	log.Network.Info().
		Str("tx_hash", hash.Hex()).
		Uint64("chain_id", c.chainID.Uint64()).
		Msg("evm transaction broadcast")
	return hash, nil
}

// Close releases the underlying connection.
func (c *EVMClient) Close() {
	c.client.Close()
}
