package network

import (
	"errors"
	"fmt"
	"sync"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/pkg/types"
)

// ErrUnknownChain is returned when a chain ID is not in the registry.
// Callers translate it to the wallet error code for unrecognized chains.
var ErrUnknownChain = errors.New("unrecognized chain")

// Registry holds the known networks and tracks which EVM network the
// wallet is currently active on. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	evm    map[uint64]Network
	utxo   map[utxoKey]Network
	active Network
}

type utxoKey struct {
	alias   types.ChainAlias
	testnet bool
}

// NewRegistry creates a registry seeded with the built-in networks.
// The active network starts on the Avalanche C-Chain.
func NewRegistry() *Registry {
	r := &Registry{
		evm:  make(map[uint64]Network),
		utxo: make(map[utxoKey]Network),
	}
	for _, n := range defaultNetworks() {
		if n.VM == VMEVM {
			r.evm[n.ChainID] = n
		} else {
			r.utxo[utxoKey{n.Alias, n.Testnet}] = n
		}
	}
	r.active = r.evm[ChainIDAvalanche]
	return r
}

// Active returns the currently active network.
func (r *Registry) Active() Network {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// ByChainID looks up an EVM network.
func (r *Registry) ByChainID(id uint64) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.evm[id]
	if !ok {
		return Network{}, fmt.Errorf("%w: chain id %d", ErrUnknownChain, id)
	}
	return n, nil
}

// UTXONetwork looks up the X or P chain network for the given alias.
func (r *Registry) UTXONetwork(alias types.ChainAlias, testnet bool) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.utxo[utxoKey{alias, testnet}]
	if !ok {
		return Network{}, fmt.Errorf("%w: no %s-chain network (testnet=%v)", ErrUnknownChain, alias, testnet)
	}
	return n, nil
}

// SetActive switches the active network. Returns ErrUnknownChain when the
// chain ID is not registered, and false when the chain was already active.
func (r *Registry) SetActive(id uint64) (changed bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.evm[id]
	if !ok {
		return false, fmt.Errorf("%w: chain id %d", ErrUnknownChain, id)
	}
	if r.active.VM == VMEVM && r.active.ChainID == id {
		return false, nil
	}
	r.active = n
	log.Network.Info().Uint64("chain_id", id).Msg("active network switched")
	return true, nil
}

// SetActiveUTXO switches the active network to an X or P chain.
func (r *Registry) SetActiveUTXO(alias types.ChainAlias, testnet bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.utxo[utxoKey{alias, testnet}]
	if !ok {
		return fmt.Errorf("%w: no %s-chain network (testnet=%v)", ErrUnknownChain, alias, testnet)
	}
	r.active = n
	log.Network.Info().Str("chain", string(alias)).Msg("active network switched")
	return nil
}

// Add registers a custom EVM network. An existing network with the same
// chain ID is replaced.
func (r *Registry) Add(n Network) error {
	if n.VM != VMEVM {
		return fmt.Errorf("only EVM networks can be added, got %s", n.VM)
	}
	if n.ChainID == 0 {
		return errors.New("network chain id is required")
	}
	if n.RPCURL == "" {
		return errors.New("network rpc url is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.evm[n.ChainID] = n
	log.Network.Info().Uint64("chain_id", n.ChainID).Str("name", n.Name).Msg("network added")
	return nil
}

// List returns all registered networks.
func (r *Registry) List() []Network {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Network, 0, len(r.evm)+len(r.utxo))
	for _, n := range r.evm {
		out = append(out, n)
	}
	for _, n := range r.utxo {
		out = append(out, n)
	}
	return out
}
