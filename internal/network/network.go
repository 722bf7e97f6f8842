// Package network models the chains the wallet can operate on and the
// node endpoints used to reach them.
package network

import (
	"github.com/frostlabs/frostgate/pkg/types"
)

// VMType identifies the virtual machine a network runs.
type VMType string

// Supported VM types.
const (
	VMEVM     VMType = "EVM"
	VMAVM     VMType = "AVM"
	VMPVM     VMType = "PVM"
	VMBitcoin VMType = "BITCOIN"
)

// Well-known EVM chain IDs.
const (
	ChainIDAvalanche uint64 = 43114
	ChainIDFuji      uint64 = 43113
)

// Network describes a single chain endpoint.
//
// EVM networks are identified by ChainID; UTXO networks (X/P) are
// identified by Alias plus the Testnet flag and leave ChainID zero.
type Network struct {
	Name          string           `json:"chainName"`
	ChainID       uint64           `json:"chainId,omitempty"`
	Alias         types.ChainAlias `json:"alias,omitempty"`
	VM            VMType           `json:"vmName"`
	RPCURL        string           `json:"rpcUrl"`
	ExplorerURL   string           `json:"explorerUrl,omitempty"`
	TokenSymbol   string           `json:"tokenSymbol"`
	TokenDecimals uint8            `json:"tokenDecimals"`
	Testnet       bool             `json:"isTestnet"`
}

// HRP returns the bech32 human-readable part for this network's addresses.
func (n Network) HRP() string {
	if n.Testnet {
		return types.TestnetHRP
	}
	return types.MainnetHRP
}

// IsUTXO returns true for networks running a UTXO VM.
func (n Network) IsUTXO() bool {
	return n.VM == VMAVM || n.VM == VMPVM
}

// defaultNetworks returns the built-in network set.
func defaultNetworks() []Network {
	return []Network{
		{
			Name:          "Avalanche (C-Chain)",
			ChainID:       ChainIDAvalanche,
			VM:            VMEVM,
			RPCURL:        "https://api.avax.network/ext/bc/C/rpc",
			ExplorerURL:   "https://snowtrace.io",
			TokenSymbol:   "AVAX",
			TokenDecimals: 18,
		},
		{
			Name:          "Avalanche Fuji (C-Chain)",
			ChainID:       ChainIDFuji,
			VM:            VMEVM,
			RPCURL:        "https://api.avax-test.network/ext/bc/C/rpc",
			ExplorerURL:   "https://testnet.snowtrace.io",
			TokenSymbol:   "AVAX",
			TokenDecimals: 18,
			Testnet:       true,
		},
		{
			Name:          "Avalanche (X-Chain)",
			Alias:         types.ChainX,
			VM:            VMAVM,
			RPCURL:        "https://api.avax.network",
			ExplorerURL:   "https://subnets.avax.network/x-chain",
			TokenSymbol:   "AVAX",
			TokenDecimals: 9,
		},
		{
			Name:          "Avalanche Fuji (X-Chain)",
			Alias:         types.ChainX,
			VM:            VMAVM,
			RPCURL:        "https://api.avax-test.network",
			TokenSymbol:   "AVAX",
			TokenDecimals: 9,
			Testnet:       true,
		},
		{
			Name:          "Avalanche (P-Chain)",
			Alias:         types.ChainP,
			VM:            VMPVM,
			RPCURL:        "https://api.avax.network",
			ExplorerURL:   "https://subnets.avax.network/p-chain",
			TokenSymbol:   "AVAX",
			TokenDecimals: 9,
		},
		{
			Name:          "Avalanche Fuji (P-Chain)",
			Alias:         types.ChainP,
			VM:            VMPVM,
			RPCURL:        "https://api.avax-test.network",
			TokenSymbol:   "AVAX",
			TokenDecimals: 9,
			Testnet:       true,
		},
	}
}
