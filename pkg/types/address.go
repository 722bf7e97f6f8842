// Package types defines core primitive types for Frostgate.
package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressSize is the length of an address in bytes.
const AddressSize = 20

// Address HRP (human-readable part) constants for bech32 encoding.
const (
	MainnetHRP = "avax"
	TestnetHRP = "fuji"
	LocalHRP   = "local"
)

// ChainAlias identifies which chain an address or transaction targets.
type ChainAlias string

// Supported chain aliases.
const (
	ChainX ChainAlias = "X"
	ChainP ChainAlias = "P"
	ChainC ChainAlias = "C"
)

// ParseChainAlias validates and returns a chain alias.
func ParseChainAlias(s string) (ChainAlias, error) {
	alias := ChainAlias(s)
	if !alias.Valid() {
		return "", fmt.Errorf("unsupported chain alias %q", s)
	}
	return alias, nil
}

// Valid returns true for the three supported aliases.
func (a ChainAlias) Valid() bool {
	return a == ChainX || a == ChainP || a == ChainC
}

// Address represents a 160-bit address (public key hash).
type Address [AddressSize]byte

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Hex returns the raw hex-encoded address without prefix.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// String returns the raw hex encoding. Chain-qualified display strings
// require an HRP and alias; use EncodeAddress for those.
func (a Address) String() string {
	return a.Hex()
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// EncodeAddress renders an address in chain-qualified bech32 form,
// e.g. "X-avax1qxy2...". The alias prefix is omitted when alias is empty.
func EncodeAddress(alias ChainAlias, hrp string, addr Address) (string, error) {
	enc, err := Bech32Encode(hrp, addr[:])
	if err != nil {
		return "", fmt.Errorf("encode address: %w", err)
	}
	if alias == "" {
		return enc, nil
	}
	return string(alias) + "-" + enc, nil
}

// ParseAddress parses a chain-qualified bech32 address string.
// Accepts "X-avax1...", "P-fuji1...", or a bare bech32 string (alias "").
func ParseAddress(s string) (ChainAlias, Address, error) {
	if s == "" {
		return "", Address{}, fmt.Errorf("empty address")
	}

	var alias ChainAlias
	if i := strings.Index(s, "-"); i > 0 {
		parsed, err := ParseChainAlias(s[:i])
		if err != nil {
			return "", Address{}, fmt.Errorf("invalid address %q: %w", s, err)
		}
		alias = parsed
		s = s[i+1:]
	}

	_, data, err := Bech32Decode(s)
	if err != nil {
		return "", Address{}, fmt.Errorf("invalid bech32 address: %w", err)
	}
	if len(data) != AddressSize {
		return "", Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(data))
	}

	var a Address
	copy(a[:], data)
	return alias, a, nil
}

// HexToAddress converts a raw hex string to an Address.
// Returns an error if the string is not exactly 40 hex characters.
func HexToAddress(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}
