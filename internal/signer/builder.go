// Package signer coordinates multi-party signing of UTXO transactions:
// building sign requests from raw transaction bytes and reconciling the
// wallet's signatures into credential slots without disturbing co-signers.
package signer

import (
	"errors"
	"fmt"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/pkg/avax"
	"github.com/frostlabs/frostgate/pkg/types"
)

// ErrInvalidRequest marks request-shape failures that are reported to the
// caller as invalid parameters rather than internal faults.
var ErrInvalidRequest = errors.New("invalid signing request")

// AddressDeriver derives the wallet's X/P addresses at explicit indices on
// the external or internal chain.
type AddressDeriver interface {
	AddressesByIndices(indices []uint32, internal bool) ([]types.Address, error)
}

// SignRequest is a fully-resolved request to sign one UTXO transaction.
type SignRequest struct {
	Chain    types.ChainAlias
	Unsigned *avax.UnsignedTx

	// FromAddresses is the union of the wallet addresses named by the
	// request, for display during approval.
	FromAddresses []types.Address

	// PartiallySigned is true when the request carried a signed envelope
	// whose existing credentials must be preserved.
	PartiallySigned bool
}

// BuildSignRequest parses raw transaction bytes and resolves the wallet
// addresses involved. Fresh transactions arrive as unsigned bytes plus the
// address indices to sign with; co-signing requests arrive as a signed
// envelope whose credentials already hold other parties' signatures.
func BuildSignRequest(chain types.ChainAlias, txBytes []byte, externalIndices, internalIndices []uint32, deriver AddressDeriver) (*SignRequest, error) {
	// X, P, and C all pass through here; C-chain atomic transactions
	// carry the same credential layout as X/P transactions.
	if !chain.Valid() {
		return nil, fmt.Errorf("%w: unsupported chain alias %q", ErrInvalidRequest, chain)
	}
	if len(txBytes) == 0 {
		return nil, fmt.Errorf("%w: empty transaction bytes", ErrInvalidRequest)
	}

	parsed, err := avax.ParseTx(txBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	req := &SignRequest{Chain: chain}
	switch {
	case parsed.Signed != nil:
		req.PartiallySigned = true
		req.Unsigned = avax.NewUnsignedTx(parsed.Signed.Tx, parsed.Signed.Credentials)
	case parsed.Unsigned != nil:
		req.Unsigned = avax.NewUnsignedTx(parsed.Unsigned, nil)
	default:
		return nil, fmt.Errorf("%w: empty parse result", ErrInvalidRequest)
	}

	from, err := resolveFromAddresses(externalIndices, internalIndices, deriver)
	if err != nil {
		return nil, err
	}
	if len(from) == 0 && !req.PartiallySigned {
		return nil, fmt.Errorf("%w: no signing addresses", ErrInvalidRequest)
	}
	req.FromAddresses = from

	log.Signer.Debug().
		Str("chain", string(chain)).
		Str("tx_id", req.Unsigned.Tx.ID().String()).
		Bool("partially_signed", req.PartiallySigned).
		Int("from_addresses", len(from)).
		Msg("sign request built")
	return req, nil
}

// resolveFromAddresses derives the union of external and internal addresses
// at the given indices, deduplicated in derivation order.
func resolveFromAddresses(externalIndices, internalIndices []uint32, deriver AddressDeriver) ([]types.Address, error) {
	var out []types.Address
	seen := make(map[types.Address]struct{})

	add := func(indices []uint32, internal bool) error {
		if len(indices) == 0 {
			return nil
		}
		addrs, err := deriver.AddressesByIndices(indices, internal)
		if err != nil {
			return fmt.Errorf("derive addresses: %w", err)
		}
		for _, a := range addrs {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
		return nil
	}

	if err := add(externalIndices, false); err != nil {
		return nil, err
	}
	if err := add(internalIndices, true); err != nil {
		return nil, err
	}
	return out, nil
}
