package signer

import (
	"errors"
	"fmt"

	"github.com/frostlabs/frostgate/internal/log"
	"github.com/frostlabs/frostgate/pkg/avax"
	"github.com/frostlabs/frostgate/pkg/crypto"
	"github.com/frostlabs/frostgate/pkg/types"
)

// ErrNothingToSign is returned when the wallet owns none of the
// transaction's signature slots.
var ErrNothingToSign = errors.New("wallet owns no signature slots in this transaction")

// KeyResolver maps an X/P address to its signing key, reporting false for
// addresses the wallet does not own.
type KeyResolver interface {
	SignerForXPAddress(addr types.Address) (crypto.Signer, bool)
}

// OwnSignature records one signature this wallet contributed, with the
// (inputIndex, slotIndex) pair locating its credential slot.
type OwnSignature struct {
	Signature  [crypto.SignatureSize]byte `json:"signature"`
	SigIndices [2]int                     `json:"sigIndices"`
}

// ownedSlot pairs a credential slot with the key that must fill it.
type ownedSlot struct {
	input, slot int
	key         crypto.Signer
}

// Reconcile signs the wallet's slots of a transaction and assembles the
// result. Slots already holding a signature, whether the wallet's own or a
// co-signer's, are never overwritten; slots belonging to other parties are
// carried through byte-identical.
func Reconcile(u *avax.UnsignedTx, keys KeyResolver) (*avax.SignedTx, []OwnSignature, error) {
	// Resolve which slots this wallet must fill.
	var owned []ownedSlot
	for i := range u.Tx.Inputs {
		in := &u.Tx.Inputs[i]
		for j := range in.SigIndices {
			addr, err := in.SignerAt(j)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: input %d: %v", ErrInvalidRequest, i, err)
			}
			key, ok := keys.SignerForXPAddress(addr)
			if !ok {
				continue
			}
			owned = append(owned, ownedSlot{input: i, slot: j, key: key})
		}
	}
	if len(owned) == 0 {
		return nil, nil, ErrNothingToSign
	}

	// Make sure the credential shape matches the input shape before
	// touching individual slots.
	u.PopulateCredentials()

	hash := crypto.Hash(u.Tx.Bytes())

	for _, o := range owned {
		existing, err := u.SignatureAt(o.input, o.slot)
		if err != nil {
			return nil, nil, fmt.Errorf("credential slot (%d,%d): %w", o.input, o.slot, err)
		}
		if !avax.IsEmptySignature(existing) {
			continue
		}
		sig, err := o.key.SignHash(hash[:])
		if err != nil {
			return nil, nil, fmt.Errorf("sign input %d slot %d: %w", o.input, o.slot, err)
		}
		u.Credentials[o.input].Sigs[o.slot] = sig
	}

	// Every owned slot must now hold a real signature. A still-empty slot
	// means the merge lost a signature, which must abort the flow rather
	// than emit a transaction that can never verify.
	ownSigs := make([]OwnSignature, 0, len(owned))
	for _, o := range owned {
		sig, err := u.SignatureAt(o.input, o.slot)
		if err != nil {
			return nil, nil, fmt.Errorf("credential slot (%d,%d): %w", o.input, o.slot, err)
		}
		if avax.IsEmptySignature(sig) {
			return nil, nil, fmt.Errorf("signature for input %d slot %d missing after merge", o.input, o.slot)
		}
		ownSigs = append(ownSigs, OwnSignature{
			Signature:  sig,
			SigIndices: [2]int{o.input, o.slot},
		})
	}

	signed := u.Signed()
	log.Signer.Info().
		Str("tx_id", signed.ID().String()).
		Int("own_signatures", len(ownSigs)).
		Bool("complete", u.HasAllSignatures()).
		Msg("transaction signed")
	return signed, ownSigs, nil
}
