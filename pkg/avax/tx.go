// Package avax defines the UTXO transaction model for the X and P chains:
// transactions whose inputs each carry an ordered list of signature indices,
// and credentials holding one fixed-width signature slot per index.
package avax

import (
	"fmt"

	"github.com/frostlabs/frostgate/pkg/crypto"
	"github.com/frostlabs/frostgate/pkg/types"
)

// Input consumes a UTXO. Addresses lists the owners of the consumed output;
// SigIndices selects, in credential slot order, which owners must sign.
type Input struct {
	PrevOut    types.Outpoint  `json:"prevout"`
	Amount     uint64          `json:"amount"`
	Addresses  []types.Address `json:"addresses"`
	SigIndices []uint32        `json:"sigIndices"`
}

// SignerAt returns the address required to fill credential slot j of this
// input, or an error if the slot's signature index is out of range.
func (in *Input) SignerAt(j int) (types.Address, error) {
	if j < 0 || j >= len(in.SigIndices) {
		return types.Address{}, fmt.Errorf("signature slot %d out of range (input has %d)", j, len(in.SigIndices))
	}
	idx := in.SigIndices[j]
	if int(idx) >= len(in.Addresses) {
		return types.Address{}, fmt.Errorf("signature index %d exceeds owner count %d", idx, len(in.Addresses))
	}
	return in.Addresses[idx], nil
}

// Output creates a new UTXO owned by Addresses, spendable once Threshold
// of them sign.
type Output struct {
	Amount    uint64          `json:"amount"`
	Locktime  uint64          `json:"locktime"`
	Threshold uint32          `json:"threshold"`
	Addresses []types.Address `json:"addresses"`
}

// Tx is an unsigned UTXO transaction body.
type Tx struct {
	Version      uint32     `json:"version"`
	NetworkID    uint32     `json:"networkID"`
	BlockchainID types.Hash `json:"blockchainID"`
	Inputs       []Input    `json:"inputs"`
	Outputs      []Output   `json:"outputs"`
	Memo         []byte     `json:"memo,omitempty"`
}

// ID computes the transaction ID (BLAKE3 of the canonical unsigned bytes).
func (tx *Tx) ID() types.Hash {
	return crypto.Hash(tx.Bytes())
}

// SigIndices returns each input's signature index list, in input order.
func (tx *Tx) SigIndices() [][]uint32 {
	out := make([][]uint32, len(tx.Inputs))
	for i, in := range tx.Inputs {
		out[i] = in.SigIndices
	}
	return out
}

// UnsignedTx pairs a transaction body with its in-progress credential list.
// The credential list may carry other co-signers' real signatures alongside
// empty placeholder slots.
type UnsignedTx struct {
	Tx          *Tx          `json:"tx"`
	Credentials []Credential `json:"credentials"`
}

// NewUnsignedTx wraps a transaction body with a fully gap-filled credential
// list seeded from the given credentials (which may be nil).
func NewUnsignedTx(tx *Tx, creds []Credential) *UnsignedTx {
	u := &UnsignedTx{Tx: tx, Credentials: creds}
	u.PopulateCredentials()
	return u
}

// PopulateCredentials fills missing credential slots with the empty-signature
// placeholder so that the credential shape always matches the input shape:
// one credential per input, one slot per signature index. Existing slots,
// real or placeholder, are never touched.
func (u *UnsignedTx) PopulateCredentials() {
	for len(u.Credentials) < len(u.Tx.Inputs) {
		u.Credentials = append(u.Credentials, Credential{})
	}
	u.Credentials = u.Credentials[:len(u.Tx.Inputs)]
	for i := range u.Tx.Inputs {
		want := len(u.Tx.Inputs[i].SigIndices)
		for len(u.Credentials[i].Sigs) < want {
			u.Credentials[i].Sigs = append(u.Credentials[i].Sigs, EmptySignature)
		}
		u.Credentials[i].Sigs = u.Credentials[i].Sigs[:want]
	}
}

// SigIndicesForAddress returns the (inputIndex, slotIndex) pairs whose
// required signer is addr. An empty result means addr has nothing to sign.
func (u *UnsignedTx) SigIndicesForAddress(addr types.Address) [][2]int {
	var pairs [][2]int
	for i := range u.Tx.Inputs {
		in := &u.Tx.Inputs[i]
		for j := range in.SigIndices {
			signer, err := in.SignerAt(j)
			if err != nil {
				continue
			}
			if signer == addr {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// SignatureAt returns the signature in credential slot (i, j).
func (u *UnsignedTx) SignatureAt(i, j int) ([crypto.SignatureSize]byte, error) {
	if i < 0 || i >= len(u.Credentials) {
		return EmptySignature, fmt.Errorf("credential %d out of range (%d credentials)", i, len(u.Credentials))
	}
	if j < 0 || j >= len(u.Credentials[i].Sigs) {
		return EmptySignature, fmt.Errorf("credential %d slot %d out of range (%d slots)", i, j, len(u.Credentials[i].Sigs))
	}
	return u.Credentials[i].Sigs[j], nil
}

// HasAllSignatures reports whether every credential slot holds a real
// (non-placeholder) signature.
func (u *UnsignedTx) HasAllSignatures() bool {
	for i := range u.Credentials {
		for j := range u.Credentials[i].Sigs {
			if IsEmptySignature(u.Credentials[i].Sigs[j]) {
				return false
			}
		}
	}
	return true
}

// Signed assembles a SignedTx from the transaction body and the current
// credential list. The credentials are copied so later mutation of the
// UnsignedTx cannot alter the signed form.
func (u *UnsignedTx) Signed() *SignedTx {
	creds := make([]Credential, len(u.Credentials))
	for i, c := range u.Credentials {
		creds[i] = c.Clone()
	}
	return &SignedTx{Tx: u.Tx, Credentials: creds}
}

// SignedTx is a transaction body with its final credential list attached.
type SignedTx struct {
	Tx          *Tx          `json:"tx"`
	Credentials []Credential `json:"credentials"`
}

// ID returns the underlying transaction's ID. Signatures are excluded from
// the ID so co-signing does not change it.
func (s *SignedTx) ID() types.Hash {
	return s.Tx.ID()
}
