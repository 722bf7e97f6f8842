package avax

import (
	"bytes"

	"github.com/frostlabs/frostgate/pkg/crypto"
)

// EmptySignature is the canonical placeholder for a signature slot that has
// not been filled yet. Comparisons against it must be byte-exact: a garbage
// but non-zero value is someone's signature, not a gap.
var EmptySignature [crypto.SignatureSize]byte

// IsEmptySignature reports whether sig equals the empty-signature placeholder
// byte for byte.
func IsEmptySignature(sig [crypto.SignatureSize]byte) bool {
	return bytes.Equal(sig[:], EmptySignature[:])
}

// Credential holds the ordered signature slots for a single input. Slot j
// corresponds to the input's j-th signature index.
type Credential struct {
	Sigs [][crypto.SignatureSize]byte `json:"signatures"`
}

// Clone returns a deep copy of the credential.
func (c Credential) Clone() Credential {
	sigs := make([][crypto.SignatureSize]byte, len(c.Sigs))
	copy(sigs, c.Sigs)
	return Credential{Sigs: sigs}
}
