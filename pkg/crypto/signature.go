package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureSize is the width of a recoverable ECDSA signature in bytes.
// Every credential slot in a UTXO transaction holds exactly one of these.
const SignatureSize = 65

// Signer signs 32-byte hashes with a secp256k1 private key.
type Signer interface {
	// SignHash produces a 65-byte recoverable signature over a 32-byte hash.
	SignHash(hash []byte) ([SignatureSize]byte, error)
	// PublicKey returns the compressed 33-byte public key.
	PublicKey() []byte
}

// PrivateKey wraps a secp256k1 private key for recoverable ECDSA signing.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// GenerateKey creates a new random secp256k1 private key.
func GenerateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a PrivateKey from a 32-byte secret.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(b))
	}
	key := secp256k1.PrivKeyFromBytes(b)
	return &PrivateKey{key: key}, nil
}

// SignHash produces a 65-byte recoverable signature over a 32-byte hash.
func (pk *PrivateKey) SignHash(hash []byte) ([SignatureSize]byte, error) {
	var sig [SignatureSize]byte
	if len(hash) != 32 {
		return sig, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	compact := ecdsa.SignCompact(pk.key, hash, true)
	copy(sig[:], compact)
	return sig, nil
}

// PublicKey returns the compressed 33-byte public key.
func (pk *PrivateKey) PublicKey() []byte {
	return pk.key.PubKey().SerializeCompressed()
}

// Serialize returns the 32-byte private key scalar.
func (pk *PrivateKey) Serialize() []byte {
	return pk.key.Serialize()
}

// Zero securely zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	pk.key.Zero()
}

// RecoverPubKey recovers the compressed public key that produced a
// recoverable signature over a 32-byte hash.
func RecoverPubKey(hash []byte, sig [SignatureSize]byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	pub, _, err := ecdsa.RecoverCompact(sig[:], hash)
	if err != nil {
		return nil, fmt.Errorf("recover pubkey: %w", err)
	}
	return pub.SerializeCompressed(), nil
}

// VerifySignature checks a recoverable signature against a 32-byte hash
// and a compressed public key. Returns false on any error.
func VerifySignature(hash []byte, sig [SignatureSize]byte, publicKey []byte) bool {
	recovered, err := RecoverPubKey(hash, sig)
	if err != nil {
		return false
	}
	if len(recovered) != len(publicKey) {
		return false
	}
	for i := range recovered {
		if recovered[i] != publicKey[i] {
			return false
		}
	}
	return true
}
