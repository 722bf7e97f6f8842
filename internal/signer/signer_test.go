package signer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/frostlabs/frostgate/pkg/avax"
	"github.com/frostlabs/frostgate/pkg/crypto"
	"github.com/frostlabs/frostgate/pkg/types"
)

// fakeKeys resolves addresses from a fixed key set.
type fakeKeys struct {
	keys map[types.Address]crypto.Signer
}

func (f *fakeKeys) SignerForXPAddress(addr types.Address) (crypto.Signer, bool) {
	k, ok := f.keys[addr]
	return k, ok
}

// fakeDeriver returns deterministic addresses per (internal, index).
type fakeDeriver struct {
	keys *fakeKeys
}

func (d *fakeDeriver) AddressesByIndices(indices []uint32, internal bool) ([]types.Address, error) {
	out := make([]types.Address, 0, len(indices))
	for _, idx := range indices {
		var a types.Address
		a[0] = byte(idx + 1)
		if internal {
			a[1] = 0xff
		}
		out = append(out, a)
	}
	return out, nil
}

func newKey(t *testing.T) (types.Address, crypto.Signer) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return crypto.AddressFromPubKey(key.PublicKey()), key
}

// multisigTx builds a two-input transaction where input 0 is owned by us
// and input 1 requires both us (slot 0) and a co-signer (slot 1).
func multisigTx(t *testing.T, ours, cosigner types.Address) *avax.Tx {
	t.Helper()
	return &avax.Tx{
		Version:   1,
		NetworkID: 5,
		Inputs: []avax.Input{
			{
				PrevOut:    types.Outpoint{Index: 0},
				Amount:     100,
				Addresses:  []types.Address{ours},
				SigIndices: []uint32{0},
			},
			{
				PrevOut:    types.Outpoint{Index: 1},
				Amount:     200,
				Addresses:  []types.Address{ours, cosigner},
				SigIndices: []uint32{0, 1},
			},
		},
		Outputs: []avax.Output{
			{Amount: 250, Threshold: 1, Addresses: []types.Address{ours}},
		},
	}
}

func TestReconcile_SignsOwnedSlots(t *testing.T) {
	ourAddr, ourKey := newKey(t)
	coAddr, _ := newKey(t)
	keys := &fakeKeys{keys: map[types.Address]crypto.Signer{ourAddr: ourKey}}

	u := avax.NewUnsignedTx(multisigTx(t, ourAddr, coAddr), nil)
	signed, own, err := Reconcile(u, keys)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	if len(own) != 2 {
		t.Fatalf("got %d own signatures, want 2", len(own))
	}
	wantPairs := [][2]int{{0, 0}, {1, 0}}
	for i, o := range own {
		if o.SigIndices != wantPairs[i] {
			t.Errorf("own[%d].SigIndices = %v, want %v", i, o.SigIndices, wantPairs[i])
		}
		if avax.IsEmptySignature(o.Signature) {
			t.Errorf("own[%d] signature is empty", i)
		}
	}

	// Our slots verify against our key; the co-signer's slot stays empty.
	hash := crypto.Hash(signed.Tx.Bytes())
	for _, o := range own {
		sig := signed.Credentials[o.SigIndices[0]].Sigs[o.SigIndices[1]]
		if !crypto.VerifySignature(hash[:], sig, ourKey.PublicKey()) {
			t.Errorf("slot %v signature does not verify", o.SigIndices)
		}
	}
	if !avax.IsEmptySignature(signed.Credentials[1].Sigs[1]) {
		t.Error("co-signer slot must stay empty")
	}
}

func TestReconcile_NothingToSign(t *testing.T) {
	foreignA, _ := newKey(t)
	foreignB, _ := newKey(t)
	keys := &fakeKeys{keys: map[types.Address]crypto.Signer{}}

	u := avax.NewUnsignedTx(multisigTx(t, foreignA, foreignB), nil)
	_, _, err := Reconcile(u, keys)
	if !errors.Is(err, ErrNothingToSign) {
		t.Fatalf("got err %v, want ErrNothingToSign", err)
	}
}

func TestReconcile_PreservesCosignerSignatures(t *testing.T) {
	ourAddr, ourKey := newKey(t)
	coAddr, coKey := newKey(t)

	tx := multisigTx(t, ourAddr, coAddr)

	// Co-signer signs first.
	coUnsigned := avax.NewUnsignedTx(tx, nil)
	hash := crypto.Hash(tx.Bytes())
	coSig, err := coKey.SignHash(hash[:])
	if err != nil {
		t.Fatalf("co-signer SignHash failed: %v", err)
	}
	coUnsigned.Credentials[1].Sigs[1] = coSig

	keys := &fakeKeys{keys: map[types.Address]crypto.Signer{ourAddr: ourKey}}
	signed, _, err := Reconcile(coUnsigned, keys)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got := signed.Credentials[1].Sigs[1]
	if !bytes.Equal(got[:], coSig[:]) {
		t.Error("co-signer signature was not carried through byte-identical")
	}

	if !(&avax.UnsignedTx{Tx: signed.Tx, Credentials: signed.Credentials}).HasAllSignatures() {
		t.Error("transaction should be fully signed after both parties sign")
	}
}

func TestReconcile_DoesNotResignFilledOwnSlots(t *testing.T) {
	ourAddr, ourKey := newKey(t)
	coAddr, _ := newKey(t)

	tx := multisigTx(t, ourAddr, coAddr)
	u := avax.NewUnsignedTx(tx, nil)

	hash := crypto.Hash(tx.Bytes())
	prior, err := ourKey.SignHash(hash[:])
	if err != nil {
		t.Fatalf("SignHash failed: %v", err)
	}
	u.Credentials[0].Sigs[0] = prior

	keys := &fakeKeys{keys: map[types.Address]crypto.Signer{ourAddr: ourKey}}
	signed, own, err := Reconcile(u, keys)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}

	got := signed.Credentials[0].Sigs[0]
	if !bytes.Equal(got[:], prior[:]) {
		t.Error("pre-existing own signature was overwritten")
	}
	// The prior signature is still reported as ours.
	if own[0].SigIndices != [2]int{0, 0} || !bytes.Equal(own[0].Signature[:], prior[:]) {
		t.Error("own signature list should report the pre-existing signature")
	}
}

func TestBuildSignRequest_FreshTx(t *testing.T) {
	ourAddr, _ := newKey(t)
	coAddr, _ := newKey(t)
	tx := multisigTx(t, ourAddr, coAddr)

	deriver := &fakeDeriver{}
	req, err := BuildSignRequest(types.ChainX, tx.Bytes(), []uint32{0, 1}, []uint32{0}, deriver)
	if err != nil {
		t.Fatalf("BuildSignRequest failed: %v", err)
	}
	if req.PartiallySigned {
		t.Error("fresh bytes should not be marked partially signed")
	}
	if req.Unsigned.Tx.ID() != tx.ID() {
		t.Error("parsed transaction does not match input")
	}
	if len(req.FromAddresses) != 3 {
		t.Errorf("got %d from addresses, want 3 (2 external + 1 internal)", len(req.FromAddresses))
	}
	// Credential shape must be gap-filled.
	if len(req.Unsigned.Credentials) != len(tx.Inputs) {
		t.Errorf("credentials %d, want %d", len(req.Unsigned.Credentials), len(tx.Inputs))
	}
}

func TestBuildSignRequest_PartiallySigned(t *testing.T) {
	ourAddr, _ := newKey(t)
	coAddr, coKey := newKey(t)
	tx := multisigTx(t, ourAddr, coAddr)

	u := avax.NewUnsignedTx(tx, nil)
	hash := crypto.Hash(tx.Bytes())
	coSig, err := coKey.SignHash(hash[:])
	if err != nil {
		t.Fatalf("SignHash failed: %v", err)
	}
	u.Credentials[1].Sigs[1] = coSig

	req, err := BuildSignRequest(types.ChainP, u.Signed().Bytes(), nil, nil, &fakeDeriver{})
	if err != nil {
		t.Fatalf("BuildSignRequest failed: %v", err)
	}
	if !req.PartiallySigned {
		t.Error("signed envelope should be marked partially signed")
	}
	got, err := req.Unsigned.SignatureAt(1, 1)
	if err != nil {
		t.Fatalf("SignatureAt failed: %v", err)
	}
	if !bytes.Equal(got[:], coSig[:]) {
		t.Error("embedded co-signer signature was not reused")
	}
}

func TestBuildSignRequest_CChainAtomic(t *testing.T) {
	ourAddr, _ := newKey(t)
	coAddr, _ := newKey(t)
	tx := multisigTx(t, ourAddr, coAddr)

	req, err := BuildSignRequest(types.ChainC, tx.Bytes(), []uint32{0}, nil, &fakeDeriver{})
	if err != nil {
		t.Fatalf("BuildSignRequest failed: %v", err)
	}
	if req.Chain != types.ChainC {
		t.Errorf("chain %q, want C", req.Chain)
	}
	if req.Unsigned.Tx.ID() != tx.ID() {
		t.Error("parsed transaction does not match input")
	}
}

func TestBuildSignRequest_Invalid(t *testing.T) {
	ourAddr, _ := newKey(t)
	coAddr, _ := newKey(t)
	txBytes := multisigTx(t, ourAddr, coAddr).Bytes()

	tests := []struct {
		name     string
		chain    types.ChainAlias
		bytes    []byte
		external []uint32
	}{
		{"unknown alias", types.ChainAlias("Z"), txBytes, []uint32{0}},
		{"empty bytes", types.ChainX, nil, []uint32{0}},
		{"garbage bytes", types.ChainX, []byte{9, 9, 9}, []uint32{0}},
		{"no addresses", types.ChainX, txBytes, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildSignRequest(tc.chain, tc.bytes, tc.external, nil, &fakeDeriver{})
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("got err %v, want ErrInvalidRequest", err)
			}
		})
	}
}
