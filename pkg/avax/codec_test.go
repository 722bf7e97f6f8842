package avax

import (
	"testing"

	"github.com/frostlabs/frostgate/pkg/crypto"
)

func TestTx_RoundTrip(t *testing.T) {
	tx := twoInputTx()
	tx.Memo = []byte("frostgate test")

	decoded, err := UnmarshalTx(tx.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalTx: %v", err)
	}
	if decoded.ID() != tx.ID() {
		t.Error("round-tripped tx has a different ID")
	}
	if len(decoded.Inputs) != 2 || len(decoded.Outputs) != 1 {
		t.Fatalf("shape lost: %d inputs, %d outputs", len(decoded.Inputs), len(decoded.Outputs))
	}
	if decoded.Inputs[1].Amount != 2_000_000 {
		t.Errorf("input amount = %d, want 2000000", decoded.Inputs[1].Amount)
	}
	if string(decoded.Memo) != "frostgate test" {
		t.Errorf("memo = %q", decoded.Memo)
	}
}

func TestSignedTx_RoundTrip(t *testing.T) {
	u := NewUnsignedTx(twoInputTx(), nil)
	u.Credentials[0].Sigs[0] = testSig(0x31)
	signed := u.Signed()

	parsed, err := ParseTx(signed.Bytes())
	if err != nil {
		t.Fatalf("ParseTx: %v", err)
	}
	if parsed.Signed == nil {
		t.Fatal("expected the signed variant")
	}
	if parsed.Unsigned != nil {
		t.Error("both variants set")
	}

	got := parsed.Signed
	if got.ID() != signed.ID() {
		t.Error("round-tripped signed tx has a different ID")
	}
	if len(got.Credentials) != 2 {
		t.Fatalf("credentials = %d, want 2", len(got.Credentials))
	}
	if got.Credentials[0].Sigs[0] != testSig(0x31) {
		t.Error("signature bytes changed across round trip")
	}
	if !IsEmptySignature(got.Credentials[1].Sigs[0]) {
		t.Error("placeholder slot changed across round trip")
	}
}

func TestParseTx_UnsignedVariant(t *testing.T) {
	tx := twoInputTx()

	parsed, err := ParseTx(tx.Bytes())
	if err != nil {
		t.Fatalf("ParseTx: %v", err)
	}
	if parsed.Unsigned == nil {
		t.Fatal("expected the unsigned variant")
	}
	if parsed.Signed != nil {
		t.Error("both variants set")
	}
	if parsed.Unsigned.ID() != tx.ID() {
		t.Error("tx ID changed across parse")
	}
}

func TestParseTx_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		bytes []byte
	}{
		{"empty", nil},
		{"one byte", []byte{0x00}},
		{"unknown codec", []byte{0xff, 0xff, 0x01, 0x02}},
		{"truncated body", twoInputTx().Bytes()[:10]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseTx(tc.bytes); err == nil {
				t.Error("ParseTx should fail")
			}
		})
	}
}

func TestParseTx_TrailingBytes(t *testing.T) {
	raw := append(twoInputTx().Bytes(), 0xde, 0xad)
	if _, err := ParseTx(raw); err == nil {
		t.Error("trailing bytes must be rejected")
	}
}

func TestUnmarshalTx_RejectsOversizedLists(t *testing.T) {
	tx := twoInputTx()
	raw := tx.Bytes()

	// Corrupt the input count (offset 42: codec 2 + version 4 + network 4 +
	// blockchain id 32) to a value past the list cap.
	raw[42] = 0xff
	raw[43] = 0xff
	raw[44] = 0xff
	raw[45] = 0xff

	if _, err := UnmarshalTx(raw); err == nil {
		t.Error("oversized list length must be rejected")
	}
}

func TestSignedEnvelope_MalformedFallsBackToUnsigned(t *testing.T) {
	// A signed codec marker followed by garbage is not salvageable.
	raw := []byte{0x01, 0x00, 0xaa, 0xbb, 0xcc}
	if _, err := ParseTx(raw); err == nil {
		t.Error("garbage envelope must fail to parse")
	}
}

func TestCredentialSlotWidth(t *testing.T) {
	// The envelope encodes fixed-width slots; a signature is always 65 bytes.
	if crypto.SignatureSize != 65 {
		t.Fatalf("SignatureSize = %d, want 65", crypto.SignatureSize)
	}
}
