package types

import (
	"strings"
	"testing"
)

func TestEncodeParseAddress_RoundTrip(t *testing.T) {
	var addr Address
	for i := range addr {
		addr[i] = byte(i + 1)
	}

	tests := []struct {
		alias ChainAlias
		hrp   string
	}{
		{ChainX, MainnetHRP},
		{ChainP, MainnetHRP},
		{ChainX, TestnetHRP},
		{ChainP, LocalHRP},
	}

	for _, tc := range tests {
		enc, err := EncodeAddress(tc.alias, tc.hrp, addr)
		if err != nil {
			t.Fatalf("EncodeAddress(%s, %s) failed: %v", tc.alias, tc.hrp, err)
		}
		wantPrefix := string(tc.alias) + "-" + tc.hrp + "1"
		if !strings.HasPrefix(enc, wantPrefix) {
			t.Errorf("encoded address %q missing prefix %q", enc, wantPrefix)
		}

		alias, parsed, err := ParseAddress(enc)
		if err != nil {
			t.Fatalf("ParseAddress(%q) failed: %v", enc, err)
		}
		if alias != tc.alias {
			t.Errorf("parsed alias %q, want %q", alias, tc.alias)
		}
		if parsed != addr {
			t.Errorf("parsed address %v, want %v", parsed, addr)
		}
	}
}

func TestParseAddress_BareBech32(t *testing.T) {
	var addr Address
	addr[0] = 0xab

	enc, err := EncodeAddress("", MainnetHRP, addr)
	if err != nil {
		t.Fatalf("EncodeAddress failed: %v", err)
	}
	if strings.Contains(enc, "-") {
		t.Errorf("bare encoding %q should not contain alias separator", enc)
	}

	alias, parsed, err := ParseAddress(enc)
	if err != nil {
		t.Fatalf("ParseAddress(%q) failed: %v", enc, err)
	}
	if alias != "" {
		t.Errorf("bare address parsed with alias %q", alias)
	}
	if parsed != addr {
		t.Errorf("parsed address %v, want %v", parsed, addr)
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"bad alias", "Z-avax1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"},
		{"not bech32", "X-hello world"},
		{"bad checksum", "X-avax1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := ParseAddress(tc.in); err == nil {
				t.Errorf("ParseAddress(%q) should fail", tc.in)
			}
		})
	}
}

func TestParseChainAlias(t *testing.T) {
	for _, ok := range []string{"X", "P", "C"} {
		if _, err := ParseChainAlias(ok); err != nil {
			t.Errorf("ParseChainAlias(%q) failed: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "x", "Y", "XP"} {
		if _, err := ParseChainAlias(bad); err == nil {
			t.Errorf("ParseChainAlias(%q) should fail", bad)
		}
	}
}

func TestChainAliasValid(t *testing.T) {
	if !ChainX.Valid() || !ChainP.Valid() || !ChainC.Valid() {
		t.Error("X, P, and C should all be valid aliases")
	}
	if ChainAlias("Z").Valid() || ChainAlias("").Valid() {
		t.Error("unknown aliases should be invalid")
	}
}

func TestHexToAddress(t *testing.T) {
	hexStr := "0102030405060708090a0b0c0d0e0f1011121314"
	addr, err := HexToAddress(hexStr)
	if err != nil {
		t.Fatalf("HexToAddress failed: %v", err)
	}
	if addr.Hex() != hexStr {
		t.Errorf("Hex() = %q, want %q", addr.Hex(), hexStr)
	}

	if _, err := HexToAddress("0102"); err == nil {
		t.Error("short hex should fail")
	}
	if _, err := HexToAddress("zz02030405060708090a0b0c0d0e0f1011121314"); err == nil {
		t.Error("invalid hex should fail")
	}
}

func TestBech32_RoundTrip(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01, 0x02}
	enc, err := Bech32Encode("avax", data)
	if err != nil {
		t.Fatalf("Bech32Encode failed: %v", err)
	}

	hrp, dec, err := Bech32Decode(enc)
	if err != nil {
		t.Fatalf("Bech32Decode failed: %v", err)
	}
	if hrp != "avax" {
		t.Errorf("decoded hrp %q, want avax", hrp)
	}
	if len(dec) != len(data) {
		t.Fatalf("decoded %d bytes, want %d", len(dec), len(data))
	}
	for i := range data {
		if dec[i] != data[i] {
			t.Errorf("byte %d: got %x, want %x", i, dec[i], data[i])
		}
	}
}

func TestBech32Decode_RejectsCorruption(t *testing.T) {
	enc, err := Bech32Encode("fuji", []byte{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("Bech32Encode failed: %v", err)
	}

	// Flip one data character.
	b := []byte(enc)
	i := len(b) - 1
	if b[i] == 'q' {
		b[i] = 'p'
	} else {
		b[i] = 'q'
	}

	if _, _, err := Bech32Decode(string(b)); err == nil {
		t.Error("corrupted string should fail checksum")
	}
}

func TestBech32Decode_RejectsMixedCase(t *testing.T) {
	if _, _, err := Bech32Decode("Avax1qqqsyrhqy2a"); err == nil {
		t.Error("mixed case should fail")
	}
}
