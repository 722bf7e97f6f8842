package types

import (
	"fmt"
	"strings"
)

// bech32Alphabet is the BIP-173 data character set.
const bech32Alphabet = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var bech32Values [128]int8

func init() {
	for i := range bech32Values {
		bech32Values[i] = -1
	}
	for i, c := range bech32Alphabet {
		bech32Values[c] = int8(i)
	}
}

// Bech32Encode encodes data bytes under the given human-readable part.
func Bech32Encode(hrp string, data []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("bech32: empty HRP")
	}
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return "", fmt.Errorf("bech32: invalid HRP character %q", c)
		}
	}

	grouped, err := regroupBits(data, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("bech32: %w", err)
	}

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(grouped) + 6)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, v := range grouped {
		sb.WriteByte(bech32Alphabet[v])
	}
	for _, v := range bech32Checksum(hrp, grouped) {
		sb.WriteByte(bech32Alphabet[v])
	}
	return sb.String(), nil
}

// Bech32Decode splits a bech32 string into its human-readable part and
// data bytes, verifying the checksum. Mixed-case input is rejected.
func Bech32Decode(s string) (string, []byte, error) {
	if s == "" {
		return "", nil, fmt.Errorf("bech32: empty string")
	}

	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("bech32: mixed case")
	}
	s = strings.ToLower(s)

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 {
		return "", nil, fmt.Errorf("bech32: missing separator")
	}
	if len(s)-sep-1 < 6 {
		return "", nil, fmt.Errorf("bech32: too short")
	}

	hrp := s[:sep]
	payload := s[sep+1:]

	values := make([]byte, len(payload))
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if c > 127 || bech32Values[c] < 0 {
			return "", nil, fmt.Errorf("bech32: invalid character %q", rune(c))
		}
		values[i] = byte(bech32Values[c])
	}

	if bech32Polymod(append(bech32ExpandHRP(hrp), values...)) != 1 {
		return "", nil, fmt.Errorf("bech32: invalid checksum")
	}

	data, err := regroupBits(values[:len(values)-6], 5, 8, false)
	if err != nil {
		return "", nil, fmt.Errorf("bech32: %w", err)
	}
	return hrp, data, nil
}

var bech32Generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

func bech32Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i, g := range bech32Generator {
			if (top>>uint(i))&1 == 1 {
				chk ^= g
			}
		}
	}
	return chk
}

func bech32ExpandHRP(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func bech32Checksum(hrp string, data []byte) []byte {
	values := append(bech32ExpandHRP(hrp), data...)
	values = append(values, 0, 0, 0, 0, 0, 0)
	mod := bech32Polymod(values) ^ 1
	out := make([]byte, 6)
	for i := range out {
		out[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return out
}

// regroupBits repacks data from fromBits-sized groups into toBits-sized
// groups. pad zero-fills a trailing incomplete group; without pad, any
// leftover bits must be zero.
func regroupBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var (
		acc  uint32
		bits uint
		out  []byte
	)
	maxv := uint32(1<<toBits) - 1

	for _, b := range data {
		if uint32(b)>>fromBits != 0 {
			return nil, fmt.Errorf("invalid data byte %d", b)
		}
		acc = acc<<fromBits | uint32(b)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte((acc>>bits)&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte((acc<<(toBits-bits))&maxv))
		}
		return out, nil
	}
	if bits >= fromBits || (acc<<(toBits-bits))&maxv != 0 {
		return nil, fmt.Errorf("non-zero padding")
	}
	return out, nil
}
