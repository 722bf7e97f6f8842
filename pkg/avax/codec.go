package avax

import (
	"encoding/binary"
	"fmt"

	"github.com/frostlabs/frostgate/pkg/crypto"
	"github.com/frostlabs/frostgate/pkg/types"
)

// Codec identifiers. The first two bytes of any serialized transaction
// declare whether a signature envelope follows the body.
const (
	codecUnsigned uint16 = 0
	codecSigned   uint16 = 1
)

// maxListLen caps decoded list lengths so malformed input cannot force huge
// allocations before a bounds error is hit.
const maxListLen = 4096

// Bytes returns the canonical serialization of the unsigned transaction body.
// Format: codec(2) | version(4) | network_id(4) | blockchain_id(32) |
// input_count(4) | inputs... | output_count(4) | outputs... | memo_len(4) | memo
// All integers are little-endian.
func (tx *Tx) Bytes() []byte {
	var buf []byte
	buf = binary.LittleEndian.AppendUint16(buf, codecUnsigned)
	buf = binary.LittleEndian.AppendUint32(buf, tx.Version)
	buf = binary.LittleEndian.AppendUint32(buf, tx.NetworkID)
	buf = append(buf, tx.BlockchainID[:]...)

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf = append(buf, in.PrevOut.TxID[:]...)
		buf = binary.LittleEndian.AppendUint32(buf, in.PrevOut.Index)
		buf = binary.LittleEndian.AppendUint64(buf, in.Amount)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.Addresses)))
		for _, addr := range in.Addresses {
			buf = append(buf, addr[:]...)
		}
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(in.SigIndices)))
		for _, idx := range in.SigIndices {
			buf = binary.LittleEndian.AppendUint32(buf, idx)
		}
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		buf = binary.LittleEndian.AppendUint64(buf, out.Amount)
		buf = binary.LittleEndian.AppendUint64(buf, out.Locktime)
		buf = binary.LittleEndian.AppendUint32(buf, out.Threshold)
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(out.Addresses)))
		for _, addr := range out.Addresses {
			buf = append(buf, addr[:]...)
		}
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(tx.Memo)))
	buf = append(buf, tx.Memo...)
	return buf
}

// Bytes returns the serialization of the signed transaction: the signature
// envelope wrapping the canonical unsigned body.
// Format: codec(2) | tx_len(4) | tx_bytes | credential_count(4) |
// [sig_count(4) | sigs(65 each)]...
func (s *SignedTx) Bytes() []byte {
	txBytes := s.Tx.Bytes()

	var buf []byte
	buf = binary.LittleEndian.AppendUint16(buf, codecSigned)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(txBytes)))
	buf = append(buf, txBytes...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s.Credentials)))
	for _, cred := range s.Credentials {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(len(cred.Sigs)))
		for _, sig := range cred.Sigs {
			buf = append(buf, sig[:]...)
		}
	}
	return buf
}

// ParsedTx is the result of decoding raw transaction bytes: exactly one of
// Signed or Unsigned is non-nil.
type ParsedTx struct {
	Signed   *SignedTx
	Unsigned *Tx
}

// ParseTx decodes raw bytes as either a signed envelope or a bare unsigned
// transaction body. A declared-signed payload with a malformed envelope is
// retried as an unsigned body before failing, so a dApp that mislabels bytes
// still gets a usable parse where possible.
func ParseTx(b []byte) (ParsedTx, error) {
	if len(b) < 2 {
		return ParsedTx{}, fmt.Errorf("transaction too short: %d bytes", len(b))
	}

	switch binary.LittleEndian.Uint16(b) {
	case codecSigned:
		signed, err := unmarshalSignedTx(b)
		if err == nil {
			return ParsedTx{Signed: signed}, nil
		}
		tx, uerr := UnmarshalTx(b)
		if uerr != nil {
			return ParsedTx{}, fmt.Errorf("decode signed tx: %w", err)
		}
		return ParsedTx{Unsigned: tx}, nil
	case codecUnsigned:
		tx, err := UnmarshalTx(b)
		if err != nil {
			return ParsedTx{}, fmt.Errorf("decode tx: %w", err)
		}
		return ParsedTx{Unsigned: tx}, nil
	default:
		return ParsedTx{}, fmt.Errorf("unknown transaction codec %#04x", binary.LittleEndian.Uint16(b))
	}
}

// UnmarshalTx strictly decodes an unsigned transaction body. Trailing bytes
// are an error.
func UnmarshalTx(b []byte) (*Tx, error) {
	r := &byteReader{buf: b}

	codec, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if codec != codecUnsigned {
		return nil, fmt.Errorf("unexpected codec %#04x for unsigned tx", codec)
	}

	tx := &Tx{}
	if tx.Version, err = r.uint32(); err != nil {
		return nil, err
	}
	if tx.NetworkID, err = r.uint32(); err != nil {
		return nil, err
	}
	if err = r.hash(&tx.BlockchainID); err != nil {
		return nil, err
	}

	inCount, err := r.listLen("inputs")
	if err != nil {
		return nil, err
	}
	tx.Inputs = make([]Input, inCount)
	for i := range tx.Inputs {
		in := &tx.Inputs[i]
		if err = r.hash(&in.PrevOut.TxID); err != nil {
			return nil, err
		}
		if in.PrevOut.Index, err = r.uint32(); err != nil {
			return nil, err
		}
		if in.Amount, err = r.uint64(); err != nil {
			return nil, err
		}
		if in.Addresses, err = r.addresses(); err != nil {
			return nil, err
		}
		sigCount, serr := r.listLen("sig indices")
		if serr != nil {
			return nil, serr
		}
		in.SigIndices = make([]uint32, sigCount)
		for j := range in.SigIndices {
			if in.SigIndices[j], err = r.uint32(); err != nil {
				return nil, err
			}
		}
	}

	outCount, err := r.listLen("outputs")
	if err != nil {
		return nil, err
	}
	tx.Outputs = make([]Output, outCount)
	for i := range tx.Outputs {
		out := &tx.Outputs[i]
		if out.Amount, err = r.uint64(); err != nil {
			return nil, err
		}
		if out.Locktime, err = r.uint64(); err != nil {
			return nil, err
		}
		if out.Threshold, err = r.uint32(); err != nil {
			return nil, err
		}
		if out.Addresses, err = r.addresses(); err != nil {
			return nil, err
		}
	}

	memoLen, err := r.listLen("memo")
	if err != nil {
		return nil, err
	}
	if memoLen > 0 {
		if tx.Memo, err = r.bytes(memoLen); err != nil {
			return nil, err
		}
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("trailing %d bytes after tx body", r.remaining())
	}
	return tx, nil
}

// unmarshalSignedTx strictly decodes a signature envelope.
func unmarshalSignedTx(b []byte) (*SignedTx, error) {
	r := &byteReader{buf: b}

	codec, err := r.uint16()
	if err != nil {
		return nil, err
	}
	if codec != codecSigned {
		return nil, fmt.Errorf("unexpected codec %#04x for signed tx", codec)
	}

	txLen, err := r.uint32()
	if err != nil {
		return nil, err
	}
	txBytes, err := r.bytes(int(txLen))
	if err != nil {
		return nil, err
	}
	tx, err := UnmarshalTx(txBytes)
	if err != nil {
		return nil, fmt.Errorf("envelope body: %w", err)
	}

	credCount, err := r.listLen("credentials")
	if err != nil {
		return nil, err
	}
	creds := make([]Credential, credCount)
	for i := range creds {
		sigCount, serr := r.listLen("signatures")
		if serr != nil {
			return nil, serr
		}
		creds[i].Sigs = make([][crypto.SignatureSize]byte, sigCount)
		for j := range creds[i].Sigs {
			raw, berr := r.bytes(crypto.SignatureSize)
			if berr != nil {
				return nil, berr
			}
			copy(creds[i].Sigs[j][:], raw)
		}
	}

	if r.remaining() != 0 {
		return nil, fmt.Errorf("trailing %d bytes after credentials", r.remaining())
	}
	return &SignedTx{Tx: tx, Credentials: creds}, nil
}

// byteReader is a bounds-checked little-endian reader over a byte slice.
type byteReader struct {
	buf []byte
	off int
}

func (r *byteReader) remaining() int {
	return len(r.buf) - r.off
}

func (r *byteReader) bytes(n int) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("truncated: need %d bytes, have %d", n, r.remaining())
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *byteReader) uint16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *byteReader) uint32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) uint64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) hash(h *types.Hash) error {
	b, err := r.bytes(types.HashSize)
	if err != nil {
		return err
	}
	copy(h[:], b)
	return nil
}

func (r *byteReader) listLen(what string) (int, error) {
	n, err := r.uint32()
	if err != nil {
		return 0, err
	}
	if n > maxListLen {
		return 0, fmt.Errorf("%s length %d exceeds limit %d", what, n, maxListLen)
	}
	return int(n), nil
}

func (r *byteReader) addresses() ([]types.Address, error) {
	count, err := r.listLen("addresses")
	if err != nil {
		return nil, err
	}
	addrs := make([]types.Address, count)
	for i := range addrs {
		b, berr := r.bytes(types.AddressSize)
		if berr != nil {
			return nil, berr
		}
		copy(addrs[i][:], b)
	}
	return addrs, nil
}
