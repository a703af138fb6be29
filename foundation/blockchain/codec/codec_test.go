package codec_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/codec"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Layout(t *testing.T) {
	t.Log("Given the need to produce a fixed byte layout.")
	{
		enc := codec.NewEncoder(0)
		enc.Bytes([]byte{0xaa, 0xbb})
		enc.Uint64(42)
		enc.Uint32(7)
		enc.Uint8(1)
		enc.Fixed([]byte{0xcc})

		exp := []byte{
			2, 0, 0, 0, 0, 0, 0, 0, 0xaa, 0xbb, // length prefix then bytes
			42, 0, 0, 0, 0, 0, 0, 0, // u64 little endian
			7, 0, 0, 0, // u32 little endian
			1,    // u8
			0xcc, // fixed bytes
		}

		if !bytes.Equal(enc.Encoded(), exp) {
			t.Logf("\t%s\tgot: %x", failed, enc.Encoded())
			t.Logf("\t%s\texp: %x", failed, exp)
			t.Fatalf("\t%s\tShould get the canonical layout.", failed)
		}
		t.Logf("\t%s\tShould get the canonical layout.", success)

		dec := codec.NewDecoder(enc.Encoded())
		b := dec.Bytes()
		u64 := dec.Uint64()
		u32 := dec.Uint32()
		u8 := dec.Uint8()
		var fixed [1]byte
		dec.Fixed(fixed[:])

		if err := dec.Finish(); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the layout: %v", failed, err)
		}
		if !bytes.Equal(b, []byte{0xaa, 0xbb}) || u64 != 42 || u32 != 7 || u8 != 1 || fixed[0] != 0xcc {
			t.Fatalf("\t%s\tShould get back the encoded values.", failed)
		}
		t.Logf("\t%s\tShould get back the encoded values.", success)
	}
}

func Test_DecodeErrors(t *testing.T) {
	t.Log("Given the need to reject bad input.")
	{
		dec := codec.NewDecoder([]byte{1, 2, 3})
		dec.Uint64()
		if !errors.Is(dec.Err(), codec.ErrUnexpectedEOF) {
			t.Fatalf("\t%s\tShould fail on short input: %v", failed, dec.Err())
		}
		t.Logf("\t%s\tShould fail on short input.", success)

		dec = codec.NewDecoder([]byte{1, 0})
		dec.Uint8()
		if !errors.Is(dec.Finish(), codec.ErrTrailingBytes) {
			t.Fatalf("\t%s\tShould fail on trailing bytes.", failed)
		}
		t.Logf("\t%s\tShould fail on trailing bytes.", success)

		enc := codec.NewEncoder(8)
		enc.Uint64(codec.MaxBytesLen + 1)
		dec = codec.NewDecoder(enc.Encoded())
		dec.Bytes()
		if !errors.Is(dec.Err(), codec.ErrLengthTooBig) {
			t.Fatalf("\t%s\tShould fail on a huge length prefix: %v", failed, dec.Err())
		}
		t.Logf("\t%s\tShould fail on a huge length prefix.", success)

		dec = codec.NewDecoder([]byte{2})
		dec.Bool()
		if dec.Err() == nil {
			t.Fatalf("\t%s\tShould fail on an invalid bool byte.", failed)
		}
		t.Logf("\t%s\tShould fail on an invalid bool byte.", success)
	}
}
