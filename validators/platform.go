package validators

import (
	"bytes"
	"compress/flate"
	"encoding/binary"
	"math"
	"math/bits"
	"strconv"

	"github.com/lattice-substrate/cryptval/randsrc"
	"github.com/lattice-substrate/cryptval/scalar"
	"github.com/lattice-substrate/cryptval/valerr"
)

// validateSettings checks that the platform's byte order and word size are
// self-consistent and that the scalar parser honours the native int width.
func validateSettings() error {
	var word [2]byte
	binary.NativeEndian.PutUint16(word[:], 0x0102)
	little := binary.LittleEndian.Uint16(word[:]) == 0x0102
	big := binary.BigEndian.Uint16(word[:]) == 0x0102
	if little == big {
		return failf("endianness", "native byte order is neither little nor big endian: % x", word)
	}

	if bits.UintSize != strconv.IntSize {
		return failf("word size", "bits.UintSize=%d strconv.IntSize=%d", bits.UintSize, strconv.IntSize)
	}
	if bits.UintSize != 32 && bits.UintSize != 64 {
		return failf("word size", "unsupported word size %d", bits.UintSize)
	}

	maxInt, err := scalar.Parse[int](strconv.Itoa(math.MaxInt), true)
	if err != nil {
		return err
	}
	if maxInt != math.MaxInt {
		return failf("int width", "parsed MaxInt as %d", maxInt)
	}
	over := strconv.FormatUint(uint64(math.MaxInt)+1, 10)
	if _, err := scalar.Parse[int](over, false); !valerr.Is(err, valerr.OutOfRange) {
		return failf("int width", "MaxInt+1 accepted or misclassified: %v", err)
	}
	return nil
}

// validateOSRNG draws two blocks from the system generator. They must
// differ and must not compress.
func validateOSRNG() error {
	n, err := count("os rng block", "1024")
	if err != nil {
		return err
	}
	rng := randsrc.SystemRNG{}
	a, err := rng.Generate(n)
	if err != nil {
		return err
	}
	b, err := rng.Generate(n)
	if err != nil {
		return err
	}
	if bytes.Equal(a, b) {
		return failf("os rng", "two consecutive %d-byte blocks are identical", n)
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return valerr.Wrap(valerr.InternalError, "os rng", "create deflater", err)
	}
	if _, err := w.Write(a); err != nil {
		return valerr.Wrap(valerr.InternalError, "os rng", "deflate", err)
	}
	if err := w.Close(); err != nil {
		return valerr.Wrap(valerr.InternalError, "os rng", "deflate", err)
	}
	if buf.Len() < n {
		return failf("os rng", "%d random bytes deflated to %d", n, buf.Len())
	}
	return nil
}

// validateFixedRNG checks that the deterministic generator replays its
// script exactly and refuses to read past it.
func validateFixedRNG() error {
	const vector = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	rng, err := script("fixed rng", vector)
	if err != nil {
		return err
	}
	want, err := unhex("fixed rng", vector)
	if err != nil {
		return err
	}

	var got []byte
	for _, tok := range []string{"0", "1", "7", "8", "16"} {
		n, err := count("fixed rng chunk", tok)
		if err != nil {
			return err
		}
		b, err := rng.Generate(n)
		if err != nil {
			return err
		}
		got = append(got, b...)
	}
	if !bytes.Equal(got, want) {
		return mismatch("fixed rng replay", got, want)
	}

	if _, err := rng.Generate(1); !valerr.Is(err, valerr.SourceExhausted) {
		return failf("fixed rng", "read past end of script: %v", err)
	}
	left, err := rng.Remaining()
	if err != nil {
		return err
	}
	if left != 0 {
		return failf("fixed rng", "%d bytes left after full replay", left)
	}
	return nil
}
