package randsrc

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/lattice-substrate/cryptval/valerr"
)

// Generator is the random-number capability required by primitives under test.
type Generator interface {
	// Generate returns exactly n bytes or an error.
	Generate(n int) ([]byte, error)
}

// FixedRNG draws bytes verbatim and in order from the ByteSource it owns.
// A FixedRNG is built for one validator invocation and must not be shared.
type FixedRNG struct {
	src *ByteSource
}

// NewFixedRNG takes ownership of src.
func NewFixedRNG(src *ByteSource) *FixedRNG {
	return &FixedRNG{src: src}
}

// FixedRNGFromHex is a convenience for vectors that script the RNG as hex.
func FixedRNGFromHex(s string) (*FixedRNG, error) {
	src, err := FromHex(s)
	if err != nil {
		return nil, err
	}
	return NewFixedRNG(src), nil
}

// Generate returns the next n scripted bytes. Asking for more than remain is
// always a test-data or test-code defect and fails with
// valerr.SourceExhausted.
func (g *FixedRNG) Generate(n int) ([]byte, error) {
	b, err := g.src.Take(n)
	if err != nil {
		return nil, fmt.Errorf("fixed rng: %w", err)
	}
	return b, nil
}

// Read implements io.Reader for primitives that take one. Reads are
// all-or-nothing: a short script fails the whole read.
func (g *FixedRNG) Read(p []byte) (int, error) {
	b, err := g.Generate(len(p))
	if err != nil {
		return 0, err
	}
	return copy(p, b), nil
}

// Remaining reports how many scripted bytes are left.
func (g *FixedRNG) Remaining() (int, error) {
	return g.src.Remaining()
}

// SystemRNG draws from the operating system entropy source.
type SystemRNG struct{}

// Generate returns n bytes from crypto/rand.
func (SystemRNG) Generate(n int) ([]byte, error) {
	if n < 0 {
		return nil, valerr.New(valerr.MalformedInput, "", fmt.Sprintf("negative byte count %d", n))
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, valerr.Wrap(valerr.InternalIO, "", "read system entropy", err)
	}
	return b, nil
}

// Read implements io.Reader.
func (SystemRNG) Read(p []byte) (int, error) {
	return rand.Read(p)
}

var (
	_ Generator = (*FixedRNG)(nil)
	_ Generator = SystemRNG{}
	_ io.Reader = (*FixedRNG)(nil)
	_ io.Reader = SystemRNG{}
)
