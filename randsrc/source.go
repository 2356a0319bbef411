// Package randsrc supplies random-shaped bytes to primitives under test.
//
// FixedRNG replays a finite, pre-scripted byte sequence so randomized
// algorithms produce reproducible test vectors. It is not random at all: it
// never reseeds and never produces a byte outside its script. SystemRNG is the
// entropy-backed variant used where reproducibility is not required.
package randsrc

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/lattice-substrate/cryptval/valerr"
)

const (
	maxEmptyReads = 100
	// readChunk bounds each read so a request larger than the source fails
	// as exhausted instead of allocating the full request up front.
	readChunk = 4096
)

// ByteSource is a finite, ordered byte sequence with a read cursor. Bytes are
// pulled from the wrapped reader on demand. Once the reader reports EOF and
// the buffered bytes are consumed, the source stays exhausted.
type ByteSource struct {
	r       io.Reader
	pending []byte
	drained bool
	err     error
}

// NewByteSource wraps any finite byte-producing reader.
func NewByteSource(r io.Reader) *ByteSource {
	return &ByteSource{r: r}
}

// FromBytes returns a source over a copy of b.
func FromBytes(b []byte) *ByteSource {
	return &ByteSource{pending: append([]byte(nil), b...), drained: true}
}

// FromHex returns a source over the hex-decoded bytes of s.
func FromHex(s string) (*ByteSource, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, valerr.Wrap(valerr.MalformedInput, "", "decode hex byte source", err)
	}
	return &ByteSource{pending: b, drained: true}, nil
}

// Remaining returns the number of unread bytes. For reader-backed sources it
// drains the reader into the buffer first.
func (s *ByteSource) Remaining() (int, error) {
	for !s.drained {
		if err := s.fill(len(s.pending) + 512); err != nil {
			return len(s.pending), err
		}
	}
	return len(s.pending), nil
}

// Take removes and returns exactly n bytes. When fewer than n bytes remain it
// fails with valerr.SourceExhausted and consumes nothing.
func (s *ByteSource) Take(n int) ([]byte, error) {
	if n < 0 {
		return nil, valerr.New(valerr.MalformedInput, "", fmt.Sprintf("negative byte count %d", n))
	}
	if err := s.fill(n); err != nil {
		return nil, err
	}
	if len(s.pending) < n {
		return nil, valerr.New(valerr.SourceExhausted, "",
			fmt.Sprintf("requested %d bytes, %d remaining", n, len(s.pending)))
	}
	out := make([]byte, n)
	copy(out, s.pending)
	s.pending = s.pending[n:]
	return out, nil
}

// fill buffers until at least want bytes are pending or the reader is drained.
func (s *ByteSource) fill(want int) error {
	if s.err != nil {
		return s.err
	}
	empty := 0
	for !s.drained && len(s.pending) < want {
		buf := make([]byte, min(want-len(s.pending), readChunk))
		n, err := s.r.Read(buf)
		s.pending = append(s.pending, buf[:n]...)
		if n == 0 && err == nil {
			empty++
			if empty >= maxEmptyReads {
				err = io.ErrNoProgress
			}
		} else {
			empty = 0
		}
		switch {
		case errors.Is(err, io.EOF):
			s.drained = true
		case err != nil:
			s.err = valerr.Wrap(valerr.InternalIO, "", "read byte source", err)
			return s.err
		}
	}
	return nil
}
