package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"

	"github.com/lattice-substrate/cryptval/runner"
	"github.com/lattice-substrate/cryptval/valerr"
)

// Canonical returns the RFC 8785 canonical JSON encoding of s.
func Canonical(s *runner.Summary) ([]byte, error) {
	if s == nil {
		return nil, valerr.New(valerr.InternalError, "", "summary is nil")
	}
	view := *s
	if view.Results == nil {
		view.Results = []runner.Result{}
	}
	raw, err := json.Marshal(&view)
	if err != nil {
		return nil, valerr.Wrap(valerr.InternalError, "", "marshal summary", err)
	}
	out, err := canonicalize(raw)
	if err != nil {
		return nil, valerr.Wrap(valerr.InternalError, "", "canonicalize summary", err)
	}
	return out, nil
}

// Digest returns the hex SHA-256 of Canonical(s).
func Digest(s *runner.Summary) (string, error) {
	data, err := Canonical(s)
	if err != nil {
		return "", err
	}
	return sha256Hex(data), nil
}

// CheckReplays reports REPLAY_DRIFT if any digest differs from the first.
func CheckReplays(digests []string) error {
	if len(digests) == 0 {
		return valerr.New(valerr.InvalidConfig, "", "no replay digests")
	}
	baseline := digests[0]
	for i, d := range digests[1:] {
		if d != baseline {
			return valerr.New(valerr.ReplayDrift, fmt.Sprintf("replay %d", i+2),
				fmt.Sprintf("summary digest %s differs from baseline %s", d, baseline))
		}
	}
	return nil
}

func canonicalize(raw []byte) ([]byte, error) {
	return jsoncanonicalizer.Transform(raw)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
