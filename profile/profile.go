// Package profile loads run profiles: named validator selections plus the
// run policy applied to them.
//
// A profile is a TOML document:
//
//	version = "1"
//	name = "nightly"
//	validators = ["SHA2", "GCM", "Ed25519"]
//	thorough = true
//	replays = 3
//	timeout = "30s"
//
// Unknown keys are rejected. Validator names are not checked here; the
// runner reports unknown names when the selection is run.
package profile

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lattice-substrate/cryptval/valerr"
)

// Version is the only supported profile version.
const Version = "1"

// Duration is a time.Duration decoded from a Go duration string.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Profile is a decoded run profile.
type Profile struct {
	Version    string   `toml:"version"`
	Name       string   `toml:"name"`
	Validators []string `toml:"validators"`
	Thorough   bool     `toml:"thorough"`
	Replays    int      `toml:"replays"`
	Timeout    Duration `toml:"timeout"`
}

// Load reads, decodes, and validates the profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // profile path is explicit operator input.
	if err != nil {
		return nil, valerr.Wrap(valerr.InvalidConfig, path, "read profile", err)
	}
	p, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a profile document. A missing replays key
// means one run.
func Parse(doc string) (*Profile, error) {
	var p Profile
	md, err := toml.Decode(doc, &p)
	if err != nil {
		return nil, valerr.Wrap(valerr.InvalidConfig, "", "decode profile toml", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, valerr.New(valerr.InvalidConfig, keys[0], "unknown profile keys: "+strings.Join(keys, ", "))
	}
	if !md.IsDefined("replays") {
		p.Replays = 1
	}
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks profile semantics.
func Validate(p *Profile) error {
	if p == nil {
		return valerr.New(valerr.InvalidConfig, "", "profile is nil")
	}
	if p.Version != Version {
		return valerr.New(valerr.InvalidConfig, p.Version, fmt.Sprintf("unsupported profile version, want %q", Version))
	}
	if strings.TrimSpace(p.Name) == "" {
		return valerr.New(valerr.InvalidConfig, "", "profile name is required")
	}
	if len(p.Validators) == 0 {
		return valerr.New(valerr.InvalidConfig, p.Name, "profile validators cannot be empty")
	}
	seen := make(map[string]struct{}, len(p.Validators))
	for i, v := range p.Validators {
		if v == "" {
			return valerr.New(valerr.InvalidConfig, p.Name, fmt.Sprintf("validators[%d] is empty", i))
		}
		if _, ok := seen[v]; ok {
			return valerr.New(valerr.InvalidConfig, v, "duplicate validator in profile")
		}
		seen[v] = struct{}{}
	}
	if p.Replays < 1 {
		return valerr.New(valerr.InvalidConfig, p.Name, "profile replays must be >= 1")
	}
	if p.Timeout.Duration < 0 {
		return valerr.New(valerr.InvalidConfig, p.Timeout.String(), "profile timeout cannot be negative")
	}
	return nil
}
