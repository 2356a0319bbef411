package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lattice-substrate/cryptval/runner"
	"github.com/lattice-substrate/cryptval/timefmt"
	"github.com/lattice-substrate/cryptval/valerr"
)

// EvidenceSchemaVersion identifies the evidence file layout.
const EvidenceSchemaVersion = "cryptval.evidence.v1"

// Evidence is the on-disk record of one CLI run.
type Evidence struct {
	SchemaVersion  string          `json:"schema_version"`
	SessionID      string          `json:"session_id"`
	StartedAtUTC   string          `json:"started_at_utc"`
	CompletedAtUTC string          `json:"completed_at_utc"`
	Started        string          `json:"started"`
	Completed      string          `json:"completed"`
	Profile        string          `json:"profile,omitempty"`
	Thorough       bool            `json:"thorough"`
	Selected       []string        `json:"selected"`
	Aggregate      bool            `json:"aggregate"`
	Results        []runner.Result `json:"results"`
	SummarySHA256  string          `json:"summary_sha256"`
	ReplaySHA256   []string        `json:"replay_sha256"`
}

// EvidenceOptions carries the run metadata that is not part of a summary.
type EvidenceOptions struct {
	SessionID string
	Profile   string
	Started   time.Time
	Completed time.Time
	// Location renders the human-readable times. Nil means UTC.
	Location *time.Location
}

// BuildEvidence records runs, the first of which is the baseline. Every
// later run is a replay of the same selection.
func BuildEvidence(runs []*runner.Summary, opts EvidenceOptions) (*Evidence, error) {
	if len(runs) == 0 || runs[0] == nil {
		return nil, valerr.New(valerr.InternalError, "", "evidence needs at least one run")
	}
	digests := make([]string, len(runs))
	for i, s := range runs {
		d, err := Digest(s)
		if err != nil {
			return nil, err
		}
		digests[i] = d
	}

	base := runs[0]
	selected := make([]string, len(base.Results))
	for i, r := range base.Results {
		selected[i] = r.Name
	}
	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	results := base.Results
	if results == nil {
		results = []runner.Result{}
	}

	return &Evidence{
		SchemaVersion:  EvidenceSchemaVersion,
		SessionID:      id,
		StartedAtUTC:   opts.Started.UTC().Format(time.RFC3339),
		CompletedAtUTC: opts.Completed.UTC().Format(time.RFC3339),
		Started:        timefmt.FormatIn(opts.Started, opts.Location),
		Completed:      timefmt.FormatIn(opts.Completed, opts.Location),
		Profile:        opts.Profile,
		Thorough:       base.Thorough,
		Selected:       selected,
		Aggregate:      base.Aggregate,
		Results:        append([]runner.Result(nil), results...),
		SummarySHA256:  digests[0],
		ReplaySHA256:   digests,
	}, nil
}

// Summary reconstructs the baseline summary recorded in e.
func (e *Evidence) Summary() *runner.Summary {
	return &runner.Summary{Thorough: e.Thorough, Aggregate: e.Aggregate, Results: e.Results}
}

// WriteEvidence writes e as canonical JSON followed by one LF. The file is
// replaced atomically and created with mode 0600.
func WriteEvidence(path string, e *Evidence) error {
	if e == nil {
		return valerr.New(valerr.InternalError, path, "evidence is nil")
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return valerr.Wrap(valerr.InternalError, path, "marshal evidence", err)
	}
	body, err := canonicalize(raw)
	if err != nil {
		return valerr.Wrap(valerr.InternalError, path, "canonicalize evidence", err)
	}
	return writeAtomic(path, append(body, '\n'))
}

// LoadEvidence reads an evidence file. The body must be canonical JSON
// terminated by exactly one LF.
func LoadEvidence(path string) (*Evidence, error) {
	data, err := os.ReadFile(path) //nolint:gosec // evidence path is explicit operator input.
	if err != nil {
		return nil, valerr.Wrap(valerr.InternalIO, path, "read evidence", err)
	}
	if len(data) < 2 || data[len(data)-1] != '\n' || data[len(data)-2] == '\n' {
		return nil, valerr.New(valerr.MalformedInput, path, "evidence must end with exactly one LF")
	}
	body := data[:len(data)-1]
	canon, err := canonicalize(body)
	if err != nil {
		return nil, valerr.Wrap(valerr.MalformedInput, path, "decode evidence", err)
	}
	if !bytes.Equal(canon, body) {
		return nil, valerr.New(valerr.MalformedInput, path, "evidence is not canonical JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	var e Evidence
	if err := dec.Decode(&e); err != nil {
		return nil, valerr.Wrap(valerr.MalformedInput, path, "decode evidence", err)
	}
	return &e, nil
}

// VerifyEvidence checks e for internal consistency: schema, identifiers,
// timestamps, the recorded summary digest, and replay stability.
func VerifyEvidence(e *Evidence) error {
	if e == nil {
		return valerr.New(valerr.MalformedInput, "", "evidence is nil")
	}
	if e.SchemaVersion != EvidenceSchemaVersion {
		return valerr.New(valerr.MalformedInput, e.SchemaVersion, "unsupported schema_version")
	}
	if _, err := uuid.Parse(e.SessionID); err != nil {
		return valerr.Wrap(valerr.MalformedInput, e.SessionID, "invalid session_id", err)
	}
	started, err := time.Parse(time.RFC3339, e.StartedAtUTC)
	if err != nil {
		return valerr.Wrap(valerr.MalformedInput, e.StartedAtUTC, "invalid started_at_utc", err)
	}
	completed, err := time.Parse(time.RFC3339, e.CompletedAtUTC)
	if err != nil {
		return valerr.Wrap(valerr.MalformedInput, e.CompletedAtUTC, "invalid completed_at_utc", err)
	}
	if completed.Before(started) {
		return valerr.New(valerr.MalformedInput, e.CompletedAtUTC, "completed_at_utc precedes started_at_utc")
	}

	if len(e.Selected) != len(e.Results) {
		return valerr.New(valerr.MalformedInput, "", fmt.Sprintf("selected %d validators but recorded %d results", len(e.Selected), len(e.Results)))
	}
	aggregate := true
	for i, r := range e.Results {
		if r.Name != e.Selected[i] {
			return valerr.New(valerr.MalformedInput, r.Name, fmt.Sprintf("result %d does not match selection %q", i, e.Selected[i]))
		}
		aggregate = aggregate && r.Passed
	}
	if aggregate != e.Aggregate {
		return valerr.New(valerr.MalformedInput, "", "aggregate does not match results")
	}

	digest, err := Digest(e.Summary())
	if err != nil {
		return err
	}
	if digest != e.SummarySHA256 {
		return valerr.New(valerr.MalformedInput, e.SummarySHA256, "summary digest mismatch")
	}
	if len(e.ReplaySHA256) == 0 || e.ReplaySHA256[0] != e.SummarySHA256 {
		return valerr.New(valerr.MalformedInput, "", "replay digests must start with the summary digest")
	}
	return CheckReplays(e.ReplaySHA256)
}

// writeAtomic writes data to path using temp file + rename in the same
// directory. On failure the temp file is removed and path is untouched.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".cryptval-evidence-*.tmp")
	if err != nil {
		return valerr.Wrap(valerr.InternalIO, path, "create temp file", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return valerr.Wrap(valerr.InternalIO, path, "write temp file", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		return valerr.Wrap(valerr.InternalIO, path, "chmod temp file", err)
	}
	if err := tmp.Sync(); err != nil {
		return valerr.Wrap(valerr.InternalIO, path, "sync temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return valerr.Wrap(valerr.InternalIO, path, "close temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return valerr.Wrap(valerr.InternalIO, path, "rename temp to final", err)
	}
	committed = true

	syncDir(dir)
	return nil
}

// syncDir fsyncs dir so the rename survives a crash. Errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir) //nolint:gosec // dir is the evidence file's parent.
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}
