package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lattice-substrate/cryptval/report"
	"github.com/lattice-substrate/cryptval/runner"
	"github.com/lattice-substrate/cryptval/valerr"
)

func mixedSummary() *runner.Summary {
	return &runner.Summary{
		Thorough:  false,
		Aggregate: false,
		Results: []runner.Result{
			{Name: "A", Passed: true},
			{Name: "B", Message: "bad", Class: valerr.ValidatorFailure},
		},
	}
}

func passingSummary() *runner.Summary {
	return &runner.Summary{
		Thorough:  true,
		Aggregate: true,
		Results: []runner.Result{
			{Name: "SHA", Passed: true},
			{Name: "MD5", Passed: true},
		},
	}
}

func TestCanonicalBytes(t *testing.T) {
	got, err := report.Canonical(mixedSummary())
	require.NoError(t, err)
	want := `{"aggregate":false,"results":[{"name":"A","passed":true},` +
		`{"class":"VALIDATOR_FAILURE","message":"bad","name":"B","passed":false}],"thorough":false}`
	require.Equal(t, want, string(got))
}

func TestCanonicalEmptyResults(t *testing.T) {
	got, err := report.Canonical(&runner.Summary{Aggregate: true})
	require.NoError(t, err)
	require.Equal(t, `{"aggregate":true,"results":[],"thorough":false}`, string(got))
}

func TestDigestStable(t *testing.T) {
	a, err := report.Digest(mixedSummary())
	require.NoError(t, err)
	b, err := report.Digest(mixedSummary())
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	c, err := report.Digest(passingSummary())
	require.NoError(t, err)
	require.NotEqual(t, a, c)
}

func TestCheckReplays(t *testing.T) {
	d := strings.Repeat("a", 64)
	require.NoError(t, report.CheckReplays([]string{d}))
	require.NoError(t, report.CheckReplays([]string{d, d, d}))

	err := report.CheckReplays([]string{d, d, strings.Repeat("b", 64)})
	require.True(t, valerr.Is(err, valerr.ReplayDrift), "got %v", err)
	require.Contains(t, err.Error(), "replay 3")

	err = report.CheckReplays(nil)
	require.True(t, valerr.Is(err, valerr.InvalidConfig), "got %v", err)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	style := report.Style{
		Fail: func(s string) string { return "<" + s + ">" },
	}
	require.NoError(t, report.WriteText(&buf, mixedSummary(), style))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"passed  A",
		"<FAILED  >B [VALIDATOR_FAILURE] bad",
		"",
		"<Some validators FAILED.> 1 passed, 1 failed (default mode)",
	}, lines)
}

func TestWriteTextAllPassed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteText(&buf, passingSummary(), report.Style{}))
	require.True(t, strings.HasSuffix(buf.String(), "All validators passed. 2 passed, 0 failed (thorough mode)\n"), buf.String())
}

func fixedOptions() report.EvidenceOptions {
	started := time.Date(2026, time.October, 17, 9, 5, 3, 0, time.UTC)
	return report.EvidenceOptions{
		SessionID: "6f1c2a4e-8d3b-4c1f-9a7e-2b5d0c9e1f34",
		Profile:   "nightly",
		Started:   started,
		Completed: started.Add(2 * time.Second),
	}
}

func TestBuildEvidence(t *testing.T) {
	s := passingSummary()
	e, err := report.BuildEvidence([]*runner.Summary{s, passingSummary()}, fixedOptions())
	require.NoError(t, err)

	require.Equal(t, report.EvidenceSchemaVersion, e.SchemaVersion)
	require.Equal(t, "2026-10-17T09:05:03Z", e.StartedAtUTC)
	require.Equal(t, "2026-10-17T09:05:05Z", e.CompletedAtUTC)
	require.Equal(t, "Sat Oct 17 09:05:03 2026", e.Started)
	require.Equal(t, []string{"SHA", "MD5"}, e.Selected)
	require.True(t, e.Thorough)
	require.Len(t, e.ReplaySHA256, 2)
	require.Equal(t, e.SummarySHA256, e.ReplaySHA256[1])
	require.NoError(t, report.VerifyEvidence(e))
}

func TestBuildEvidenceGeneratesSessionID(t *testing.T) {
	opts := fixedOptions()
	opts.SessionID = ""
	e, err := report.BuildEvidence([]*runner.Summary{passingSummary()}, opts)
	require.NoError(t, err)
	_, err = uuid.Parse(e.SessionID)
	require.NoError(t, err)
}

func TestBuildEvidenceRequiresRun(t *testing.T) {
	_, err := report.BuildEvidence(nil, fixedOptions())
	require.Error(t, err)
}

func TestEvidenceWriteLoadVerify(t *testing.T) {
	e, err := report.BuildEvidence([]*runner.Summary{mixedSummary()}, fixedOptions())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "evidence.json")
	require.NoError(t, report.WriteEvidence(path, e))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasSuffix(data, []byte("}\n")))
	require.Equal(t, 1, bytes.Count(data, []byte("\n")))

	loaded, err := report.LoadEvidence(path)
	require.NoError(t, err)
	require.Equal(t, e, loaded)
	require.NoError(t, report.VerifyEvidence(loaded))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestLoadEvidenceRejectsNonCanonical(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"pretty.json":      "{\n  \"schema_version\": \"x\"\n}\n",
		"no-lf.json":       `{"schema_version":"x"}`,
		"double-lf.json":   "{\"schema_version\":\"x\"}\n\n",
		"unsorted.json":    "{\"session_id\":\"x\",\"schema_version\":\"x\"}\n",
		"not-json.json":    "nope\n",
		"unknown-key.json": "{\"extra\":1}\n",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		_, err := report.LoadEvidence(path)
		require.True(t, valerr.Is(err, valerr.MalformedInput), "%s: got %v", name, err)
	}

	_, err := report.LoadEvidence(filepath.Join(dir, "missing.json"))
	require.True(t, valerr.Is(err, valerr.InternalIO), "got %v", err)
}

func TestVerifyEvidenceDetectsTampering(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(*report.Evidence)
		class  valerr.FailureClass
		want   string
	}{
		{"schema", func(e *report.Evidence) { e.SchemaVersion = "v0" }, valerr.MalformedInput, "schema_version"},
		{"session", func(e *report.Evidence) { e.SessionID = "not-a-uuid" }, valerr.MalformedInput, "session_id"},
		{"started", func(e *report.Evidence) { e.StartedAtUTC = "yesterday" }, valerr.MalformedInput, "started_at_utc"},
		{"order", func(e *report.Evidence) { e.CompletedAtUTC = "2020-01-01T00:00:00Z" }, valerr.MalformedInput, "precedes"},
		{"passed", func(e *report.Evidence) { e.Results[1].Passed = true }, valerr.MalformedInput, "aggregate"},
		{"message", func(e *report.Evidence) { e.Results[1].Message = "fine" }, valerr.MalformedInput, "digest mismatch"},
		{"selection", func(e *report.Evidence) { e.Selected[0] = "Z" }, valerr.MalformedInput, "selection"},
		{"drift", func(e *report.Evidence) {
			e.ReplaySHA256 = append(e.ReplaySHA256, strings.Repeat("0", 64))
		}, valerr.ReplayDrift, "differs"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e, err := report.BuildEvidence([]*runner.Summary{mixedSummary()}, fixedOptions())
			require.NoError(t, err)
			tc.tamper(e)
			err = report.VerifyEvidence(e)
			require.True(t, valerr.Is(err, tc.class), "got %v", err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}
