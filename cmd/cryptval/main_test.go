package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lattice-substrate/cryptval/catalog"
	"github.com/lattice-substrate/cryptval/report"
	"github.com/lattice-substrate/cryptval/valerr"
)

func TestWriteClassifiedErrorWrapped(t *testing.T) {
	inner := valerr.New(valerr.UnknownValidator, "Nope", "no such validator")
	err := fmt.Errorf("outer: %w", inner)
	var stderr bytes.Buffer
	code := writeClassifiedError(&stderr, err)
	if code != valerr.UnknownValidator.ExitCode() {
		t.Fatalf("expected exit %d, got %d", valerr.UnknownValidator.ExitCode(), code)
	}
	if !strings.Contains(stderr.String(), "UNKNOWN_VALIDATOR") {
		t.Fatalf("stderr missing class: %q", stderr.String())
	}
}

func TestWriteClassifiedErrorFallback(t *testing.T) {
	var stderr bytes.Buffer
	code := writeClassifiedError(&stderr, fmt.Errorf("unclassified failure"))
	if code != valerr.InternalError.ExitCode() {
		t.Fatalf("expected exit %d, got %d", valerr.InternalError.ExitCode(), code)
	}
}

func TestWriteClassifiedErrorSilentExit(t *testing.T) {
	var stderr bytes.Buffer
	code := writeClassifiedError(&stderr, &ExitError{Code: valerr.ExitFailed})
	if code != valerr.ExitFailed {
		t.Fatalf("expected exit %d, got %d", valerr.ExitFailed, code)
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected no stderr output, got %q", stderr.String())
	}
}

type result struct {
	code   int
	stdout string
	stderr string
}

func execApp(t *testing.T, newCatalog func() *catalog.Catalog, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	if newCatalog != nil {
		a.newCatalog = newCatalog
	}
	code := a.execute(context.Background(), args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func stubCatalog(entries ...catalog.Entry) func() *catalog.Catalog {
	return func() *catalog.Catalog {
		c := catalog.New()
		c.MustRegister(entries...)
		return c
	}
}

func pass(name string) catalog.Entry {
	return catalog.Simple(name, func() (bool, error) { return true, nil })
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestVersion(t *testing.T) {
	r := execApp(t, nil, "version")
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	if r.stdout != "cryptval "+version+"\n" {
		t.Fatalf("unexpected output %q", r.stdout)
	}
}

func TestListPrintsCatalogInOrder(t *testing.T) {
	r := execApp(t, nil, "list")
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	lines := strings.Split(strings.TrimSuffix(r.stdout, "\n"), "\n")
	if len(lines) != 45 {
		t.Fatalf("expected 45 validators, got %d", len(lines))
	}
	if f := strings.Fields(lines[0]); f[0] != "Settings" || f[1] != "simple" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	kinds := make(map[string]string, len(lines))
	for _, l := range lines {
		f := strings.Fields(l)
		kinds[f[0]] = f[1]
	}
	for _, name := range []string{"SHA2", "PBKDF2", "Scrypt", "RSA", "DSA"} {
		if kinds[name] != "thorough" {
			t.Fatalf("%s: expected thorough, got %q", name, kinds[name])
		}
	}
}

func TestRunJSONSubset(t *testing.T) {
	r := execApp(t, nil, "run", "--only", "HMAC,SHA", "--json", "--log-level", "error")
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	want := `{"aggregate":true,"results":[{"name":"SHA","passed":true},{"name":"HMAC","passed":true}],"thorough":false}` + "\n"
	if r.stdout != want {
		t.Fatalf("got %q\nwant %q", r.stdout, want)
	}
	if r.stderr != "" {
		t.Fatalf("expected quiet stderr at error level, got %q", r.stderr)
	}
}

func TestRunTextReportsFailures(t *testing.T) {
	cat := stubCatalog(
		pass("Alpha"),
		catalog.Simple("Beta", func() (bool, error) { return false, nil }),
		pass("Gamma"),
	)
	r := execApp(t, cat, "run")
	if r.code != valerr.ExitFailed {
		t.Fatalf("exit %d, want %d; stderr %q", r.code, valerr.ExitFailed, r.stderr)
	}
	for _, want := range []string{"passed  Alpha", "FAILED  Beta", "passed  Gamma", "Some validators FAILED.", "2 passed, 1 failed (default mode)"} {
		if !strings.Contains(r.stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, r.stdout)
		}
	}
	if !strings.Contains(r.stderr, "run complete") {
		t.Fatalf("expected run log on stderr, got %q", r.stderr)
	}
}

func TestRunThoroughFlag(t *testing.T) {
	var got []bool
	cat := stubCatalog(catalog.Thorough("Deep", func(thorough bool) (bool, error) {
		got = append(got, thorough)
		return true, nil
	}))
	r := execApp(t, cat, "run", "--thorough", "--json")
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	if len(got) != 1 || !got[0] {
		t.Fatalf("expected one thorough invocation, got %v", got)
	}
	if !strings.Contains(r.stdout, `"thorough":true`) {
		t.Fatalf("summary not marked thorough: %q", r.stdout)
	}
}

func TestUsageAndConfigErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "unknown flag", args: []string{"run", "--frobnicate"}},
		{name: "positional argument", args: []string{"run", "extra"}},
		{name: "zero replays", args: []string{"run", "--replays", "0"}},
		{name: "negative timeout", args: []string{"run", "--timeout", "-1s"}},
		{name: "bad log level", args: []string{"run", "--log-level", "loud"}},
		{name: "unknown validator", args: []string{"run", "--only", "Nope"}},
		{name: "empty name", args: []string{"run", "--only", "SHA,,MD5"}},
		{name: "missing config", args: []string{"run", "--config", missing}},
		{name: "missing profile", args: []string{"run", "--profile", missing}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := execApp(t, nil, tc.args...)
			if r.code != valerr.ExitInvalid {
				t.Fatalf("exit %d, want %d; stderr %q", r.code, valerr.ExitInvalid, r.stderr)
			}
			if tc.args != nil && r.stdout != "" {
				t.Fatalf("expected no report on stdout, got %q", r.stdout)
			}
		})
	}
}

func TestRunSelectionFromEnvironment(t *testing.T) {
	t.Setenv("CRYPTVAL_ONLY", "Adler32,CRC32")
	t.Setenv("CRYPTVAL_JSON", "true")
	r := execApp(t, nil, "run")
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	want := `{"aggregate":true,"results":[{"name":"CRC32","passed":true},{"name":"Adler32","passed":true}],"thorough":false}` + "\n"
	if r.stdout != want {
		t.Fatalf("got %q\nwant %q", r.stdout, want)
	}
}

func TestRunSelectionFromConfigFile(t *testing.T) {
	cfg := writeFile(t, "cryptval.toml", "only = [\"MD5\"]\njson = true\nlog-level = \"warn\"\n")
	r := execApp(t, nil, "run", "--config", cfg)
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	want := `{"aggregate":true,"results":[{"name":"MD5","passed":true}],"thorough":false}` + "\n"
	if r.stdout != want {
		t.Fatalf("got %q\nwant %q", r.stdout, want)
	}
}

func TestRunProfileWritesEvidence(t *testing.T) {
	prof := writeFile(t, "smoke.toml", `version = "1"
name = "smoke"
validators = ["Beta", "Alpha"]
replays = 2
timeout = "5s"
`)
	evidence := filepath.Join(t.TempDir(), "evidence.json")
	cat := stubCatalog(pass("Alpha"), pass("Beta"), pass("Gamma"))

	r := execApp(t, cat, "run", "--profile", prof, "--evidence", evidence)
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	if strings.Contains(r.stdout, "Gamma") {
		t.Fatalf("profile selection ignored:\n%s", r.stdout)
	}

	ev, err := report.LoadEvidence(evidence)
	if err != nil {
		t.Fatalf("load evidence: %v", err)
	}
	if err := report.VerifyEvidence(ev); err != nil {
		t.Fatalf("verify evidence: %v", err)
	}
	if ev.Profile != "smoke" {
		t.Fatalf("profile = %q, want smoke", ev.Profile)
	}
	if len(ev.ReplaySHA256) != 2 {
		t.Fatalf("expected 2 replay digests, got %d", len(ev.ReplaySHA256))
	}
	if got := strings.Join(ev.Selected, ","); got != "Alpha,Beta" {
		t.Fatalf("selected = %q, want catalog order", got)
	}
}

func TestFlagsOverrideProfile(t *testing.T) {
	prof := writeFile(t, "p.toml", `version = "1"
name = "p"
validators = ["Alpha"]
`)
	cat := stubCatalog(pass("Alpha"), pass("Beta"))
	r := execApp(t, cat, "run", "--profile", prof, "--only", "Beta", "--json")
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	want := `{"aggregate":true,"results":[{"name":"Beta","passed":true}],"thorough":false}` + "\n"
	if r.stdout != want {
		t.Fatalf("got %q\nwant %q", r.stdout, want)
	}
}

func TestProfileUnknownKeyRejected(t *testing.T) {
	prof := writeFile(t, "bad.toml", `version = "1"
name = "bad"
validators = ["Alpha"]
parallel = true
`)
	r := execApp(t, stubCatalog(pass("Alpha")), "run", "--profile", prof)
	if r.code != valerr.ExitInvalid {
		t.Fatalf("exit %d, want %d", r.code, valerr.ExitInvalid)
	}
	if !strings.Contains(r.stderr, "parallel") {
		t.Fatalf("stderr does not name the unknown key: %q", r.stderr)
	}
}

func TestReplayDriftFails(t *testing.T) {
	calls := 0
	cat := stubCatalog(catalog.Simple("Flaky", func() (bool, error) {
		calls++
		return calls == 1, nil
	}))
	r := execApp(t, cat, "run", "--replays", "2", "--json")
	if r.code != valerr.ExitFailed {
		t.Fatalf("exit %d, want %d; stderr %q", r.code, valerr.ExitFailed, r.stderr)
	}
	if !strings.Contains(r.stderr, string(valerr.ReplayDrift)) {
		t.Fatalf("stderr missing drift class: %q", r.stderr)
	}
	if !strings.Contains(r.stdout, `"aggregate":true`) {
		t.Fatalf("expected the baseline summary on stdout, got %q", r.stdout)
	}
}

func TestHelpExitsZero(t *testing.T) {
	r := execApp(t, nil, "run", "--help")
	if r.code != 0 {
		t.Fatalf("exit %d, stderr %q", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "--thorough") {
		t.Fatalf("help output missing flags: %q", r.stdout)
	}
}
