package main

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lattice-substrate/cryptval/profile"
	"github.com/lattice-substrate/cryptval/report"
	"github.com/lattice-substrate/cryptval/runner"
	"github.com/lattice-substrate/cryptval/valerr"
)

// runSettings is the resolved policy for one `run` invocation.
type runSettings struct {
	profile  string
	names    []string
	thorough bool
	replays  int
	timeout  time.Duration
	evidence string
	json     bool
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the validator catalog or a selection of it",
		Example: `  cryptval run
  cryptval run --thorough --replays 3 --evidence evidence.json
  cryptval run --only SHA2,GCM --json
  cryptval run --profile nightly.toml`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := a.resolveRun()
			if err != nil {
				return err
			}
			return a.runValidators(cmd.Context(), settings)
		},
	}
	f := cmd.Flags()
	f.Bool("thorough", false, "run thorough validators in thorough mode")
	f.StringSlice("only", nil, "comma-separated validator names to run")
	f.String("profile", "", "run profile (toml)")
	f.Duration("timeout", 0, "per-validator timeout; 0 disables")
	f.Int("replays", 1, "number of runs whose summaries must match")
	f.String("evidence", "", "write an evidence file to this path")
	f.Bool("json", false, "print the canonical JSON summary instead of text")
	return cmd
}

// resolveRun layers flags, environment, and config over the profile, if
// one is given.
func (a *app) resolveRun() (runSettings, error) {
	s := runSettings{
		replays:  1,
		evidence: a.v.GetString("evidence"),
		json:     a.v.GetBool("json"),
	}
	if path := a.v.GetString("profile"); path != "" {
		p, err := profile.Load(path)
		if err != nil {
			return runSettings{}, err
		}
		s.profile = p.Name
		s.names = p.Validators
		s.thorough = p.Thorough
		s.replays = p.Replays
		s.timeout = p.Timeout.Duration
	}

	if a.v.IsSet("only") {
		names, err := splitNames(a.v.GetStringSlice("only"))
		if err != nil {
			return runSettings{}, err
		}
		s.names = names
	}
	if a.v.IsSet("thorough") {
		s.thorough = a.v.GetBool("thorough")
	}
	if a.v.IsSet("replays") {
		s.replays = a.v.GetInt("replays")
	}
	if a.v.IsSet("timeout") {
		s.timeout = a.v.GetDuration("timeout")
	}

	if s.replays < 1 {
		return runSettings{}, valerr.New(valerr.InvalidConfig, "replays", "must be at least 1")
	}
	if s.timeout < 0 {
		return runSettings{}, valerr.New(valerr.InvalidConfig, "timeout", "must not be negative")
	}
	return s, nil
}

// splitNames flattens comma-separated entries, which is how a list arrives
// from an environment variable.
func splitNames(raw []string) ([]string, error) {
	var names []string
	for _, item := range raw {
		for _, n := range strings.Split(item, ",") {
			n = strings.TrimSpace(n)
			if n == "" {
				return nil, valerr.New(valerr.InvalidConfig, "only", "empty validator name")
			}
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, valerr.New(valerr.InvalidConfig, "only", "validator selection is empty")
	}
	return names, nil
}

func (a *app) runValidators(ctx context.Context, s runSettings) error {
	r, err := runner.New(a.newCatalog(), runner.Options{Logger: a.logger, Timeout: s.timeout})
	if err != nil {
		return err
	}

	started := time.Now()
	runs := make([]*runner.Summary, 0, s.replays)
	digests := make([]string, 0, s.replays)
	for i := 0; i < s.replays; i++ {
		sum, err := runOnce(ctx, r, s)
		if err != nil {
			return err
		}
		d, err := report.Digest(sum)
		if err != nil {
			return err
		}
		a.logger.Debug("summary digest", "run", i, "sha256", d)
		runs = append(runs, sum)
		digests = append(digests, d)
	}
	completed := time.Now()
	base := runs[0]

	if err := a.writeSummary(base, s.json); err != nil {
		return err
	}

	driftErr := report.CheckReplays(digests)
	if s.evidence != "" {
		ev, err := report.BuildEvidence(runs, report.EvidenceOptions{
			Profile:   s.profile,
			Started:   started,
			Completed: completed,
			Location:  time.Local,
		})
		if err != nil {
			return err
		}
		if err := report.WriteEvidence(s.evidence, ev); err != nil {
			return err
		}
		a.logger.Info("evidence written", "path", s.evidence, "session", ev.SessionID)
	}

	if driftErr != nil {
		return &ExitError{Code: valerr.ExitFailed, Err: driftErr}
	}
	if !base.Aggregate {
		return &ExitError{Code: valerr.ExitFailed}
	}
	return nil
}

func runOnce(ctx context.Context, r *runner.Runner, s runSettings) (*runner.Summary, error) {
	if s.names == nil {
		return r.RunAll(ctx, s.thorough), nil
	}
	return r.RunSubset(ctx, s.names, s.thorough)
}

func (a *app) writeSummary(s *runner.Summary, asJSON bool) error {
	if !asJSON {
		if err := report.WriteText(a.stdout, s, newStyle(a.stdout)); err != nil {
			return valerr.Wrap(valerr.InternalIO, "", "write report", err)
		}
		return nil
	}
	out, err := report.Canonical(s)
	if err != nil {
		return err
	}
	if err := writef(a.stdout, "%s\n", out); err != nil {
		return valerr.Wrap(valerr.InternalIO, "", "write summary", err)
	}
	return nil
}
