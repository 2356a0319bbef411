package main

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lattice-substrate/cryptval/catalog"
	"github.com/lattice-substrate/cryptval/valerr"
	"github.com/lattice-substrate/cryptval/validators"
)

const envPrefix = "CRYPTVAL"

// app holds the state of one CLI invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer
	v      *viper.Viper
	logger *log.Logger

	newCatalog func() *catalog.Catalog
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:     stdout,
		stderr:     stderr,
		v:          viper.New(),
		newCatalog: validators.NewCatalog,
	}
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return writeClassifiedError(a.stderr, err)
	}
	return valerr.ExitSuccess
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cryptval",
		Short: "Validate cryptographic primitives against known answers",
		Long: `cryptval runs a fixed catalog of validators over the cryptographic
primitives linked into this binary: known-answer vectors, round trips,
and tamper rejection. Randomized checks draw from scripted byte sources,
so two runs of the same selection produce byte-identical summaries.

Settings come from flags, CRYPTVAL_* environment variables, and an
optional --config file, in that order of precedence.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		Args:              usageArgs(cobra.NoArgs),
		PersistentPreRunE: a.configure,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmd.Usage(); err != nil {
				return valerr.Wrap(valerr.InternalIO, "", "write usage", err)
			}
			return valerr.New(valerr.CLIUsage, "", "a command is required")
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return valerr.Wrap(valerr.CLIUsage, "", "invalid flags", err)
	})

	root.PersistentFlags().String("config", "", "config file (toml, yaml, or json)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, or error")

	root.AddCommand(a.runCmd(), a.listCmd(), a.versionCmd())
	return root
}

// configure binds flags, environment, and the optional config file into
// viper, then builds the logger.
func (a *app) configure(cmd *cobra.Command, _ []string) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return valerr.Wrap(valerr.InternalError, "", "bind flags", err)
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return valerr.Wrap(valerr.InvalidConfig, path, "read config file", err)
		}
	}

	level, err := log.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return valerr.Wrap(valerr.InvalidConfig, a.v.GetString("log-level"), "parse log level", err)
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix:          "cryptval",
		Level:           level,
		ReportTimestamp: true,
	})
	return nil
}

// usageArgs classifies positional argument errors as usage errors.
func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return valerr.Wrap(valerr.CLIUsage, "", "invalid arguments", err)
		}
		return nil
	}
}
