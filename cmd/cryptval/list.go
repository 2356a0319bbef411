package main

import (
	"github.com/spf13/cobra"

	"github.com/lattice-substrate/cryptval/valerr"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List validators in run order",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(_ *cobra.Command, _ []string) error {
			c := a.newCatalog()
			width := 0
			for _, n := range c.Names() {
				width = max(width, len(n))
			}
			for _, e := range c.All() {
				if err := writef(a.stdout, "%-*s  %s\n", width, e.Name(), e.Kind()); err != nil {
					return valerr.Wrap(valerr.InternalIO, "", "write list", err)
				}
			}
			return nil
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cryptval version",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := writef(a.stdout, "cryptval %s\n", version); err != nil {
				return valerr.Wrap(valerr.InternalIO, "", "write version", err)
			}
			return nil
		},
	}
}
