package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hengadev/serdex/internal/tagcheck"
)

func (a *app) vetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vet [path...]",
		Short: "Check serde struct tags in Go source files",
		Long: `Parses Go files (directories are walked recursively) and reports malformed
serde tags: unknown attributes, flatten on non-record types, enum on
non-integer types and duplicate field names.`,
		RunE: a.runVet,
	}
	cmd.Flags().Bool("strict", false, "also report codecs and predicates that are not built in")
	return cmd
}

func (a *app) runVet(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	findings, err := tagcheck.New(a.v.GetBool("strict")).CheckPaths(args...)
	if err != nil {
		return err
	}
	for _, f := range findings {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	if err := tagcheck.AsError(findings); err != nil {
		a.logger.Debug("tag check failed", "error", err)
		return fmt.Errorf("found %d serde tag problem(s)", len(findings))
	}
	return nil
}
