package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hengadev/serdex"
)

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of serdex",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := a.v.GetString("output")
			if format == "" {
				fmt.Fprintln(cmd.OutOrStdout(), serdex.VersionInfo())
				return nil
			}
			data, err := serdex.Encode(format, serdex.FullVersionInfo())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringP("output", "o", "", "print build details in this format (json, yaml, msgpack)")
	return cmd
}
