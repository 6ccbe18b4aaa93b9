package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	var opts loadOptions
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Validate a file and list each row's status",
		Long: `check parses FILE, applies any --fix corrections, and prints every data row
with its status. It exits non-zero when any row has an error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := opts.load(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), session)
			if n := session.Counts().Error; n > 0 {
				return fmt.Errorf("%d rows have errors", n)
			}
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}
