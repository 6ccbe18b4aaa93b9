package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/fleetlog/internal/fuelimport"
)

func newTemplateCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an example import file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "" {
				_, err := cmd.OutOrStdout().Write(fuelimport.Template())
				return err
			}
			if err := os.WriteFile(output, fuelimport.Template(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to FILE instead of stdout (suggested name "+fuelimport.TemplateFilename+")")
	return cmd
}
