package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pkordes/fleetlog/internal/config"
	"github.com/pkordes/fleetlog/internal/fuelimport"
)

func newSubmitCmd() *cobra.Command {
	var (
		opts   loadOptions
		apiURL string
	)
	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Upload the valid rows of a file as one batch",
		Long: `submit parses FILE, applies any --fix corrections, and uploads every valid
row to the fleet log API in one request. Rows with errors are listed and left
out. Each run sends its batch under a new idempotency key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}

			session, err := opts.load(args[0], cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), session)

			client := fuelimport.NewHTTPBatchClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout})
			res, err := session.Submit(cmd.Context(), client)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Message())
			if res.Rejected > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%d records rejected by the server\n", res.Rejected)
			}
			if res.Replayed {
				fmt.Fprintln(cmd.OutOrStdout(), "batch was already uploaded; nothing new stored")
			}
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVar(&apiURL, "api", "", "API base URL (overrides FLEETLOG_API_URL)")
	return cmd
}
