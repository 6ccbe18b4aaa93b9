package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pkordes/fleetlog/internal/config"
	"github.com/pkordes/fleetlog/internal/fuelimport"
)

// loadOptions are the flags shared by check and submit.
type loadOptions struct {
	delimiter string
	fixes     []string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fuelctl",
		Short: "Check and upload fuel-purchase CSV files",
		Long: `fuelctl reads a fuel-purchase CSV file, validates every row, lets you
correct individual cells with --fix, and uploads the valid rows to the fleet
log API as one batch.

Configuration comes from the environment (or a .env file):
  FLEETLOG_API_URL       base URL of the API (default http://127.0.0.1:5000/api)
  FLEETLOG_HTTP_TIMEOUT  upload timeout, e.g. 30s (default: none)`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTemplateCmd(), newCheckCmd(), newSubmitCmd())
	return root
}

func (o *loadOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.delimiter, "delimiter", "", "cell delimiter: auto, comma, tab, semicolon or pipe (default comma)")
	cmd.Flags().StringArrayVar(&o.fixes, "fix", nil, "correct one cell before validating, as ROW:FIELD=VALUE (repeatable)")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "warn", "log level for diagnostics on stderr")
}

// load reads path into a new session and applies every --fix in order.
func (o *loadOptions) load(path string, stderr io.Writer) (*fuelimport.Session, error) {
	logger, _ := config.NewLogger(stderr, o.logLevel, "")

	opts, err := fuelimport.DelimiterOption(fuelimport.ParseOptions{Logger: logger}, o.delimiter)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, encoding, err := fuelimport.Decode(raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("file decoded", slog.String("path", path), slog.String("encoding", encoding))

	session := fuelimport.NewSession(opts)
	if _, err := session.Load(text); err != nil {
		return nil, err
	}

	for _, f := range o.fixes {
		if err := applyFix(session, f); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// applyFix applies one ROW:FIELD=VALUE correction. ROW is the line number
// shown by check.
func applyFix(s *fuelimport.Session, fix string) error {
	target, value, ok := strings.Cut(fix, "=")
	if !ok {
		return fmt.Errorf("--fix %q: want ROW:FIELD=VALUE", fix)
	}
	rowText, fieldName, ok := strings.Cut(target, ":")
	if !ok {
		return fmt.Errorf("--fix %q: want ROW:FIELD=VALUE", fix)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowText))
	if err != nil {
		return fmt.Errorf("--fix %q: row must be a number", fix)
	}
	field, err := fuelimport.ParseField(fieldName)
	if err != nil {
		return fmt.Errorf("--fix %q: %w", fix, err)
	}

	for i, c := range s.Candidates() {
		if c.RowNumber == row {
			_, err := s.UpdateField(i, field, value)
			return err
		}
	}
	return fmt.Errorf("--fix %q: no data row %d", fix, row)
}

// printReport writes one line per candidate followed by the totals.
func printReport(w io.Writer, s *fuelimport.Session) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tSTATUS\tDATE\tPLATE\tLITERS\tPRICE\tCOST\tMESSAGE")
	for _, c := range s.Candidates() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			c.RowNumber, c.Status, c.FuelDate, c.VehiclePlate,
			nullText(c.FuelAmount.Valid, c.FuelAmount.Decimal.String()),
			nullText(c.UnitPrice.Valid, c.UnitPrice.Decimal.String()),
			nullText(c.FuelCost.Valid, c.FuelCost.Decimal.String()),
			rowMessage(c),
		)
	}
	tw.Flush()

	counts := s.Counts()
	fmt.Fprintf(w, "\n%d valid, %d with errors", counts.Valid, counts.Error)
	if dropped := s.Dropped(); len(dropped) > 0 {
		rows := make([]string, len(dropped))
		for i, d := range dropped {
			rows[i] = strconv.Itoa(d.RowNumber)
		}
		fmt.Fprintf(w, ", %d skipped (wrong number of cells on rows %s)", len(dropped), strings.Join(rows, ", "))
	}
	fmt.Fprintln(w)
}

// rowMessage is the error of an error row, else its warnings.
func rowMessage(c fuelimport.Candidate) string {
	if c.Error != "" {
		return c.Error
	}
	if len(c.Warnings) > 0 {
		return "warning: " + strings.Join(c.Warnings, "; ")
	}
	return ""
}

func nullText(valid bool, s string) string {
	if !valid {
		return "-"
	}
	return s
}
