package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/orgfake/internal/engine"
	"github.com/roach88/orgfake/internal/export"
	"github.com/roach88/orgfake/internal/fixture"
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/service"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Fixtures []string // seed record files
	Metadata string   // CUE metadata directory
	XLSX     string   // spreadsheet output path
}

// QueryOutput is the JSON form of a query result.
type QueryOutput struct {
	Entity           string         `json:"entity"`
	Records          []RecordOutput `json:"records"`
	MoreRecords      bool           `json:"more_records"`
	TotalRecordCount int            `json:"total_record_count"`
	PagingCookie     string         `json:"paging_cookie,omitempty"`
}

// RecordOutput is one record. Attributes use the tagged value form.
type RecordOutput struct {
	Entity     string            `json:"entity"`
	ID         string            `json:"id"`
	Attributes json.RawMessage   `json:"attributes"`
	Formatted  map[string]string `json:"formatted,omitempty"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query-file>",
		Short: "Run a query against seed records",
		Long: `Run a query file against records loaded from fixture files.

A .xml query file holds the XML query dialect; any other file is a YAML
query descriptor (structured or attribute match).

Exit codes:
  0 - Query succeeded
  1 - Query fault (malformed query, unknown entity...)
  2 - Command error (missing files, bad metadata)

Examples:
  orgfake query contacts.xml --fixtures seed.yaml
  orgfake query by-name.yaml --fixtures seed.yaml --metadata ./metadata
  orgfake query contacts.xml --fixtures seed.yaml --xlsx out.xlsx`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Fixtures, "fixtures", nil, "YAML record file to seed (repeatable)")
	cmd.Flags().StringVar(&opts.Metadata, "metadata", "", "CUE metadata directory (overrides metadata_dir)")
	cmd.Flags().StringVar(&opts.XLSX, "xlsx", "", "also write the result to this spreadsheet")

	return cmd
}

func runQuery(opts *QueryOptions, queryFile string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.logger()

	cfg := opts.config()
	if opts.Metadata != "" {
		cfg.MetadataDir = opts.Metadata
	}

	if _, err := os.Stat(queryFile); err != nil {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("query file not found: %s", queryFile), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("query file not found: %s", queryFile))
	}

	var records []*ir.Record
	for _, path := range opts.Fixtures {
		recs, err := fixture.LoadRecords(path)
		if err != nil {
			_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to load fixtures", err)
		}
		formatter.VerboseLog("Loaded %d record(s) from %s", len(recs), path)
		records = append(records, recs...)
	}

	svc, err := service.Open(cfg, service.WithLogger(logger))
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open service", err)
	}
	defer svc.Close()

	ctx := cmd.Context()
	if err := svc.Initialize(ctx, records...); err != nil {
		return formatter.FailWithFault(err)
	}

	q, err := fixture.LoadQuery(queryFile)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid query file", err)
	}

	res, err := svc.RetrieveMultiple(ctx, q)
	if err != nil {
		return formatter.FailWithFault(err)
	}
	logger.Debug("query completed", "entity", res.EntityName, "records", len(res.Records))

	if opts.XLSX != "" {
		if err := writeXLSX(opts.XLSX, res); err != nil {
			_ = formatter.Error(ErrCodeInvalid, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to write spreadsheet", err)
		}
		formatter.VerboseLog("Wrote %s", opts.XLSX)
	}

	if formatter.Format == "json" {
		out, err := NewQueryOutput(res)
		if err != nil {
			return err
		}
		return formatter.Success(out)
	}
	writeQueryText(formatter, res)
	return nil
}

// NewQueryOutput converts a result to its JSON form.
func NewQueryOutput(res *engine.Result) (QueryOutput, error) {
	out := QueryOutput{
		Entity:           res.EntityName,
		Records:          make([]RecordOutput, 0, len(res.Records)),
		MoreRecords:      res.MoreRecords,
		TotalRecordCount: res.TotalRecordCount,
		PagingCookie:     res.PagingCookie,
	}
	for _, rec := range res.Records {
		attrs, err := ir.EncodeAttributes(rec.Attributes)
		if err != nil {
			return out, fmt.Errorf("encode %s %s: %w", rec.LogicalName, rec.ID, err)
		}
		ro := RecordOutput{Entity: rec.LogicalName, ID: rec.ID.String(), Attributes: attrs}
		if len(rec.FormattedValues) > 0 {
			ro.Formatted = rec.FormattedValues
		}
		out.Records = append(out.Records, ro)
	}
	return out, nil
}

func writeQueryText(formatter *OutputFormatter, res *engine.Result) {
	w := formatter.Writer
	cols := export.Columns(res.Records)
	for _, rec := range res.Records {
		parts := make([]string, 0, len(cols))
		for _, col := range cols {
			if !rec.Has(col) {
				continue
			}
			text, ok := rec.FormattedValues[col]
			if !ok {
				text = ir.Text(rec.Get(col))
			}
			parts = append(parts, col+"="+text)
		}
		fmt.Fprintf(w, "%s %s  %s\n", rec.LogicalName, rec.ID, strings.Join(parts, " "))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d record(s)", len(res.Records))
	if res.TotalRecordCount != engine.TotalCountNotRequested {
		fmt.Fprintf(w, " of %d", res.TotalRecordCount)
	}
	if res.MoreRecords {
		fmt.Fprint(w, ", more available")
	}
	fmt.Fprintln(w)
	if res.PagingCookie != "" {
		fmt.Fprintf(w, "paging cookie: %s\n", res.PagingCookie)
	}
}

func writeXLSX(path string, res *engine.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteXLSX(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
