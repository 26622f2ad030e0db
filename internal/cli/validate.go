package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/orgfake/internal/engine"
	"github.com/roach88/orgfake/internal/fixture"
	"github.com/roach88/orgfake/internal/metadata"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Kind          string            `json:"kind"` // "metadata" | "query"
	Valid         bool              `json:"valid"`
	Entity        string            `json:"entity,omitempty"`
	Entities      int               `json:"entities,omitempty"`
	Relationships int               `json:"relationships,omitempty"`
	Errors        []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one problem found in a file.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file-or-dir>",
		Short: "Validate a query file or a metadata directory",
		Long: `Validate without running anything.

A directory or .cue file is compiled as entity and relationship metadata.
Any other file is parsed as a query (.xml dialect or YAML descriptor) and
normalized, which checks operators, operand counts and link aliases.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	info, err := os.Stat(path)
	if err != nil {
		return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("path not found: %s", path))
	}

	var result ValidationResult
	if info.IsDir() || filepath.Ext(path) == ".cue" {
		result = validateMetadata(path, info.IsDir(), formatter)
	} else {
		result = validateQuery(path)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

func validateMetadata(path string, isDir bool, formatter *OutputFormatter) ValidationResult {
	result := ValidationResult{Kind: "metadata"}

	var (
		catalog *metadata.Catalog
		errs    []error
	)
	if isDir {
		catalog, errs = metadata.Load(path)
	} else {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = []error{err}
		} else {
			catalog, errs = metadata.LoadString(string(src))
		}
	}

	for _, err := range errs {
		result.Errors = append(result.Errors, toValidationError(err))
	}
	if catalog != nil {
		result.Entities = len(catalog.EntityNames())
		result.Relationships = len(catalog.RelationshipNames())
		formatter.VerboseLog("Compiled %d entity(ies) and %d relationship(s)", result.Entities, result.Relationships)
	}
	result.Valid = len(result.Errors) == 0
	return result
}

func validateQuery(path string) ValidationResult {
	result := ValidationResult{Kind: "query"}

	q, err := fixture.LoadQuery(path)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{Code: ErrCodeInvalid, Message: err.Error(), Path: path})
		return result
	}
	n, err := engine.Normalize(q)
	if err != nil {
		result.Errors = append(result.Errors, toValidationError(err))
		return result
	}
	result.Entity = n.EntityName
	result.Valid = true
	return result
}

func toValidationError(err error) ValidationError {
	var compileErr *metadata.CompileError
	if errors.As(err, &compileErr) {
		line := 0
		if compileErr.Pos.IsValid() {
			line = compileErr.Pos.Line()
		}
		return ValidationError{Code: ErrCodeInvalid, Message: compileErr.Error(), Line: line}
	}
	var loadErr *metadata.LoadError
	if errors.As(err, &loadErr) {
		return ValidationError{Code: ErrCodeInvalid, Message: loadErr.Message, Path: loadErr.Path}
	}
	return ValidationError{Code: ErrCodeInvalid, Message: err.Error()}
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	switch result.Kind {
	case "metadata":
		fmt.Fprintf(formatter.Writer, "✓ Metadata valid (%d entities, %d relationships)\n", result.Entities, result.Relationships)
	default:
		fmt.Fprintf(formatter.Writer, "✓ Query valid (entity %s)\n", result.Entity)
	}
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs every problem found.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
