package engine

import (
	"fmt"
	"strings"

	"github.com/roach88/orgfake/internal/fault"
)

// Pipeline stage names used in error wrapping and log messages.
const (
	stageNormalize = "normalize"
	stageJoin      = "join"
	stageFilter    = "filter"
	stageSort      = "sort"
	stageAggregate = "aggregate"
	stageDistinct  = "distinct"
)

// stageError wraps err with the stage that produced it. The fault code of
// the wrapped error is preserved for fault.CodeOf and the Is* helpers.
func stageError(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}

func unknownAlias(alias string) *fault.Fault {
	return fault.Newf(fault.CodeMalformedQuery, "no link-entity with alias %q", alias).
		With("alias", alias)
}

func attributeValueMismatch(attributes, values int) *fault.Fault {
	return fault.Newf(fault.CodeMalformedQuery,
		"attribute and value counts differ (%d attributes, %d values)", attributes, values)
}

func invalidExpression(problems []string) *fault.Fault {
	return fault.New(fault.CodeMalformedQuery, "invalid query: "+strings.Join(problems, "; "))
}
