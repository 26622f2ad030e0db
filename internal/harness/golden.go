package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/orgfake/internal/ir"
)

// GoldenDir holds snapshot files, relative to the test's package.
const GoldenDir = "testdata/golden"

// Snapshot renders a result as canonical JSON. Record attributes use the
// tagged value form, so types are part of the snapshot.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	steps := make([]any, len(result.Steps))
	for i, step := range result.Steps {
		node := map[string]any{
			"name": step.Name,
			"kind": step.Kind,
		}
		if step.ErrorCode != "" || step.Error != "" {
			node["error"] = string(step.ErrorCode)
		} else if step.Kind == KindQuery {
			node["entity"] = step.EntityName
			node["records"] = recordsNode(step.Records)
			node["more_records"] = step.MoreRecords
			node["total_record_count"] = step.TotalRecordCount
			node["paging_cookie"] = step.PagingCookie
		}
		steps[i] = node
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario": scenarioName,
		"steps":    steps,
	})
}

func recordsNode(recs []*ir.Record) []any {
	out := make([]any, len(recs))
	for i, rec := range recs {
		node := map[string]any{
			"entity":     rec.LogicalName,
			"id":         rec.ID.String(),
			"attributes": rec.Attributes,
		}
		if len(rec.FormattedValues) > 0 {
			formatted := make(map[string]any, len(rec.FormattedValues))
			for k, v := range rec.FormattedValues {
				formatted[k] = v
			}
			node["formatted"] = formatted
		}
		out[i] = node
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can also check expectations.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
