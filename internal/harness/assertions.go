package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/orgfake/internal/ir"
)

// DefaultNameAttribute is read for expect.names when name_attribute is
// unset.
const DefaultNameAttribute = "name"

// CheckExpect compares a step outcome against its expect clause and
// returns one message per mismatch. A nil clause only requires success.
func CheckExpect(e *Expect, got StepOutcome) []string {
	if e == nil {
		if got.ErrorCode != "" || got.Error != "" {
			return []string{fmt.Sprintf("unexpected error: %s", got.Error)}
		}
		return nil
	}

	if e.Error != "" {
		if string(got.ErrorCode) != e.Error {
			if got.Error == "" {
				return []string{fmt.Sprintf("expected error %s, step succeeded", e.Error)}
			}
			return []string{fmt.Sprintf("expected error %s, got %s (%s)", e.Error, got.ErrorCode, got.Error)}
		}
		return nil
	}
	if got.Error != "" {
		return []string{fmt.Sprintf("unexpected error: %s", got.Error)}
	}

	var errs []string
	if e.Count != nil && len(got.Records) != *e.Count {
		errs = append(errs, fmt.Sprintf("expected %d records, got %d", *e.Count, len(got.Records)))
	}
	if e.Names != nil {
		attr := e.NameAttribute
		if attr == "" {
			attr = DefaultNameAttribute
		}
		names := Names(got.Records, attr)
		if !slices.Equal(names, e.Names) {
			errs = append(errs, fmt.Sprintf("expected %s %q, got %q", attr, e.Names, names))
		}
	}
	if e.MoreRecords != nil && got.MoreRecords != *e.MoreRecords {
		errs = append(errs, fmt.Sprintf("expected more_records %t, got %t", *e.MoreRecords, got.MoreRecords))
	}
	if e.Total != nil && got.TotalRecordCount != *e.Total {
		errs = append(errs, fmt.Sprintf("expected total %d, got %d", *e.Total, got.TotalRecordCount))
	}
	if e.Cookie != nil && got.PagingCookie != *e.Cookie {
		errs = append(errs, fmt.Sprintf("expected cookie %q, got %q", *e.Cookie, got.PagingCookie))
	}
	return errs
}

// Names returns the display text of attr for each record.
func Names(recs []*ir.Record, attr string) []string {
	names := make([]string, len(recs))
	for i, rec := range recs {
		names[i] = ir.Text(rec.Get(attr))
	}
	return names
}
