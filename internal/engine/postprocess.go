package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// TotalCountNotRequested is reported as Result.TotalRecordCount when the
// query did not ask for a total.
const TotalCountNotRequested = -1

// distinct drops records whose entity and attributes duplicate an earlier
// record. Record ids and formatted values are not compared.
func distinct(recs []*ir.Record) ([]*ir.Record, error) {
	seen := make(map[string]bool, len(recs))
	out := make([]*ir.Record, 0, len(recs))
	for _, rec := range recs {
		key, err := ir.DistinctKey(rec.LogicalName, rec.Attributes)
		if err != nil {
			return nil, stageError(stageDistinct, err)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out, nil
}

// top keeps the first n records.
func top(recs []*ir.Record, n *int) []*ir.Record {
	if n == nil || *n < 0 || *n >= len(recs) {
		return recs
	}
	return recs[:*n]
}

// page is the resolved paging window.
type page struct {
	number int
	size   int
}

func resolvePage(info *query.PageInfo, maxSize int) page {
	p := page{number: 1, size: maxSize}
	if info == nil {
		return p
	}
	if info.PageNumber > 0 {
		p.number = info.PageNumber
	}
	if info.Count > 0 {
		p.size = info.Count
	}
	return p
}

// slice returns the records on the page. A page past the end is empty.
func (p page) slice(recs []*ir.Record) []*ir.Record {
	start := (p.number - 1) * p.size
	if start >= len(recs) {
		return []*ir.Record{}
	}
	end := min(start+p.size, len(recs))
	return recs[start:end]
}

// moreRecords reports whether rows remain after this page.
func (p page) moreRecords(total int) bool {
	return total-p.size*p.number > 0
}

// pagingCookie renders the continuation token for a page.
//
//	<cookie page="2"><accountid last="{...}" first="{...}" /></cookie>
func pagingCookie(number int, primaryKey string, first, last uuid.UUID) string {
	return fmt.Sprintf(`<cookie page="%d"><%s last="%s" first="%s" /></cookie>`,
		number, primaryKey, bracedUpper(last), bracedUpper(first))
}

func bracedUpper(id uuid.UUID) string {
	return "{" + strings.ToUpper(id.String()) + "}"
}

// formatter derives display strings for attribute values.
type formatter struct {
	catalog Catalog
	// entities maps link aliases to their entity for aliased values.
	entities map[string]string
}

func newFormatter(catalog Catalog, expr *query.Expression) *formatter {
	f := &formatter{catalog: catalog, entities: map[string]string{}}
	expr.WalkLinks(func(_, l *query.Link) {
		f.entities[l.Alias] = l.ToEntity
	})
	return f
}

// apply fills FormattedValues for every non-null attribute that has no
// formatted value yet and whose type has a display form.
func (f *formatter) apply(rec *ir.Record) {
	for name, v := range rec.Attributes {
		if ir.IsNull(v) {
			continue
		}
		if _, ok := rec.FormattedValues[name]; ok {
			continue
		}
		if text, ok := f.format(rec.LogicalName, name, v); ok {
			rec.FormattedValues[name] = text
		}
	}
}

func (f *formatter) format(entity, attribute string, v ir.Value) (string, bool) {
	switch val := v.(type) {
	case ir.OptionSet:
		if val.Name != "" {
			return val.Name, true
		}
		if f.catalog != nil {
			return f.catalog.OptionLabel(entity, attribute, val.Value)
		}
		return "", false
	case ir.Aliased:
		if linked, ok := f.entities[val.Alias]; ok {
			entity = linked
		}
		return f.format(entity, val.Attribute, val.Value)
	default:
		return "", false
	}
}
