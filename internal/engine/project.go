package engine

import (
	"github.com/roach88/orgfake/internal/ir"
	"github.com/roach88/orgfake/internal/query"
)

// project builds the output record for a joined row.
//
// Root attributes are copied under their own names; linked attributes are
// stored as ir.Aliased under "alias.attribute". Null attributes are left
// out. The output keeps the root record's id and formatted values for the
// projected attributes.
func project(r *row, expr *query.Expression) *ir.Record {
	out := ir.NewRecord(r.base.LogicalName, r.base.ID)
	copyColumns(out, r.base, expr.Columns, "")

	expr.WalkLinks(func(_, l *query.Link) {
		if rec := r.links[l.Alias]; rec != nil {
			copyColumns(out, rec, l.Columns, l.Alias)
		}
	})
	return out
}

// withAllColumns returns a copy of expr selecting every attribute of the
// root and of each link. Aggregation reads its inputs from rows projected
// through it.
func withAllColumns(expr *query.Expression) *query.Expression {
	all := expr.Clone()
	all.Columns = query.AllColumns()
	all.WalkLinks(func(_, l *query.Link) {
		l.Columns = query.AllColumns()
	})
	return all
}

func copyColumns(dst, src *ir.Record, cols query.ColumnSet, alias string) {
	names := cols.Columns
	if cols.All {
		names = src.Attributes.SortedKeys()
	}

	for _, name := range names {
		v := src.Get(name)
		if ir.IsNull(v) {
			continue
		}
		key := name
		if alias != "" {
			key = alias + "." + name
			v = ir.NewAliased(alias, name, v)
		}
		dst.Set(key, v)
		if alias == "" {
			if fv, ok := src.FormattedValues[name]; ok {
				dst.FormattedValues[key] = fv
			}
		}
	}
}
