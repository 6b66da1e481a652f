package storeinfra

import (
	"github.com/uptrace/bun"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/query"
)

// Column whitelists, one per resource. Descriptor fields arrive in API casing
// and are mapped to column names here; anything outside the map is rejected
// so callers cannot probe arbitrary columns.
var (
	photoColumns = map[string]string{
		"title":       "title",
		"description": "description",
		"visibility":  "visibility",
		"albumId":     "album_id",
		"createdAt":   "created_at",
	}
	albumColumns = map[string]string{
		"name":      "name",
		"createdAt": "created_at",
	}
	userColumns = map[string]string{
		"name":      "name",
		"email":     "email",
		"username":  "username",
		"createdAt": "created_at",
	}
)

var operatorSQL = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// applyDescriptor translates desc onto q: filters become WHERE clauses, sort
// becomes ORDER BY, projections narrow the column list, pagination becomes
// LIMIT/OFFSET. Identifiers always pass through bun.Ident; values are bound.
func applyDescriptor(q *bun.SelectQuery, desc query.Descriptor, columns map[string]string) (*bun.SelectQuery, error) {
	for _, f := range desc.Filters {
		col, ok := columns[f.Field]
		if !ok {
			return nil, errors.Newf(errors.CodeInvalidInput, "cannot filter on %q", f.Field)
		}
		op, ok := operatorSQL[f.Op]
		if !ok {
			return nil, errors.Newf(errors.CodeInvalidInput, "unknown operator %q", f.Op)
		}
		q = q.Where("? "+op+" ?", bun.Ident(col), f.Value)
	}

	for _, s := range desc.Sort {
		col, ok := columns[s.Field]
		if !ok {
			return nil, errors.Newf(errors.CodeInvalidInput, "cannot sort on %q", s.Field)
		}
		if s.Desc {
			q = q.OrderExpr("? DESC", bun.Ident(col))
		} else {
			q = q.OrderExpr("? ASC", bun.Ident(col))
		}
	}

	if err := applyProjection(q, desc.Fields, columns); err != nil {
		return nil, err
	}

	return q.Limit(desc.Limit).Offset(desc.Offset()), nil
}

// applyProjection narrows the selected columns. Included fields win when the
// projection mixes include and exclude; the id column is always kept so the
// rows stay addressable.
func applyProjection(q *bun.SelectQuery, fields []query.Projection, columns map[string]string) error {
	var include, exclude []string
	for _, p := range fields {
		col, ok := columns[p.Field]
		if !ok {
			return errors.Newf(errors.CodeInvalidInput, "cannot select %q", p.Field)
		}
		if p.Exclude {
			exclude = append(exclude, col)
		} else {
			include = append(include, col)
		}
	}

	switch {
	case len(include) > 0:
		q.Column(append([]string{"id"}, include...)...)
	case len(exclude) > 0:
		q.ExcludeColumn(exclude...)
	}
	return nil
}
