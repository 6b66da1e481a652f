package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jmgilman/go/errors"
)

// Parse turns a flat string-keyed parameter map into a Descriptor. Reserved
// keys (page, limit, sort, fields) control pagination, ordering and
// projection; every other key becomes a filter term. Comparison operators use
// bracket suffixes, e.g. "createdAt[gt]". Malformed bracket syntax is an
// error, never a silently dropped filter.
func Parse(params map[string]string) (Descriptor, error) {
	d := DefaultDescriptor()

	for name, value := range params {
		switch name {
		case ParamPage:
			page, err := strconv.Atoi(value)
			if err != nil {
				return Descriptor{}, errors.Newf(errors.CodeInvalidInput, "page must be an integer, got %q", value)
			}
			d.Page = page
		case ParamLimit:
			limit, err := strconv.Atoi(value)
			if err != nil {
				return Descriptor{}, errors.Newf(errors.CodeInvalidInput, "limit must be an integer, got %q", value)
			}
			d.Limit = limit
		case ParamSort:
			fields, err := parseSort(value)
			if err != nil {
				return Descriptor{}, err
			}
			if len(fields) > 0 {
				d.Sort = fields
			}
		case ParamFields:
			projections, err := parseFields(value)
			if err != nil {
				return Descriptor{}, err
			}
			d.Fields = projections
		default:
			filter, err := parseFilter(name, value)
			if err != nil {
				return Descriptor{}, err
			}
			d.Filters = append(d.Filters, filter)
		}
	}

	// Deterministic filter order: the canonical form and the store
	// translation both rely on it.
	sort.Slice(d.Filters, func(i, j int) bool {
		if d.Filters[i].Field != d.Filters[j].Field {
			return d.Filters[i].Field < d.Filters[j].Field
		}
		return d.Filters[i].Op < d.Filters[j].Op
	})

	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// parseFilter handles "field" and "field[op]" parameter names.
func parseFilter(name, value string) (Filter, error) {
	open := strings.IndexByte(name, '[')
	if open < 0 {
		if strings.ContainsAny(name, "]") {
			return Filter{}, errors.Newf(errors.CodeInvalidInput, "malformed filter parameter %q", name)
		}
		return Filter{Field: name, Op: OpEq, Value: value}, nil
	}

	field := name[:open]
	rest := name[open+1:]
	closing := strings.IndexByte(rest, ']')
	if field == "" || closing < 0 || closing != len(rest)-1 {
		return Filter{}, errors.Newf(errors.CodeInvalidInput, "malformed filter parameter %q", name)
	}

	op, ok := validOperator(rest[:closing])
	if !ok {
		return Filter{}, errors.Newf(errors.CodeInvalidInput, "unknown filter operator %q in parameter %q", rest[:closing], name)
	}
	return Filter{Field: field, Op: op, Value: value}, nil
}

func parseSort(value string) ([]SortField, error) {
	var fields []SortField
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		desc := strings.HasPrefix(entry, "-")
		field := strings.TrimPrefix(entry, "-")
		if field == "" {
			return nil, errors.Newf(errors.CodeInvalidInput, "empty sort entry in %q", value)
		}
		fields = append(fields, SortField{Field: field, Desc: desc})
	}
	return fields, nil
}

func parseFields(value string) ([]Projection, error) {
	var projections []Projection
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		exclude := strings.HasPrefix(entry, "-")
		field := strings.TrimPrefix(entry, "-")
		if field == "" {
			return nil, errors.Newf(errors.CodeInvalidInput, "empty projection entry in %q", value)
		}
		projections = append(projections, Projection{Field: field, Exclude: exclude})
	}
	return projections, nil
}
