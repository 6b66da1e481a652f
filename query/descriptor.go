package query

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jmgilman/go/errors"
)

// Operator identifies a comparison applied by a filter term.
type Operator string

const (
	OpEq  Operator = "eq"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// Default and boundary values for the reserved pagination fields.
const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000

	// DefaultSortField is the implicit ordering when no sort is requested:
	// newest first.
	DefaultSortField = "createdAt"
)

// Reserved parameter names that shape the result set rather than filter it.
const (
	ParamPage   = "page"
	ParamLimit  = "limit"
	ParamSort   = "sort"
	ParamFields = "fields"
)

// Filter is a single predicate term: field <op> value.
type Filter struct {
	Field string
	Op    Operator
	Value string
}

// SortField is one entry of an ordering spec.
type SortField struct {
	Field string
	Desc  bool
}

// Projection is one entry of a field-projection spec. Exclude entries came in
// with a leading '-'.
type Projection struct {
	Field   string
	Exclude bool
}

// Descriptor is the normalized, order-independent representation of a query:
// filter predicates, ordering, projection and pagination. It is a pure value
// type; two descriptors with the same semantic content canonicalize to the
// same string regardless of the order their parameters arrived in.
type Descriptor struct {
	Filters []Filter
	Sort    []SortField
	Fields  []Projection
	Page    int
	Limit   int
}

// DefaultDescriptor returns a descriptor carrying only the reserved-field
// defaults: first page, 100 records, newest first, all fields.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Sort:  []SortField{{Field: DefaultSortField, Desc: true}},
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}
}

// Offset converts the page/limit pair into an offset for skip-based stores.
func (d Descriptor) Offset() int {
	return (d.Page - 1) * d.Limit
}

// Validate checks the pagination boundaries. Filter fields are validated
// against the storable column set at the store boundary, not here.
func (d Descriptor) Validate() error {
	err := validation.ValidateStruct(&d,
		validation.Field(&d.Page, validation.Min(1)),
		validation.Field(&d.Limit, validation.Min(1), validation.Max(MaxLimit)),
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidInput, "invalid pagination parameters")
	}
	return nil
}

func validOperator(op string) (Operator, bool) {
	switch Operator(op) {
	case OpGt, OpGte, OpLt, OpLte:
		return Operator(op), true
	default:
		return "", false
	}
}
