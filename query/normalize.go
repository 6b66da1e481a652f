package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Canonical renders the descriptor as a deterministic string. Filters are
// already sorted lexicographically by Parse; pagination fields appear in a
// fixed order so that two semantically identical queries always produce the
// same output. The format is "f{...}|p{...}": the filter fragment and the
// result-shape fragment, kept separate because pagination changes the result
// set without being a predicate.
func (d Descriptor) Canonical() string {
	var b strings.Builder

	b.WriteString("f{")
	for i, f := range d.Filters {
		if i > 0 {
			b.WriteByte('&')
		}
		if f.Op == OpEq {
			b.WriteString(f.Field)
		} else {
			b.WriteString(f.Field)
			b.WriteByte('[')
			b.WriteString(string(f.Op))
			b.WriteByte(']')
		}
		b.WriteByte('=')
		b.WriteString(f.Value)
	}
	b.WriteString("}|p{page=")
	b.WriteString(strconv.Itoa(d.Page))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(d.Limit))
	b.WriteString("&sort=")
	b.WriteString(d.sortSpec())
	b.WriteString("&fields=")
	b.WriteString(d.fieldsSpec())
	b.WriteByte('}')

	return b.String()
}

// Fingerprint digests the canonical form into a fixed-width hex fragment for
// cache keys. Long filter combinations would otherwise produce unbounded key
// lengths in the shared cache.
func (d Descriptor) Fingerprint() string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(d.Canonical()))
}

func (d Descriptor) sortSpec() string {
	entries := make([]string, len(d.Sort))
	for i, s := range d.Sort {
		if s.Desc {
			entries[i] = "-" + s.Field
		} else {
			entries[i] = s.Field
		}
	}
	return strings.Join(entries, ",")
}

func (d Descriptor) fieldsSpec() string {
	if len(d.Fields) == 0 {
		return "*"
	}
	entries := make([]string, len(d.Fields))
	for i, p := range d.Fields {
		if p.Exclude {
			entries[i] = "-" + p.Field
		} else {
			entries[i] = p.Field
		}
	}
	return strings.Join(entries, ",")
}
