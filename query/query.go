package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Date layouts accepted by the Dentalink API. Operator methods format
// time.Time values with DateLayout unless told otherwise.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Filter is a single operator/value pair recorded for a field. Values are
// stored already stringified, exactly as they will appear on the wire.
type Filter struct {
	Operator string
	Value    string
}

// fieldEntry keeps the filters recorded for one field. Entries preserve the
// order in which fields were first selected.
type fieldEntry struct {
	name    string
	filters []Filter
}

// Builder accumulates per-field filter criteria through a fluent chain and
// parses them into a Query. A Builder is meant to be created per request,
// chained, parsed once and discarded; it is not safe for concurrent use.
//
// Misuse (adding an operator before selecting a field) is recorded as a
// sticky error and reported by Parse, so chains never need intermediate
// error checks:
//
//	q, err := query.New("fecha").Gte(from).Lte(to).Field("id_estado").Eq(id).Parse()
type Builder struct {
	entries []fieldEntry
	current int
	err     error
}

// New returns an empty Builder. Field names passed here are selected
// immediately, so New("fecha") is equivalent to New().Field("fecha").
func New(field ...string) *Builder {
	b := &Builder{current: -1}
	for _, name := range field {
		b.Field(name)
	}
	return b
}

// Field selects the field subsequent operator calls apply to.
//
// Selecting the currently-selected field again is a no-op. Selecting any
// other name installs a fresh, empty filter list for it and makes it
// current. Re-selecting a field that already holds filters discards them,
// though the field keeps its original position in the serialization order.
func (b *Builder) Field(name string) *Builder {
	if b.current >= 0 && b.entries[b.current].name == name {
		return b
	}
	for i := range b.entries {
		if b.entries[i].name == name {
			b.entries[i].filters = nil
			b.current = i
			return b
		}
	}
	b.entries = append(b.entries, fieldEntry{name: name})
	b.current = len(b.entries) - 1
	return b
}

// Eq records an equality filter for the current field.
func (b *Builder) Eq(value any, layout ...string) *Builder {
	return b.add("eq", value, layout)
}

// Neq records a not-equal filter for the current field.
func (b *Builder) Neq(value any, layout ...string) *Builder {
	return b.add("neq", value, layout)
}

// Gt records a greater-than filter for the current field.
func (b *Builder) Gt(value any, layout ...string) *Builder {
	return b.add("gt", value, layout)
}

// Gte records a greater-or-equal filter for the current field.
func (b *Builder) Gte(value any, layout ...string) *Builder {
	return b.add("gte", value, layout)
}

// Lt records a less-than filter for the current field.
func (b *Builder) Lt(value any, layout ...string) *Builder {
	return b.add("lt", value, layout)
}

// Lte records a less-or-equal filter for the current field.
func (b *Builder) Lte(value any, layout ...string) *Builder {
	return b.add("lte", value, layout)
}

// Lk records a "like" (pattern match) filter for the current field.
func (b *Builder) Lk(value any, layout ...string) *Builder {
	return b.add("lk", value, layout)
}

// add appends {operator: value} to the current field. A nil value (or a nil
// typed pointer) is a chainable no-op so optional filters can be passed
// straight through without caller-side branching.
func (b *Builder) add(operator string, value any, layout []string) *Builder {
	if b.err != nil {
		return b
	}
	if b.current < 0 {
		b.err = fmt.Errorf("%s: %w", operator, ErrNoField)
		return b
	}

	s, ok := stringify(value, dateLayout(layout))
	if !ok {
		return b
	}

	e := &b.entries[b.current]
	e.filters = append(e.filters, Filter{Operator: operator, Value: s})
	return b
}

// Err reports the first misuse recorded on the chain, if any. Parse returns
// the same error; Err exists for callers that want to check mid-chain.
func (b *Builder) Err() error {
	return b.err
}

// Parse finalizes the chain into a Query. It fails if an operator was ever
// applied without a selected field, or if no field was ever selected at
// all. An empty Query (fields selected, every filter skipped) is valid and
// serializes to "{}".
func (b *Builder) Parse() (*Query, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.entries) == 0 {
		return nil, ErrEmptyQuery
	}

	q := &Query{}
	for _, e := range b.entries {
		if len(e.filters) == 0 {
			continue
		}
		filters := make([]Filter, len(e.filters))
		copy(filters, e.filters)
		q.fields = append(q.fields, fieldEntry{name: e.name, filters: filters})
	}
	return q, nil
}

// dateLayout returns the layout for time values, defaulting to DateLayout.
func dateLayout(layout []string) string {
	if len(layout) > 0 && layout[0] != "" {
		return layout[0]
	}
	return DateLayout
}

// stringify converts a filter value to its wire form. The second return is
// false when the value is absent and no filter should be recorded.
func stringify(value any, layout string) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case time.Time:
		return v.Format(layout), true
	case *time.Time:
		if v == nil {
			return "", false
		}
		return v.Format(layout), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	case *bool:
		if v == nil {
			return "", false
		}
		return stringify(*v, layout)
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case *int:
		if v == nil {
			return "", false
		}
		return strconv.Itoa(*v), true
	case *int64:
		if v == nil {
			return "", false
		}
		return strconv.FormatInt(*v, 10), true
	case *float64:
		if v == nil {
			return "", false
		}
		return strconv.FormatFloat(*v, 'f', -1, 64), true
	default:
		return fmt.Sprint(v), true
	}
}

// Query is a parsed, immutable filter set. Field order matches the order in
// which fields were first selected on the Builder; fields that ended up
// without filters are already dropped.
type Query struct {
	fields []fieldEntry
}

// IsEmpty reports whether the query carries no filters at all.
func (q *Query) IsEmpty() bool {
	return q == nil || len(q.fields) == 0
}

// Len returns the number of fields carrying at least one filter.
func (q *Query) Len() int {
	if q == nil {
		return 0
	}
	return len(q.fields)
}

// Fields returns the field names in serialization order.
func (q *Query) Fields() []string {
	if q == nil {
		return nil
	}
	names := make([]string, len(q.fields))
	for i, e := range q.fields {
		names[i] = e.name
	}
	return names
}

// Filters returns the filters recorded for a field, in the order they were
// added, or nil if the field is not part of the query.
func (q *Query) Filters(field string) []Filter {
	if q == nil {
		return nil
	}
	for _, e := range q.fields {
		if e.name == field {
			filters := make([]Filter, len(e.filters))
			copy(filters, e.filters)
			return filters
		}
	}
	return nil
}

// MarshalJSON renders the Dentalink filter object: a field with exactly one
// filter becomes a single {"op":"value"} object, a field with several
// becomes an ordered array of such objects. Insertion order is preserved,
// which is why this is hand-rolled instead of a map.
func (q *Query) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range q.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, e.name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if len(e.filters) == 1 {
			if err := writeFilter(&buf, e.filters[0]); err != nil {
				return nil, err
			}
			continue
		}
		buf.WriteByte('[')
		for j, f := range e.filters {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeFilter(&buf, f); err != nil {
				return nil, err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns the query as its JSON wire form.
func (q *Query) String() string {
	data, err := q.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(data)
}

func writeFilter(buf *bytes.Buffer, f Filter) error {
	buf.WriteByte('{')
	if err := writeJSON(buf, f.Operator); err != nil {
		return err
	}
	buf.WriteByte(':')
	if err := writeJSON(buf, f.Value); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeJSON(buf *bytes.Buffer, s string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
