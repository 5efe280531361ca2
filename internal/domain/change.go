package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	ChangeAll    ChangeType = "*"
)

type FilterOp string

const (
	FilterEq  FilterOp = "eq"
	FilterNeq FilterOp = "neq"
)

var (
	ErrInvalidFilter       = errors.New("invalid filter")
	ErrInvalidSubscription = errors.New("invalid subscription")
)

// Filter is a single column predicate on a changed row, written as
// "column=op.value", e.g. "chat_id=eq.42".
type Filter struct {
	Column string   `json:"column"`
	Op     FilterOp `json:"op"`
	Value  string   `json:"value"`
}

// ParseFilter parses the "column=op.value" form. An empty string means no
// filter and yields nil.
func ParseFilter(s string) (*Filter, error) {
	if s == "" {
		return nil, nil
	}
	column, rest, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	op, value, ok := strings.Cut(rest, ".")
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	switch FilterOp(op) {
	case FilterEq, FilterNeq:
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, op)
	}
	return &Filter{Column: column, Op: FilterOp(op), Value: value}, nil
}

func (f Filter) String() string {
	return f.Column + "=" + string(f.Op) + "." + f.Value
}

// Matches evaluates the filter against a record decoded with json.Number
// preserved (see Change.Fields).
func (f Filter) Matches(record map[string]any) bool {
	v, ok := record[f.Column]
	equal := ok && fieldString(v) == f.Value
	if f.Op == FilterNeq {
		return !equal
	}
	return equal
}

func fieldString(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Subscription selects the changes a realtime listener wants.
type Subscription struct {
	Table  string     `json:"table"`
	Event  ChangeType `json:"event"`
	Filter *Filter    `json:"filter,omitempty"`
}

func (s Subscription) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("%w: table is required", ErrInvalidSubscription)
	}
	switch s.Event {
	case ChangeInsert, ChangeUpdate, ChangeDelete, ChangeAll:
	default:
		return fmt.Errorf("%w: unknown event %q", ErrInvalidSubscription, s.Event)
	}
	if s.Filter != nil && s.Filter.Column == "" {
		return fmt.Errorf("%w: filter column is required", ErrInvalidSubscription)
	}
	return nil
}

// Matches reports whether change (whose decoded record is fields) is selected
// by the subscription.
func (s Subscription) Matches(change *Change, fields map[string]any) bool {
	if s.Table != change.Table {
		return false
	}
	if s.Event != ChangeAll && s.Event != change.Type {
		return false
	}
	if s.Filter != nil && !s.Filter.Matches(fields) {
		return false
	}
	return true
}

// Change is one row-level change delivered by the realtime feed.
type Change struct {
	Table           string          `json:"table"`
	Type            ChangeType      `json:"type"`
	Record          json.RawMessage `json:"record"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

func NewChange(table string, changeType ChangeType, record any) (*Change, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s record: %w", table, err)
	}
	return &Change{
		Table:           table,
		Type:            changeType,
		Record:          data,
		CommitTimestamp: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the changed row into v.
func (c *Change) Decode(v any) error {
	return json.Unmarshal(c.Record, v)
}

// Fields decodes the changed row into a generic map, keeping numbers as
// json.Number so that large ids compare exactly.
func (c *Change) Fields() (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(c.Record))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}
