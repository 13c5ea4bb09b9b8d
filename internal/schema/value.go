package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueKind tags the variant a Value holds. Loosely-typed driver values are
// folded into this closed set so rows stay comparable across engines.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindDecimal
	KindText
	KindBool
	KindTime
	KindUUID
	KindBytes
	KindJSON
)

type Value struct {
	Kind  ValueKind
	Int   int64
	Dec   decimal.Decimal
	Text  string
	Bool  bool
	Time  time.Time
	UUID  uuid.UUID
	Bytes []byte
	JSON  json.RawMessage
}

func NullValue() Value                  { return Value{Kind: KindNull} }
func IntValue(v int64) Value            { return Value{Kind: KindInt, Int: v} }
func DecValue(v decimal.Decimal) Value  { return Value{Kind: KindDecimal, Dec: v} }
func TextValue(v string) Value          { return Value{Kind: KindText, Text: v} }
func BoolValue(v bool) Value            { return Value{Kind: KindBool, Bool: v} }
func TimeValue(v time.Time) Value       { return Value{Kind: KindTime, Time: v} }
func UUIDValue(v uuid.UUID) Value       { return Value{Kind: KindUUID, UUID: v} }
func BytesValue(v []byte) Value         { return Value{Kind: KindBytes, Bytes: v} }
func JSONValue(v json.RawMessage) Value { return Value{Kind: KindJSON, JSON: v} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Arg returns the driver-facing argument for this value.
func (v Value) Arg() interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindInt:
		return v.Int
	case KindDecimal:
		return v.Dec.String()
	case KindText:
		return v.Text
	case KindBool:
		return v.Bool
	case KindTime:
		return v.Time
	case KindUUID:
		return v.UUID.String()
	case KindBytes:
		return v.Bytes
	case KindJSON:
		return string(v.JSON)
	default:
		return nil
	}
}

// Equal compares two values. Two nulls are equal here: the full-row upsert
// fallback needs NULL-matches-NULL semantics, unlike SQL's ternary logic.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindInt:
		return v.Int == o.Int
	case KindDecimal:
		return v.Dec.Equal(o.Dec)
	case KindText:
		return v.Text == o.Text
	case KindBool:
		return v.Bool == o.Bool
	case KindTime:
		return v.Time.Equal(o.Time)
	case KindUUID:
		return v.UUID == o.UUID
	case KindBytes:
		return bytes.Equal(v.Bytes, o.Bytes)
	case KindJSON:
		return bytes.Equal(v.JSON, o.JSON)
	default:
		return false
	}
}

func (v Value) String() string {
	if v.IsNull() {
		return "NULL"
	}
	return fmt.Sprintf("%v", v.Arg())
}

// FromScan folds whatever database/sql handed back into a tagged Value.
// The column's canonical type steers ambiguous cases (text that is really
// a uuid or json payload, []byte that is really text on mysql).
func FromScan(raw interface{}, t CanonicalType) Value {
	if raw == nil {
		return NullValue()
	}
	switch x := raw.(type) {
	case int64:
		if t == TypeBoolean {
			return BoolValue(x != 0)
		}
		return IntValue(x)
	case float64:
		return DecValue(decimal.NewFromFloat(x))
	case bool:
		return BoolValue(x)
	case time.Time:
		return TimeValue(x)
	case []byte:
		return fromText(string(x), t)
	case string:
		return fromText(x, t)
	default:
		return TextValue(fmt.Sprintf("%v", x))
	}
}

func fromText(s string, t CanonicalType) Value {
	switch t {
	case TypeGuid:
		if u, err := uuid.Parse(s); err == nil {
			return UUIDValue(u)
		}
	case TypeJSON:
		return JSONValue(json.RawMessage(s))
	case TypeBinary:
		return BytesValue([]byte(s))
	case TypeDecimal, TypeDouble:
		if d, err := decimal.NewFromString(s); err == nil {
			return DecValue(d)
		}
	}
	return TextValue(s)
}

// Row is one immutable tuple: ordered columns plus a case-insensitive
// name index. Never mutated after construction.
type Row struct {
	cols  []string
	vals  []Value
	index map[string]int
}

func NewRow(columns []string, values []Value) (Row, error) {
	if len(columns) != len(values) {
		return Row{}, fmt.Errorf("row has %d columns but %d values", len(columns), len(values))
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	vals := make([]Value, len(values))
	copy(vals, values)
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[strings.ToLower(c)] = i
	}
	return Row{cols: cols, vals: vals, index: idx}, nil
}

func (r Row) Len() int { return len(r.cols) }

func (r Row) Columns() []string {
	cols := make([]string, len(r.cols))
	copy(cols, r.cols)
	return cols
}

// At returns the value at position i.
func (r Row) At(i int) Value { return r.vals[i] }

// Value looks a value up by column name, case-insensitive. Missing columns
// report a null value and false rather than panicking.
func (r Row) Value(name string) (Value, bool) {
	i, ok := r.index[strings.ToLower(name)]
	if !ok {
		return NullValue(), false
	}
	return r.vals[i], true
}

// Equal reports full-tuple equality: same columns in the same order and
// pairwise-equal values (NULL matches NULL).
func (r Row) Equal(o Row) bool {
	if len(r.cols) != len(o.cols) {
		return false
	}
	for i := range r.cols {
		if !strings.EqualFold(r.cols[i], o.cols[i]) || !r.vals[i].Equal(o.vals[i]) {
			return false
		}
	}
	return true
}
