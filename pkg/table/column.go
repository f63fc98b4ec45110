package table

import (
	"fmt"
	"strconv"
	"time"
)

// Kind is the physical storage representation of a column. It is distinct
// from the semantic type: a categorical column keeps KindString storage with
// the categorical flag set.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// IntWidth is the narrowed storage width for integer columns. Purely a
// storage optimization; the semantic type stays INTEGER.
type IntWidth uint8

const (
	WidthInt64 IntWidth = iota
	WidthUint8
	WidthUint16
	WidthUint32
	WidthInt8
	WidthInt16
	WidthInt32
)

// timeDisplayLayout is how temporal values are stringified in samples and
// top-value lists.
const timeDisplayLayout = "2006-01-02 15:04:05"

// Column is a named homogeneous sequence of nullable values. Exactly one of
// the typed slices is populated, selected by kind; nulls always has the full
// row length.
type Column struct {
	name string
	kind Kind

	strs   []string
	ints   []int64
	floats []float64
	bools  []bool
	times  []time.Time

	nulls []bool

	categorical bool
	intWidth    IntWidth
}

// NewStringColumn creates a raw string column as produced by the loader.
// values and nulls must have equal length; the column takes ownership of
// both slices.
func NewStringColumn(name string, values []string, nulls []bool) (*Column, error) {
	if len(values) != len(nulls) {
		return nil, fmt.Errorf("column %s: %d values but %d null flags", name, len(values), len(nulls))
	}
	return &Column{name: name, kind: KindString, strs: values, nulls: nulls}, nil
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.nulls) }

// IsNull reports whether the value at row i is null.
func (c *Column) IsNull(i int) bool { return c.nulls[i] }

// NullCount returns the exact number of null values.
func (c *Column) NullCount() int {
	n := 0
	for _, isNull := range c.nulls {
		if isNull {
			n++
		}
	}
	return n
}

func (c *Column) NonNullCount() int { return c.Len() - c.NullCount() }

// IsCategorical reports whether the type optimizer flagged this column for
// categorical (dictionary) storage.
func (c *Column) IsCategorical() bool   { return c.categorical }
func (c *Column) SetCategorical(v bool) { c.categorical = v }
func (c *Column) Width() IntWidth       { return c.intWidth }
func (c *Column) SetWidth(w IntWidth)   { c.intWidth = w }

// Raw accessors. Callers must check IsNull first and switch on Kind; reading
// the wrong representation returns the zero value.

func (c *Column) StringAt(i int) string {
	if c.kind == KindString {
		return c.strs[i]
	}
	return ""
}

func (c *Column) IntAt(i int) int64 {
	if c.kind == KindInt {
		return c.ints[i]
	}
	return 0
}

func (c *Column) FloatAt(i int) float64 {
	switch c.kind {
	case KindFloat:
		return c.floats[i]
	case KindInt:
		return float64(c.ints[i])
	}
	return 0
}

func (c *Column) BoolAt(i int) bool {
	if c.kind == KindBool {
		return c.bools[i]
	}
	return false
}

func (c *Column) TimeAt(i int) time.Time {
	if c.kind == KindTime {
		return c.times[i]
	}
	return time.Time{}
}

// Display stringifies the value at row i regardless of kind. Null values
// render as the empty string.
func (c *Column) Display(i int) string {
	if c.nulls[i] {
		return ""
	}
	switch c.kind {
	case KindString:
		return c.strs[i]
	case KindInt:
		return strconv.FormatInt(c.ints[i], 10)
	case KindFloat:
		return strconv.FormatFloat(c.floats[i], 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.bools[i])
	case KindTime:
		return c.times[i].Format(timeDisplayLayout)
	}
	return ""
}

// Value returns the native Go value at row i, or nil for nulls. Used by
// the persistence handoff.
func (c *Column) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	switch c.kind {
	case KindString:
		return c.strs[i]
	case KindInt:
		return c.ints[i]
	case KindFloat:
		return c.floats[i]
	case KindBool:
		return c.bools[i]
	case KindTime:
		return c.times[i]
	}
	return nil
}

// IntRange returns the observed min and max of an integer column over
// non-null values. ok is false when the column is not integer or all null.
func (c *Column) IntRange() (minVal, maxVal int64, ok bool) {
	if c.kind != KindInt {
		return 0, 0, false
	}
	for i, v := range c.ints {
		if c.nulls[i] {
			continue
		}
		if !ok {
			minVal, maxVal, ok = v, v, true
			continue
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal, ok
}

// SetTimes rewrites the column to temporal storage. The new null mask must
// preserve row count; originally-null rows stay null, and entries the trial
// parse could not coerce become null.
func (c *Column) SetTimes(values []time.Time, nulls []bool) error {
	if err := c.checkRewrite(len(values), len(nulls)); err != nil {
		return err
	}
	c.kind = KindTime
	c.times = values
	c.nulls = nulls
	c.strs = nil
	return nil
}

// SetInts rewrites the column to integer storage.
func (c *Column) SetInts(values []int64, nulls []bool) error {
	if err := c.checkRewrite(len(values), len(nulls)); err != nil {
		return err
	}
	c.kind = KindInt
	c.ints = values
	c.nulls = nulls
	c.strs = nil
	return nil
}

// SetFloats rewrites the column to float storage.
func (c *Column) SetFloats(values []float64, nulls []bool) error {
	if err := c.checkRewrite(len(values), len(nulls)); err != nil {
		return err
	}
	c.kind = KindFloat
	c.floats = values
	c.nulls = nulls
	c.strs = nil
	return nil
}

// SetBools rewrites the column to boolean storage.
func (c *Column) SetBools(values []bool, nulls []bool) error {
	if err := c.checkRewrite(len(values), len(nulls)); err != nil {
		return err
	}
	c.kind = KindBool
	c.bools = values
	c.nulls = nulls
	c.strs = nil
	return nil
}

func (c *Column) checkRewrite(nValues, nNulls int) error {
	if nValues != c.Len() || nNulls != c.Len() {
		return fmt.Errorf("column %s: rewrite would change row count from %d to %d", c.name, c.Len(), nValues)
	}
	return nil
}

// estimateValueBytes is a rough per-row storage estimate used for adaptive
// batch sizing, not an exact accounting.
func (c *Column) estimateValueBytes() int64 {
	switch c.kind {
	case KindString:
		var total int64
		for _, s := range c.strs {
			total += int64(len(s)) + 16
		}
		if len(c.strs) == 0 {
			return 16
		}
		return total / int64(len(c.strs))
	case KindBool:
		return 1
	case KindTime:
		return 24
	default:
		return 8
	}
}
