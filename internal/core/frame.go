package core

// frame.go provides the tabular container the engine works on.
//
// Every column is an Apache Arrow array: values live in one contiguous buffer
// and missing entries in a validity bitmap, which is what lets the validator
// express its checks as whole-column masks. A Frame owns references to its
// arrays; call Release when done with it.

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is a named, read-only sequence of cell values.
type Column struct {
	name string
	data arrow.Array
}

// NewColumn wraps an Arrow array as a column. The column takes its own
// reference to data.
func NewColumn(name string, data arrow.Array) *Column {
	data.Retain()
	return &Column{name: name, data: data}
}

// Name returns the column header.
func (c *Column) Name() string { return c.name }

// Data returns the backing Arrow array.
func (c *Column) Data() arrow.Array { return c.data }

// Len returns the number of cells.
func (c *Column) Len() int { return c.data.Len() }

// NullCount returns the number of null entries (blank strings not included).
func (c *Column) NullCount() int { return c.data.NullN() }

// Storage returns the physical representation of the column.
func (c *Column) Storage() StorageKind { return storageOf(c.data.DataType()) }

// Release drops the column's reference to its array.
func (c *Column) Release() { c.data.Release() }

func storageOf(dt arrow.DataType) StorageKind {
	switch dt.ID() {
	case arrow.STRING, arrow.LARGE_STRING, arrow.STRING_VIEW:
		return StorageString
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return StorageInteger
	case arrow.FLOAT16, arrow.FLOAT32, arrow.FLOAT64,
		arrow.DECIMAL128, arrow.DECIMAL256:
		return StorageFloat
	case arrow.BOOL:
		return StorageBoolean
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP, arrow.TIME32, arrow.TIME64:
		return StorageTemporal
	default:
		return StorageOther
	}
}

// Frame is an ordered set of equally long columns.
type Frame struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// NewFrame builds a frame from columns. All columns must have the same length
// and distinct names. The frame takes ownership of the columns.
func NewFrame(cols ...*Column) (*Frame, error) {
	f := &Frame{
		columns: cols,
		index:   make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		if i == 0 {
			f.rows = c.Len()
		} else if c.Len() != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name(), c.Len(), f.rows)
		}
		if _, dup := f.index[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name())
		}
		f.index[c.Name()] = i
	}
	return f, nil
}

// FrameFromRecord wraps an Arrow record batch. The frame retains the record's
// columns, so the caller may release the record afterwards.
func FrameFromRecord(rec arrow.Record) (*Frame, error) {
	schema := rec.Schema()
	cols := make([]*Column, rec.NumCols())
	for i := range cols {
		cols[i] = NewColumn(schema.Field(i).Name, rec.Column(i))
	}
	f, err := NewFrame(cols...)
	if err != nil {
		for _, c := range cols {
			c.Release()
		}
		return nil, err
	}
	return f, nil
}

// Columns returns the columns in order.
func (f *Frame) Columns() []*Column { return f.columns }

// Column returns the column with the given name.
func (f *Frame) Column(name string) (*Column, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	return f.columns[i], true
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name()
	}
	return names
}

// NumRows returns the number of data rows.
func (f *Frame) NumRows() int { return f.rows }

// NumCols returns the number of columns.
func (f *Frame) NumCols() int { return len(f.columns) }

// Release releases every column.
func (f *Frame) Release() {
	for _, c := range f.columns {
		c.Release()
	}
}

// Column constructors. A nil valid slice means every entry is present;
// otherwise valid[i] == false marks entry i as null.

// NewStringColumn builds a string column.
func NewStringColumn(name string, values []string, valid []bool) *Column {
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return ownedColumn(name, b.NewArray())
}

// NewInt64Column builds an integer column.
func NewInt64Column(name string, values []int64, valid []bool) *Column {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return ownedColumn(name, b.NewArray())
}

// NewFloat64Column builds a float column.
func NewFloat64Column(name string, values []float64, valid []bool) *Column {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return ownedColumn(name, b.NewArray())
}

// NewBooleanColumn builds a boolean column.
func NewBooleanColumn(name string, values []bool, valid []bool) *Column {
	b := array.NewBooleanBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return ownedColumn(name, b.NewArray())
}

// NewDateColumn builds a date column (day precision).
func NewDateColumn(name string, values []time.Time, valid []bool) *Column {
	days := make([]arrow.Date32, len(values))
	for i, t := range values {
		days[i] = arrow.Date32FromTime(t)
	}
	b := array.NewDate32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(days, valid)
	return ownedColumn(name, b.NewArray())
}

// NewTimestampColumn builds a timestamp column (microsecond precision, UTC).
func NewTimestampColumn(name string, values []time.Time, valid []bool) *Column {
	ts := make([]arrow.Timestamp, len(values))
	for i, t := range values {
		ts[i] = arrow.Timestamp(t.UnixMicro())
	}
	b := array.NewTimestampBuilder(memory.DefaultAllocator, &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"})
	defer b.Release()
	b.AppendValues(ts, valid)
	return ownedColumn(name, b.NewArray())
}

// ownedColumn wraps a freshly built array without taking an extra reference.
func ownedColumn(name string, arr arrow.Array) *Column {
	return &Column{name: name, data: arr}
}
