package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsesAsFloat(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"-1.5", true},
		{"+.5", true},
		{"5.", true},
		{"1e10", true},
		{"2.5E-3", true},
		{"inf", true},
		{"-Infinity", true},
		{"NaN", true},
		{"1e400", true},
		{"", false},
		{"abc", false},
		{"0x1p3", false},
		{"1_000", false},
		{"1.2.3", false},
		{" 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parsesAsFloat(tt.in))
		})
	}
}

func TestParsesAsInt(t *testing.T) {
	assert.True(t, parsesAsInt("42"))
	assert.True(t, parsesAsInt("-7"))
	assert.True(t, parsesAsInt("+7"))
	assert.False(t, parsesAsInt("1.0"))
	assert.False(t, parsesAsInt("99999999999999999999"))
	assert.False(t, parsesAsInt(""))
}

func TestStripFormatting(t *testing.T) {
	assert.Equal(t, "1000", stripFormatting("1,000"))
	assert.Equal(t, "1000000", stripFormatting("1 000,000"))
	assert.Equal(t, "plain", stripFormatting("plain"))
}

func TestMissingMask(t *testing.T) {
	col := NewStringColumn("c", []string{"x", "", "   ", "\t", " y "}, []bool{true, false, true, true, true})
	defer col.Release()

	assert.Equal(t, []int{1, 2, 3}, missingMask(col.Data()).Indices())
}

func TestKernelsFlagNonConforming(t *testing.T) {
	tests := []struct {
		name   string
		kernel Kernel
		values []string
		want   []int
	}{
		{"integer", integerKernel, []string{"1", "1,000", "2.5", "x"}, []int{2, 3}},
		{"number", numberKernel, []string{"1.5", "1,000.25", "abc", "1e3"}, []int{2}},
		{"boolean", booleanKernel, []string{"TRUE", "no", "Y", "maybe", " yes"}, []int{3, 4}},
		{"date", dateKernel, []string{"2024-01-31", "01/31/2024", "31-01-2024", "2024/01/31", "Jan 1"}, []int{4}},
		{"datetime", datetimeKernel, []string{"2024-01-31T10:00:00Z", "2024-01-31 10:00:00", "2024-01-31", "01/31/2024"}, []int{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := NewStringColumn("c", tt.values, nil)
			defer col.Release()

			got, err := tt.kernel(col.Data(), NewMask(col.Len()))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Indices())
		})
	}
}

func TestKernelsSkipMaskedRows(t *testing.T) {
	col := NewStringColumn("c", []string{"bad", "1"}, nil)
	defer col.Release()

	skip := NewMask(2)
	skip.Set(0)
	got, err := integerKernel(col.Data(), skip)
	require.NoError(t, err)
	assert.False(t, got.Any())
}

func TestIntegerKernelOnFloatStorage(t *testing.T) {
	col := NewFloat64Column("f", []float64{1, 2.5, 3, 0}, []bool{true, true, true, false})
	defer col.Release()

	got, err := integerKernel(col.Data(), nullMask(col.Data()))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, got.Indices())
}

func TestKernelsRejectUnsupportedStorage(t *testing.T) {
	col := NewInt64Column("n", []int64{1, 0}, nil)
	defer col.Release()

	for name, k := range map[string]Kernel{
		"boolean":  booleanKernel,
		"date":     dateKernel,
		"datetime": datetimeKernel,
		"number":   numberKernel,
		"integer":  integerKernel,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := k(col.Data(), NewMask(col.Len()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnsupportedOperation))
			assert.Contains(t, err.Error(), "integer storage")
		})
	}
}
