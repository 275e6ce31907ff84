package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retrobas/rbasic/symbols"
)

func TestScalarSlotIdempotent(t *testing.T) {
	tbl := symbols.New()
	a := tbl.ScalarSlot("A")
	b := tbl.ScalarSlot("a")
	assert.Equal(t, a, b, "names are case-insensitive")
	assert.False(t, symbols.IsStringSlot(a))
}

func TestScalarSlotStringType(t *testing.T) {
	tbl := symbols.New()
	s := tbl.ScalarSlot("A$")
	assert.True(t, symbols.IsStringSlot(s))
}

func TestScalarAndArrayIndependentNamespaces(t *testing.T) {
	tbl := symbols.New()
	scalar := tbl.ScalarSlot("A")
	array := tbl.ArraySlot("A")
	assert.Equal(t, 0, symbols.Index(scalar))
	assert.Equal(t, 0, symbols.Index(array))
	assert.False(t, symbols.IsStringSlot(scalar))
	assert.False(t, symbols.IsStringSlot(array))
}

func TestSlotAllocationOrder(t *testing.T) {
	tbl := symbols.New()
	a := tbl.ScalarSlot("A")
	b := tbl.ScalarSlot("B")
	assert.Equal(t, 0, symbols.Index(a))
	assert.Equal(t, 1, symbols.Index(b))

	as := tbl.ScalarSlot("A$")
	assert.Equal(t, 0, symbols.Index(as))
}

func TestCounts(t *testing.T) {
	tbl := symbols.New()
	tbl.ScalarSlot("A")
	tbl.ScalarSlot("B")
	tbl.ScalarSlot("A$")
	tbl.ArraySlot("C")
	tbl.ArraySlot("D$")
	tbl.ArraySlot("E$")

	c := tbl.Counts()
	assert.Equal(t, 2, c.NumScalars)
	assert.Equal(t, 1, c.StrScalars)
	assert.Equal(t, 1, c.NumArrays)
	assert.Equal(t, 2, c.StrArrays)
}

func TestClearResets(t *testing.T) {
	tbl := symbols.New()
	tbl.ScalarSlot("A")
	tbl.Clear()
	a := tbl.ScalarSlot("A")
	assert.Equal(t, 0, symbols.Index(a))
	assert.Equal(t, 1, tbl.Counts().NumScalars)
}
