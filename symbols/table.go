// Package symbols assigns stable slot numbers to scalar and array
// variables, segregated by value type.
package symbols

import "strings"

// Slot is an integer handle for a variable: (index << 1) | typeBit,
// where typeBit == 1 means the slot holds a string value.
type Slot int

const stringBit = 1

// IsStringSlot reports whether slot addresses a string-typed value.
func IsStringSlot(slot Slot) bool { return slot&stringBit != 0 }

// Index returns the dense index encoded by slot, independent of type.
func Index(slot Slot) int { return int(slot >> 1) }

func makeSlot(index int, isString bool) Slot {
	s := Slot(index) << 1
	if isString {
		s |= stringBit
	}
	return s
}

// Counts reports the number of slots allocated in each of the four
// dense counters. A freshly compiled Program's VM stores are sized
// from these counts.
type Counts struct {
	NumScalars int
	StrScalars int
	NumArrays  int
	StrArrays  int
}

// Table allocates and memoizes slot numbers for scalar and array
// variable names, case-insensitively. Scalars and arrays are
// independent namespaces, so the same name may denote both a scalar
// and an array slot simultaneously.
type Table struct {
	scalars map[string]Slot
	arrays  map[string]Slot

	numScalarCount int
	strScalarCount int
	numArrayCount  int
	strArrayCount  int
}

// New returns an empty symbol table.
func New() *Table {
	t := &Table{}
	t.Clear()
	return t
}

// Clear resets all counters and name maps, as used by an environment
// reset (a fresh `NEW`/`RUN` with clean memory).
func (t *Table) Clear() {
	t.scalars = make(map[string]Slot)
	t.arrays = make(map[string]Slot)
	t.numScalarCount = 0
	t.strScalarCount = 0
	t.numArrayCount = 0
	t.strArrayCount = 0
}

func canon(name string) (upper string, isString bool) {
	upper = strings.ToUpper(name)
	isString = strings.HasSuffix(upper, "$")
	return upper, isString
}

// ScalarSlot returns the slot for a scalar variable, allocating one on
// first use. Repeated calls with the same name (case-insensitive)
// return the same slot.
func (t *Table) ScalarSlot(name string) Slot {
	key, isString := canon(name)
	if slot, ok := t.scalars[key]; ok {
		return slot
	}
	var slot Slot
	if isString {
		slot = makeSlot(t.strScalarCount, true)
		t.strScalarCount++
	} else {
		slot = makeSlot(t.numScalarCount, false)
		t.numScalarCount++
	}
	t.scalars[key] = slot
	return slot
}

// ArraySlot returns the slot for an array variable, allocating one on
// first use, independent of any scalar slot of the same name.
func (t *Table) ArraySlot(name string) Slot {
	key, isString := canon(name)
	if slot, ok := t.arrays[key]; ok {
		return slot
	}
	var slot Slot
	if isString {
		slot = makeSlot(t.strArrayCount, true)
		t.strArrayCount++
	} else {
		slot = makeSlot(t.numArrayCount, false)
		t.numArrayCount++
	}
	t.arrays[key] = slot
	return slot
}

// Counts returns the current dense slot counts, used to size a
// compiled program's VM stores.
func (t *Table) Counts() Counts {
	return Counts{
		NumScalars: t.numScalarCount,
		StrScalars: t.strScalarCount,
		NumArrays:  t.numArrayCount,
		StrArrays:  t.strArrayCount,
	}
}
