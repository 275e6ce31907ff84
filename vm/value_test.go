package vm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/retrobas/rbasic/vm"
)

func TestValueTruthy(t *testing.T) {
	truthy, err := vm.Num(-1).Truthy()
	assert.NoError(t, err)
	assert.True(t, truthy)

	falsy, err := vm.Num(0).Truthy()
	assert.NoError(t, err)
	assert.False(t, falsy)

	anyNonZero, err := vm.Num(3.5).Truthy()
	assert.NoError(t, err)
	assert.True(t, anyNonZero)
}

func TestValueTruthyStringIsTypeMismatch(t *testing.T) {
	_, err := vm.Str("x").Truthy()
	assert.Error(t, err)
	var verr *vm.Error
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, vm.TypeMismatch, verr.Kind)
}

func TestValueCanonicalString(t *testing.T) {
	assert.Equal(t, "HI", vm.Str("HI").CanonicalString())
	assert.Equal(t, "3.5", vm.Num(3.5).CanonicalString())
	assert.Equal(t, "42", vm.Num(42).CanonicalString())
}

func TestBoolHelper(t *testing.T) {
	assert.Equal(t, vm.True, vm.Bool(true))
	assert.Equal(t, vm.False, vm.Bool(false))
}
