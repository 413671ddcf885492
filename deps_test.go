package minirun

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDepsPointerIdentity(t *testing.T) {
	r := require.New(t)

	var a, b int
	r.Equal(Deps(&a), Deps(&a))
	r.NotEqual(Deps(&a), Deps(&b))
}

func TestDepsIntegerKeys(t *testing.T) {
	r := require.New(t)

	r.Equal(DepList{Dep(42)}, Deps(42))
	r.Equal(DepList{Dep(7)}, Deps(uint32(7)))
	r.Equal(DepList{Dep(9)}, Deps(Dep(9)))
	r.Equal(DepList{Dep(11)}, Deps(uintptr(11)))
}

func TestDepsSliceUsesBackingArray(t *testing.T) {
	r := require.New(t)

	s := make([]float64, 8)
	r.Equal(Deps(s), Deps(s))
	r.Equal(Deps(s), Deps(s[:4])) // same backing array, same region key
	r.NotEqual(Deps(s), Deps(make([]float64, 8)))
}

func TestDepsMixedArguments(t *testing.T) {
	r := require.New(t)

	var x int
	keys := Deps(&x, 3, []byte{1})
	r.Len(keys, 3)
	r.Equal(Dep(3), keys[1])
}

func TestDepsRejectsNonKeyable(t *testing.T) {
	r := require.New(t)

	r.Panics(func() { Deps("not a region") })
	r.Panics(func() { Deps(struct{}{}) })
}
