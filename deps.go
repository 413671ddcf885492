package minirun

import (
	"fmt"
	"reflect"
)

// Deps builds a dependency key list. Pointer-like arguments (pointers,
// slices, maps, channels, functions) contribute the address they refer
// to; plain integer arguments contribute their value, for callers that
// manage their own key space. Two arguments name the same region exactly
// when they produce the same key; the caller warrants that the key
// uniquely identifies the region.
//
//	r.CreateTaskDeps(fn, minirun.Deps(&a, &b), minirun.Deps(&c))
func Deps(vs ...any) DepList {
	keys := make(DepList, 0, len(vs))
	for _, v := range vs {
		keys = append(keys, depKey(v))
	}
	return keys
}

func depKey(v any) Dep {
	switch k := v.(type) {
	case Dep:
		return k
	case uintptr:
		return Dep(k)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Slice,
		reflect.Map, reflect.Chan, reflect.Func:
		return Dep(rv.Pointer())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Dep(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Dep(rv.Uint())
	}

	panic(fmt.Sprintf("minirun: Deps argument must be a pointer or integer, got %T", v))
}
