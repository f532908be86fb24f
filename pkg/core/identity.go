package core

import "reflect"

// SameRef reports whether a and b refer to the same value. Pointer-like
// values (pointers, maps, slices, channels) compare by address and
// everything else compares with ==. Two distinct maps with equal contents
// are not the same reference. Funcs are never the same reference because Go
// cannot tell two closures of the same function apart, and neither are
// values that only compare at runtime by panicking.
func SameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Func:
		return false
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	}
	// Value.Comparable looks through interface fields, which == would
	// panic on when they hold a slice or map.
	if !va.Comparable() || !vb.Comparable() {
		return false
	}
	return a == b
}
