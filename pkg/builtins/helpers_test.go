package builtins

import (
	"strconv"
	"testing"

	"ecmalite/pkg/vm"
)

func newTestRealm(t *testing.T) *vm.Realm {
	t.Helper()
	return NewRealm(vm.GCOptions{PromotionAge: 2})
}

// call dispatches a routine and fails the test on an engine error.
func call(t *testing.T, r *vm.Realm, bid vm.BuiltinID, id vm.MagicString, this vm.Value, args ...vm.Value) vm.Completion {
	t.Helper()
	c, err := r.Dispatch(bid, id, this, args)
	if err != nil {
		t.Fatalf("%s.%s failed: %v", bid, id, err)
	}
	return c
}

// normal unwraps a normal completion.
func normal(t *testing.T, r *vm.Realm, c vm.Completion) vm.Value {
	t.Helper()
	if !c.IsNormal() {
		t.Fatalf("Expected normal completion, got %s %s", c.Kind(), r.Heap().Inspect(c.Value()))
	}
	return c.Value()
}

// arrayStrings reads a names array produced by keys or getOwnPropertyNames.
func arrayStrings(t *testing.T, r *vm.Realm, arr vm.Value) []string {
	t.Helper()
	h := r.Heap()
	ref := arr.AsObject()
	if h.Object(ref).Class() != vm.ClassArray {
		t.Fatalf("Expected an Array, got %s", h.Object(ref).Class())
	}
	length := r.GetOwnProperty(ref, vm.MagicLength.Name())
	n := int(h.Number(length.Value()))
	out := make([]string, n)
	for i := range out {
		p := r.GetOwnProperty(ref, vm.NewName(strconv.Itoa(i)))
		if p == nil {
			t.Fatalf("Array is missing index %d", i)
		}
		out[i] = h.StringOf(p.Value())
	}
	return out
}
