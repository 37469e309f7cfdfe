package vm

import (
	"testing"

	"ecmalite/pkg/errors"
)

func TestBuiltin_RegistersAllPending(t *testing.T) {
	r := newTestRealm(t)
	obj := r.Builtin(BuiltinObject)
	if got := r.PendingCount(obj); got != 5 {
		t.Errorf("Expected 5 pending properties, got %d", got)
	}
	if got := r.PendingMask(obj, 0); got != 0x1f {
		t.Errorf("Expected mask 0x1f, got %#x", got)
	}
	if n := len(r.Heap().OwnProperties(obj)); n != 0 {
		t.Errorf("Expected no materialized properties, got %d", n)
	}
	o := r.Heap().Object(obj)
	if !o.IsBuiltin() || !o.IsCallable() || o.Class() != ClassFunction {
		t.Errorf("Built-in object has wrong shape: class %s", o.Class())
	}
}

func TestBuiltin_InstantiateRoutine(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	obj := r.Builtin(BuiltinObject)

	p := r.GetOwnProperty(obj, NewName("keys"))
	if p == nil {
		t.Fatalf("Expected keys to be instantiated")
	}
	if !p.Writable() || p.Enumerable() || !p.Configurable() {
		t.Errorf("Routine property has wrong attributes: w=%v e=%v c=%v", p.Writable(), p.Enumerable(), p.Configurable())
	}
	if got := r.PendingMask(obj, 0); got != 0x1b {
		t.Errorf("Expected keys bit cleared (0x1b), got %#x", got)
	}

	fn := p.Value().AsObject()
	if !h.Object(fn).IsCallable() || h.Object(fn).Class() != ClassFunction {
		t.Errorf("Expected a callable Function object")
	}
	bid, id, ok := r.RoutineOf(fn)
	if !ok || bid != BuiltinObject || id != MagicKeys {
		t.Errorf("RoutineOf = %s %s %v, want Object keys true", bid, id, ok)
	}
	length := h.FindNamedProperty(fn, MagicLength.Name())
	if length == nil || h.Number(length.Value()) != 1 || length.Writable() || length.Configurable() {
		t.Errorf("Expected fixed length 1 on the routine function")
	}

	// A second lookup finds the materialized property and leaves the mask alone.
	if again := r.GetOwnProperty(obj, MagicKeys.Name()); again != p {
		t.Errorf("Expected the same property on the second lookup")
	}
	if got := r.PendingMask(obj, 0); got != 0x1b {
		t.Errorf("Expected mask unchanged, got %#x", got)
	}
}

func TestBuiltin_SynthesizedValue(t *testing.T) {
	r := newTestRealm(t)
	obj := r.Builtin(BuiltinObject)
	p := r.GetOwnProperty(obj, MagicLength.Name())
	if p == nil {
		t.Fatalf("Expected length to be instantiated")
	}
	if r.Heap().Number(p.Value()) != 1 {
		t.Errorf("Expected length 1, got %s", r.Heap().Inspect(p.Value()))
	}
	if p.Writable() || p.Enumerable() || p.Configurable() {
		t.Errorf("Expected fixed attributes on length")
	}
}

func TestBuiltin_UnknownNameLeavesMask(t *testing.T) {
	r := newTestRealm(t)
	obj := r.Builtin(BuiltinObject)
	for _, name := range []Name{MagicToString.Name(), NewName("nope")} {
		if p := r.GetOwnProperty(obj, name); p != nil {
			t.Errorf("Expected %s not found", name)
		}
	}
	if got := r.PendingCount(obj); got != 5 {
		t.Errorf("Expected 5 pending properties, got %d", got)
	}
}

func TestBuiltin_DeletedIsNotResynthesized(t *testing.T) {
	r := newTestRealm(t)
	obj := r.Builtin(BuiltinObject)

	// Deleting a never-touched entry consumes its bit.
	if c := r.Delete(obj, MagicCreate.Name(), true); !c.IsNormal() || !c.Value().AsBoolean() {
		t.Fatalf("Expected delete of create to succeed")
	}
	if r.GetOwnProperty(obj, MagicCreate.Name()) != nil {
		t.Errorf("Expected create to stay deleted")
	}

	r.GetOwnProperty(obj, MagicKeys.Name())
	r.Delete(obj, MagicKeys.Name(), true)
	if r.GetOwnProperty(obj, MagicKeys.Name()) != nil {
		t.Errorf("Expected keys to stay deleted")
	}
	if got := r.PendingCount(obj); got != 3 {
		t.Errorf("Expected 3 pending properties, got %d", got)
	}
}

func TestBuiltin_OwnPropertiesInstantiatesAll(t *testing.T) {
	r := newTestRealm(t)
	obj := r.Builtin(BuiltinObject)
	props := r.OwnProperties(obj)
	if len(props) != 5 {
		t.Errorf("Expected 5 properties, got %d", len(props))
	}
	if got := r.PendingCount(obj); got != 0 {
		t.Errorf("Expected nothing pending, got %d", got)
	}
}

func TestBuiltin_MultiWordMask(t *testing.T) {
	var names []MagicString
	for id := MagicString(1); id < magicCount; id++ {
		names = append(names, id)
	}
	desc := &BuiltinDescriptor{
		ID:    BuiltinGlobal,
		Class: ClassGlobal,
		Names: names,
		Synthesize: func(r *Realm, id MagicString) (Value, Attributes) {
			return Undefined, Attributes{Writable: true}
		},
	}
	r := NewRealm(manualGC(), desc)
	g := r.Builtin(BuiltinGlobal)
	rest := uint32(1)<<(len(names)-32) - 1
	if r.PendingMask(g, 0) != 0xffffffff || r.PendingMask(g, 1) != rest {
		t.Fatalf("Unexpected masks %#x %#x", r.PendingMask(g, 0), r.PendingMask(g, 1))
	}
	if r.GetOwnProperty(g, MagicWritable.Name()) == nil {
		t.Fatalf("Expected writable to be instantiated from the second word")
	}
	if got := r.PendingMask(g, 1); got != rest>>1 {
		t.Errorf("Expected top bit of word 1 cleared, got %#x", got)
	}
	if got := r.PendingCount(g); got != len(names)-1 {
		t.Errorf("Expected %d pending, got %d", len(names)-1, got)
	}
}

func TestBuiltin_InvalidDescriptors(t *testing.T) {
	unsorted := testDescriptor()
	unsorted.Names = []MagicString{MagicKeys, MagicCreate, MagicDefineProperty, MagicLength, MagicValueOf}
	expectFatal(t, "not strictly ascending", func() { NewRealm(manualGC(), unsorted) })

	missing := testDescriptor()
	missing.Names = []MagicString{MagicCreate, MagicKeys, MagicLength}
	expectFatal(t, "missing from its table", func() { NewRealm(manualGC(), missing) })

	noSynth := testDescriptor()
	noSynth.Synthesize = nil
	expectFatal(t, "no Synthesize", func() { NewRealm(manualGC(), noSynth) })

	expectFatal(t, "registered twice", func() { NewRealm(manualGC(), testDescriptor(), testDescriptor()) })
}

func TestBuiltin_DispatchPadsArguments(t *testing.T) {
	r := newTestRealm(t)
	tests := []struct {
		id   MagicString
		args []Value
		want float64
	}{
		{MagicCreate, nil, 2},
		{MagicDefineProperty, []Value{True}, 3},
		{MagicKeys, []Value{True, False, Null}, 3},
	}
	for _, tt := range tests {
		c, err := r.Dispatch(BuiltinObject, tt.id, Undefined, tt.args)
		if got := numberOf(t, r, c, err); got != tt.want {
			t.Errorf("%s received %v arguments, want %v", tt.id, got, tt.want)
		}
	}
	expectFatal(t, "has no routine", func() { r.Dispatch(BuiltinObject, MagicSeal, Undefined, nil) })
}

func TestBuiltin_CallRoutineFunction(t *testing.T) {
	r := newTestRealm(t)
	obj := r.Builtin(BuiltinObject)
	c, err := r.Get(obj, MagicValueOf.Name())
	if err != nil || !c.IsNormal() {
		t.Fatalf("Get valueOf failed: %v", err)
	}
	fn := c.Value()
	defer r.Heap().Release(fn)

	c, err = r.Call(fn, True, nil)
	if err != nil || !c.IsNormal() || c.Value() != True {
		t.Errorf("Expected valueOf to return its this value, got %s", r.Heap().Inspect(c.Value()))
	}

	// The built-in itself is callable through its descriptor.
	c, err = r.Call(alias(obj), Undefined, []Value{Null})
	if got := numberOf(t, r, c, err); got != 1 {
		t.Errorf("Expected 1 argument, got %v", got)
	}
}

func TestBuiltin_CallNonCallable(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	c, err := r.Call(True, Undefined, nil)
	if err != nil || !c.IsThrow() {
		t.Fatalf("Expected TypeError throw, got %s (%v)", c.Kind(), err)
	}
	if h.Object(c.Value().AsObject()).Class() != ClassError {
		t.Errorf("Expected an Error object")
	}
	h.ReleaseCompletion(c)

	plain := h.AllocObject(ObjectRef{}, true, ObjectTypeFunction)
	defer h.Deref(plain)
	_, err = r.Call(alias(plain), Undefined, nil)
	if !errors.Is(err, errors.ErrNotImplemented) {
		t.Errorf("Expected NotImplemented for a non-built-in function, got %v", err)
	}
}
