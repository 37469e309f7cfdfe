package builtins

import (
	"testing"

	"ecmalite/pkg/errors"
	"ecmalite/pkg/vm"
)

func TestObjectPrototypeToString(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	num := h.NewNumber(3)
	defer h.Release(num)
	str := h.NewString("some text")
	defer h.Release(str)

	tests := []struct {
		this vm.Value
		want string
	}{
		{vm.Undefined, "[object Undefined]"},
		{vm.Null, "[object Null]"},
		{vm.True, "[object Boolean]"},
		{num, "[object Number]"},
		{str, "[object String]"},
		{vm.OwnedObjectValue(r.Builtin(vm.BuiltinObjectPrototype)), "[object Object]"},
		{vm.OwnedObjectValue(r.Builtin(vm.BuiltinObject)), "[object Function]"},
		{vm.OwnedObjectValue(r.Builtin(vm.BuiltinGlobal)), "[object global]"},
	}
	for _, tt := range tests {
		c := call(t, r, vm.BuiltinObjectPrototype, vm.MagicToString, tt.this)
		if got := h.StringOf(normal(t, r, c)); got != tt.want {
			t.Errorf("toString = %q, want %q", got, tt.want)
		}
		h.ReleaseCompletion(c)
	}
}

func TestObjectPrototypeInheritedToString(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	obj := r.NewObject()
	defer h.Deref(obj)

	c, err := r.Get(obj, vm.MagicToString.Name())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	fn := normal(t, r, c)
	defer h.Release(fn)

	c, err = r.Call(fn, vm.OwnedObjectValue(obj), nil)
	if err != nil || h.StringOf(normal(t, r, c)) != "[object Object]" {
		t.Errorf("Expected [object Object] through the prototype chain")
	}
	h.ReleaseCompletion(c)

	c = call(t, r, vm.BuiltinObjectPrototype, vm.MagicToLocaleString, vm.OwnedObjectValue(obj))
	if h.StringOf(normal(t, r, c)) != "[object Object]" {
		t.Errorf("Expected toLocaleString to delegate to toString")
	}
	h.ReleaseCompletion(c)
}

func TestObjectPrototypeHasOwnProperty(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	obj := r.NewObject()
	defer h.Deref(obj)
	r.Put(obj, vm.NewName("own"), vm.True, true)

	tests := []struct {
		name string
		want bool
	}{
		{"own", true},
		{"toString", false},
		{"missing", false},
	}
	for _, tt := range tests {
		name := h.NewString(tt.name)
		c := call(t, r, vm.BuiltinObjectPrototype, vm.MagicHasOwnProperty, vm.OwnedObjectValue(obj), name)
		if got := normal(t, r, c).AsBoolean(); got != tt.want {
			t.Errorf("hasOwnProperty(%q) = %v, want %v", tt.name, got, tt.want)
		}
		h.Release(name)
	}

	// Lazy properties of built-ins count as own.
	c := call(t, r, vm.BuiltinObjectPrototype, vm.MagicHasOwnProperty, r.GetBuiltin(vm.BuiltinObject), vm.MagicKeys.Value())
	if !normal(t, r, c).AsBoolean() {
		t.Errorf("Expected Object to own keys")
	}
}

func TestObjectPrototypeIsPrototypeOf(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	proto := vm.OwnedObjectValue(r.Builtin(vm.BuiltinObjectPrototype))
	obj := r.NewObject()
	defer h.Deref(obj)

	c := call(t, r, vm.BuiltinObjectPrototype, vm.MagicIsPrototypeOf, proto, vm.OwnedObjectValue(obj))
	if !normal(t, r, c).AsBoolean() {
		t.Errorf("Expected Object.prototype in the chain of a plain object")
	}
	c = call(t, r, vm.BuiltinObjectPrototype, vm.MagicIsPrototypeOf, vm.OwnedObjectValue(obj), proto)
	if normal(t, r, c).AsBoolean() {
		t.Errorf("Expected a plain object not to be Object.prototype's prototype")
	}
	c = call(t, r, vm.BuiltinObjectPrototype, vm.MagicIsPrototypeOf, proto, vm.True)
	if normal(t, r, c).AsBoolean() {
		t.Errorf("Expected false for a primitive")
	}
}

func TestObjectPrototypePropertyIsEnumerable(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	obj := r.NewObject()
	defer h.Deref(obj)
	r.Put(obj, vm.NewName("shown"), vm.True, true)

	shown := h.NewString("shown")
	defer h.Release(shown)
	c := call(t, r, vm.BuiltinObjectPrototype, vm.MagicPropertyIsEnumerable, vm.OwnedObjectValue(obj), shown)
	if !normal(t, r, c).AsBoolean() {
		t.Errorf("Expected shown to be enumerable")
	}
	c = call(t, r, vm.BuiltinObjectPrototype, vm.MagicPropertyIsEnumerable, r.GetBuiltin(vm.BuiltinObject), vm.MagicKeys.Value())
	if normal(t, r, c).AsBoolean() {
		t.Errorf("Expected routines to be non-enumerable")
	}
}

func TestObjectPrototypeValueOf(t *testing.T) {
	r := newTestRealm(t)
	h := r.Heap()
	obj := r.NewObject()
	defer h.Deref(obj)

	c := call(t, r, vm.BuiltinObjectPrototype, vm.MagicValueOf, vm.OwnedObjectValue(obj))
	if normal(t, r, c).AsObject() != obj {
		t.Errorf("Expected valueOf to return this")
	}
	h.ReleaseCompletion(c)

	c = call(t, r, vm.BuiltinObjectPrototype, vm.MagicValueOf, vm.Null)
	if !c.IsThrow() {
		t.Errorf("Expected valueOf on null to throw")
	}
	h.ReleaseCompletion(c)

	if _, err := r.Dispatch(vm.BuiltinObjectPrototype, vm.MagicValueOf, vm.True, nil); !errors.Is(err, errors.ErrNotImplemented) {
		t.Errorf("Expected NotImplemented for a primitive this, got %v", err)
	}
}

func TestObjectPrototypeConstructor(t *testing.T) {
	r := newTestRealm(t)
	proto := r.Builtin(vm.BuiltinObjectPrototype)
	p := r.GetOwnProperty(proto, vm.MagicConstructor.Name())
	if p == nil || p.Value().AsObject() != r.Builtin(vm.BuiltinObject) {
		t.Fatalf("Expected constructor to be Object")
	}
	if !p.Writable() || p.Enumerable() || !p.Configurable() {
		t.Errorf("Expected writable, non-enumerable, configurable constructor")
	}
}
