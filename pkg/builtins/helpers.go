package builtins

import (
	"ecmalite/pkg/errors"
	"ecmalite/pkg/vm"
)

// toObject implements ToObject for the values this engine can represent.
// Primitive wrappers need Boolean, Number and String built-ins.
func toObject(r *vm.Realm, v vm.Value) (vm.ObjectRef, vm.Completion, error) {
	switch v.Type() {
	case vm.TypeObject:
		return v.AsObject(), vm.Normal(vm.Undefined), nil
	case vm.TypeUndefined, vm.TypeNull:
		return vm.ObjectRef{}, r.ThrowTypeError("cannot convert " + v.Type().String() + " to object"), nil
	}
	return vm.ObjectRef{}, vm.Completion{}, errors.NotImplemented("ToObject(%s)", v.Type())
}

// requireObject throws a TypeError unless v is an object.
func requireObject(r *vm.Realm, v vm.Value, routine string) (vm.ObjectRef, vm.Completion, bool) {
	if !v.IsObject() {
		return vm.ObjectRef{}, r.ThrowTypeError(routine + " called on non-object"), false
	}
	return v.AsObject(), vm.Completion{}, true
}

// returnObject hands the caller a new reference to ref.
func returnObject(r *vm.Realm, ref vm.ObjectRef) (vm.Completion, error) {
	return vm.Normal(r.Heap().MakeObjectValue(ref)), nil
}

// namesArray builds an Array of the given property names. The caller owns it.
func namesArray(r *vm.Realm, props []*vm.Property) vm.Value {
	h := r.Heap()
	names := make([]vm.Value, len(props))
	for i, p := range props {
		names[i] = h.NewString(p.Name().String())
	}
	arr := r.NewArray(names)
	for _, v := range names {
		h.Release(v)
	}
	return vm.OwnedObjectValue(arr)
}
