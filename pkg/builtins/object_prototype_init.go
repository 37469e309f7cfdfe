package builtins

import (
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"ecmalite/pkg/vm"
)

// ObjectPrototypeInitializer implements Object.prototype, the root of every
// prototype chain.
type ObjectPrototypeInitializer struct{}

func (o *ObjectPrototypeInitializer) Name() string {
	return "Object.prototype"
}

func (o *ObjectPrototypeInitializer) Priority() int {
	return PriorityObjectPrototype
}

var objectPrototypeNames = []vm.MagicString{
	vm.MagicConstructor,
	vm.MagicHasOwnProperty,
	vm.MagicIsPrototypeOf,
	vm.MagicPropertyIsEnumerable,
	vm.MagicToLocaleString,
	vm.MagicToString,
	vm.MagicValueOf,
}

func (o *ObjectPrototypeInitializer) Descriptor() *vm.BuiltinDescriptor {
	return &vm.BuiltinDescriptor{
		ID:    vm.BuiltinObjectPrototype,
		Class: vm.ClassObject,
		Type:  vm.ObjectTypeGeneral,
		Names: objectPrototypeNames,
		Routines: map[vm.MagicString]vm.Routine{
			vm.MagicHasOwnProperty:       {Arity: 1, Fn: objectProtoHasOwnPropertyImpl},
			vm.MagicIsPrototypeOf:        {Arity: 1, Fn: objectProtoIsPrototypeOfImpl},
			vm.MagicPropertyIsEnumerable: {Arity: 1, Fn: objectProtoPropertyIsEnumerableImpl},
			vm.MagicToLocaleString:       {Arity: 0, Fn: objectProtoToLocaleStringImpl},
			vm.MagicToString:             {Arity: 0, Fn: objectProtoToStringImpl},
			vm.MagicValueOf:              {Arity: 0, Fn: objectProtoValueOfImpl},
		},
		Synthesize: func(r *vm.Realm, id vm.MagicString) (vm.Value, vm.Attributes) {
			contract.Assertf(id == vm.MagicConstructor, "Object.prototype has no value property %q", id.String())
			return r.GetBuiltin(vm.BuiltinObject), writableHidden
		},
	}
}

func objectProtoToStringImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	var tag string
	switch this.Type() {
	case vm.TypeUndefined:
		tag = "Undefined"
	case vm.TypeNull:
		tag = "Null"
	case vm.TypeBoolean:
		tag = "Boolean"
	case vm.TypeNumber:
		tag = "Number"
	case vm.TypeString:
		tag = "String"
	case vm.TypeObject:
		tag = r.Heap().Object(this.AsObject()).Class().String()
	default:
		contract.Failf("toString on %s value", this.Type())
	}
	return vm.Normal(r.Heap().NewString("[object " + tag + "]")), nil
}

func objectProtoToLocaleStringImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, err := toObject(r, this)
	if err != nil || !c.IsNormal() {
		return c, err
	}
	fn, err := r.Get(ref, vm.MagicToString.Name())
	if err != nil || !fn.IsNormal() {
		return fn, err
	}
	defer r.Heap().ReleaseCompletion(fn)
	return r.Call(fn.Value(), this, nil)
}

func objectProtoValueOfImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, err := toObject(r, this)
	if err != nil || !c.IsNormal() {
		return c, err
	}
	return returnObject(r, ref)
}

func objectProtoHasOwnPropertyImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	name, err := r.ToPropertyName(args[0])
	if err != nil {
		return vm.Completion{}, err
	}
	ref, c, err := toObject(r, this)
	if err != nil || !c.IsNormal() {
		return c, err
	}
	return vm.Normal(vm.BooleanValue(r.GetOwnProperty(ref, name) != nil)), nil
}

func objectProtoIsPrototypeOfImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	v := args[0]
	if !v.IsObject() {
		return vm.Normal(vm.False), nil
	}
	ref, c, err := toObject(r, this)
	if err != nil || !c.IsNormal() {
		return c, err
	}
	h := r.Heap()
	for p := h.Object(v.AsObject()).Prototype(); !p.IsNull(); p = h.Object(p).Prototype() {
		if p == ref {
			return vm.Normal(vm.True), nil
		}
	}
	return vm.Normal(vm.False), nil
}

func objectProtoPropertyIsEnumerableImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	name, err := r.ToPropertyName(args[0])
	if err != nil {
		return vm.Completion{}, err
	}
	ref, c, err := toObject(r, this)
	if err != nil || !c.IsNormal() {
		return c, err
	}
	p := r.GetOwnProperty(ref, name)
	return vm.Normal(vm.BooleanValue(p != nil && p.Enumerable())), nil
}
