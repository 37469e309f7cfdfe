package builtins

import (
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"ecmalite/pkg/errors"
	"ecmalite/pkg/vm"
)

// ObjectInitializer implements the Object builtin
type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject
}

// objectNames is the lazily instantiated surface of the Object constructor,
// ascending by magic string id.
var objectNames = []vm.MagicString{
	vm.MagicCreate,
	vm.MagicDefineProperties,
	vm.MagicDefineProperty,
	vm.MagicFreeze,
	vm.MagicGetOwnPropertyDescriptor,
	vm.MagicGetOwnPropertyNames,
	vm.MagicGetPrototypeOf,
	vm.MagicIsExtensible,
	vm.MagicIsFrozen,
	vm.MagicIsSealed,
	vm.MagicKeys,
	vm.MagicLength,
	vm.MagicPreventExtensions,
	vm.MagicPrototype,
	vm.MagicSeal,
}

func (o *ObjectInitializer) Descriptor() *vm.BuiltinDescriptor {
	return &vm.BuiltinDescriptor{
		ID:        vm.BuiltinObject,
		Class:     vm.ClassFunction,
		Type:      vm.ObjectTypeFunction,
		Prototype: vm.BuiltinObjectPrototype,
		Names:     objectNames,
		Routines: map[vm.MagicString]vm.Routine{
			vm.MagicGetPrototypeOf:           {Arity: 1, Fn: objectGetPrototypeOfImpl},
			vm.MagicGetOwnPropertyDescriptor: {Arity: 2, Fn: objectGetOwnPropertyDescriptorImpl},
			vm.MagicGetOwnPropertyNames:      {Arity: 1, Fn: objectGetOwnPropertyNamesImpl},
			vm.MagicCreate:                   {Arity: 2, Fn: objectCreateImpl},
			vm.MagicDefineProperty:           {Arity: 3, Fn: objectDefinePropertyImpl},
			vm.MagicDefineProperties:         {Arity: 2, Fn: objectDefinePropertiesImpl},
			vm.MagicSeal:                     {Arity: 1, Fn: objectSealImpl},
			vm.MagicFreeze:                   {Arity: 1, Fn: objectFreezeImpl},
			vm.MagicPreventExtensions:        {Arity: 1, Fn: objectPreventExtensionsImpl},
			vm.MagicIsSealed:                 {Arity: 1, Fn: objectIsSealedImpl},
			vm.MagicIsFrozen:                 {Arity: 1, Fn: objectIsFrozenImpl},
			vm.MagicIsExtensible:             {Arity: 1, Fn: objectIsExtensibleImpl},
			vm.MagicKeys:                     {Arity: 1, Fn: objectKeysImpl},
		},
		Synthesize: objectSynthesize,
		Call:       objectCallImpl,
	}
}

func objectSynthesize(r *vm.Realm, id vm.MagicString) (vm.Value, vm.Attributes) {
	switch id {
	case vm.MagicLength:
		return r.Heap().NewNumber(1), fixed
	case vm.MagicPrototype:
		return r.GetBuiltin(vm.BuiltinObjectPrototype), fixed
	}
	contract.Failf("Object has no value property %q", id.String())
	return vm.Undefined, fixed
}

// objectCallImpl implements Object(value) called as a function.
func objectCallImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	if len(args) == 0 || args[0].IsUndefined() || args[0].IsNull() {
		return vm.Normal(vm.OwnedObjectValue(r.NewObject())), nil
	}
	if args[0].IsObject() {
		return returnObject(r, args[0].AsObject())
	}
	return vm.Completion{}, errors.NotImplemented("Object(%s)", args[0].Type())
}
