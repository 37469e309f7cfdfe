package builtins

import (
	"math"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"ecmalite/pkg/vm"
)

// GlobalsInitializer implements the global object: value properties and the
// global functions.
type GlobalsInitializer struct{}

func (g *GlobalsInitializer) Name() string {
	return "global"
}

func (g *GlobalsInitializer) Priority() int {
	return PriorityGlobal
}

var globalNames = []vm.MagicString{
	vm.MagicInfinity,
	vm.MagicNaN,
	vm.MagicObject,
	vm.MagicIsFinite,
	vm.MagicIsNaN,
	vm.MagicUndefined,
}

func (g *GlobalsInitializer) Descriptor() *vm.BuiltinDescriptor {
	return &vm.BuiltinDescriptor{
		ID:        vm.BuiltinGlobal,
		Class:     vm.ClassGlobal,
		Type:      vm.ObjectTypeGeneral,
		Prototype: vm.BuiltinObjectPrototype,
		Names:     globalNames,
		Routines: map[vm.MagicString]vm.Routine{
			vm.MagicIsFinite: {Arity: 1, Fn: globalIsFiniteImpl},
			vm.MagicIsNaN:    {Arity: 1, Fn: globalIsNaNImpl},
		},
		Synthesize: globalSynthesize,
	}
}

func globalSynthesize(r *vm.Realm, id vm.MagicString) (vm.Value, vm.Attributes) {
	switch id {
	case vm.MagicInfinity:
		return r.Heap().NewNumber(math.Inf(1)), fixed
	case vm.MagicNaN:
		return r.Heap().NewNumber(math.NaN()), fixed
	case vm.MagicUndefined:
		return vm.Undefined, fixed
	case vm.MagicObject:
		return r.GetBuiltin(vm.BuiltinObject), writableHidden
	}
	contract.Failf("global object has no value property %q", id.String())
	return vm.Undefined, fixed
}

func globalIsNaNImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	f, err := r.ToNumber(args[0])
	if err != nil {
		return vm.Completion{}, err
	}
	return vm.Normal(vm.BooleanValue(math.IsNaN(f))), nil
}

func globalIsFiniteImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	f, err := r.ToNumber(args[0])
	if err != nil {
		return vm.Completion{}, err
	}
	return vm.Normal(vm.BooleanValue(!math.IsNaN(f) && !math.IsInf(f, 0))), nil
}
