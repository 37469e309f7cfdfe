package builtins

import (
	"sort"

	"ecmalite/pkg/vm"
)

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	var initializers []BuiltinInitializer

	// Global object
	initializers = append(initializers, &GlobalsInitializer{})

	// Core builtins
	initializers = append(initializers, &ObjectInitializer{})
	initializers = append(initializers, &ObjectPrototypeInitializer{})

	// Sort by priority (lower numbers first)
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}

// Descriptors collects the registration descriptors of initializers in order.
func Descriptors(initializers []BuiltinInitializer) []*vm.BuiltinDescriptor {
	descs := make([]*vm.BuiltinDescriptor, 0, len(initializers))
	for _, in := range initializers {
		descs = append(descs, in.Descriptor())
	}
	return descs
}

// NewRealm creates a realm with every standard built-in registered.
func NewRealm(opts vm.GCOptions) *vm.Realm {
	return vm.NewRealm(opts, Descriptors(GetStandardInitializers())...)
}

// Lookup resolves a built-in by its module name.
func Lookup(name string) (vm.BuiltinID, bool) {
	for _, in := range GetStandardInitializers() {
		if in.Name() == name {
			return in.Descriptor().ID, true
		}
	}
	return vm.BuiltinNone, false
}
