package builtins

import (
	"ecmalite/pkg/vm"
)

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the module name (e.g., "Object", "Object.prototype")
	Name() string

	// Priority returns registration order (lower = earlier)
	Priority() int

	// Descriptor returns the sorted property table, the dispatch table and the
	// synthesis rule the realm uses to materialize the module lazily
	Descriptor() *vm.BuiltinDescriptor
}

// Priority constants for registration order. A built-in used as another's
// [[Prototype]] must be registered first.
const (
	PriorityObjectPrototype = 0 // Root of every prototype chain
	PriorityObject          = 1 // Object constructor (inherits from Object.prototype)
	PriorityGlobal          = 2 // Global object, exposes Object
)

// fixed are the attributes of structural and metadata slots.
var fixed = vm.Attributes{}

// writableHidden are the attributes of routine-like value slots.
var writableHidden = vm.Attributes{Writable: true, Configurable: true}
