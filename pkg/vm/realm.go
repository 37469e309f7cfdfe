package vm

import (
	"sync/atomic"

	"github.com/golang/glog"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

var realmIDs atomic.Int64

// Realm represents an isolated JavaScript execution environment with its own
// heap and built-in objects. A realm must only be used by one goroutine at a
// time; separate realms share nothing.
type Realm struct {
	// Identity
	id int

	heap     *Heap
	builtins map[BuiltinID]*builtinEntry
	order    []BuiltinID // registration order, reversed on teardown

	torndown bool
}

// NewRealm creates a realm and registers the given built-ins in order. A
// built-in that names another as its prototype must come after it.
func NewRealm(opts GCOptions, descs ...*BuiltinDescriptor) *Realm {
	r := &Realm{
		id:       int(realmIDs.Add(1)),
		heap:     NewHeap(opts),
		builtins: make(map[BuiltinID]*builtinEntry, len(descs)),
	}
	for _, desc := range descs {
		r.initBuiltin(desc)
	}
	glog.V(1).Infof("realm %d: initialized with %d built-ins", r.id, len(descs))
	return r
}

func (r *Realm) ID() int     { return r.id }
func (r *Realm) Heap() *Heap { return r.heap }

// Builtins lists the registered built-ins in registration order.
func (r *Realm) Builtins() []BuiltinID {
	return append([]BuiltinID(nil), r.order...)
}

// Builtin returns the realm's reference to a built-in object without
// transferring ownership.
func (r *Realm) Builtin(id BuiltinID) ObjectRef {
	contract.Assertf(!r.torndown, "realm %d used after teardown", r.id)
	return r.entry(id).object
}

// GetBuiltin returns an owning value for a built-in object.
func (r *Realm) GetBuiltin(id BuiltinID) Value {
	return r.heap.MakeObjectValue(r.Builtin(id))
}

// IsBuiltin reports whether ref is the realm's built-in id.
func (r *Realm) IsBuiltin(ref ObjectRef, id BuiltinID) bool {
	e, ok := r.builtins[id]
	return ok && e.object == ref
}

// Teardown drops the realm's references to its built-ins and runs a major
// collection. Objects still owned elsewhere survive.
func (r *Realm) Teardown() {
	contract.Assertf(!r.torndown, "realm %d torn down twice", r.id)
	for i := len(r.order) - 1; i >= 0; i-- {
		r.heap.Deref(r.builtins[r.order[i]].object)
	}
	r.torndown = true
	freed := r.heap.Collect(GCMajor)
	glog.V(1).Infof("realm %d: torn down, %d objects freed", r.id, freed)
}
