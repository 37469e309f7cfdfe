package vm

import (
	"fmt"
	"math/bits"

	"github.com/golang/glog"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"ecmalite/pkg/errors"
)

// BuiltinID identifies a built-in object within a realm.
type BuiltinID uint8

const (
	BuiltinNone BuiltinID = iota
	BuiltinGlobal
	BuiltinObject
	BuiltinObjectPrototype
)

func (id BuiltinID) String() string {
	switch id {
	case BuiltinNone:
		return "none"
	case BuiltinGlobal:
		return "global"
	case BuiltinObject:
		return "Object"
	case BuiltinObjectPrototype:
		return "Object.prototype"
	default:
		return fmt.Sprintf("BuiltinID(%d)", uint8(id))
	}
}

// maxPendingWords caps the pending mask of a built-in at 128 entries.
const maxPendingWords = 4

// RoutineFunc implements a built-in routine. args always holds at least the
// routine's arity; the caller keeps ownership of this and args, and receives
// ownership of the returned completion.
type RoutineFunc func(r *Realm, this Value, args []Value) (Completion, error)

// Routine is one entry of a built-in's dispatch table.
type Routine struct {
	Arity int
	Fn    RoutineFunc
}

// Attributes of a synthesized value property.
type Attributes struct {
	Writable     bool
	Enumerable   bool
	Configurable bool
}

// BuiltinDescriptor is everything a built-in module registers with a realm:
// the sorted property table, the dispatch table for its routines and the
// synthesis rule for its non-routine properties.
type BuiltinDescriptor struct {
	ID        BuiltinID
	Class     Class
	Type      ObjectType
	Prototype BuiltinID // built-in used as [[Prototype]], BuiltinNone for null

	// Names lists every lazily instantiated property in strictly ascending
	// id order.
	Names    []MagicString
	Routines map[MagicString]Routine

	// Synthesize builds the value of a non-routine entry of Names. The
	// returned value is owned by the caller.
	Synthesize func(r *Realm, id MagicString) (Value, Attributes)

	// Call implements [[Call]] when the built-in itself is callable.
	Call RoutineFunc
}

type builtinEntry struct {
	desc     *BuiltinDescriptor
	object   ObjectRef // owned by the realm until Teardown
	dispatch map[MagicString]Routine
}

func validateDescriptor(desc *BuiltinDescriptor) {
	contract.Assertf(desc.ID != BuiltinNone, "built-in descriptor without id")
	contract.Assertf(len(desc.Names) <= maxPendingWords*32,
		"built-in %s has %d properties, more than the %d the pending mask holds", desc.ID, len(desc.Names), maxPendingWords*32)
	for i := 1; i < len(desc.Names); i++ {
		contract.Assertf(desc.Names[i-1] < desc.Names[i],
			"property table of built-in %s is not strictly ascending at %q", desc.ID, desc.Names[i].String())
	}
	for id := range desc.Routines {
		contract.Assertf(searchMagic(desc.Names, id) >= 0, "routine %q of built-in %s missing from its table", id.String(), desc.ID)
	}
	for _, id := range desc.Names {
		if _, ok := desc.Routines[id]; !ok {
			contract.Assertf(desc.Synthesize != nil, "built-in %s has value property %q but no Synthesize", desc.ID, id.String())
		}
	}
}

// initBuiltin creates the object for desc with every table entry pending.
func (r *Realm) initBuiltin(desc *BuiltinDescriptor) {
	validateDescriptor(desc)
	_, dup := r.builtins[desc.ID]
	contract.Assertf(!dup, "built-in %s registered twice", desc.ID)

	var proto ObjectRef
	if desc.Prototype != BuiltinNone {
		proto = r.Builtin(desc.Prototype)
	}
	h := r.heap
	ref := h.AllocObject(proto, true, desc.Type)
	h.SetClass(ref, desc.Class)
	h.CreateInternalProperty(ref, InternalBuiltinID).SetRaw(uint64(desc.ID))
	for w := 0; w*32 < len(desc.Names); w++ {
		n := min(32, len(desc.Names)-w*32)
		h.CreateInternalProperty(ref, InternalPendingMask+InternalKind(w)).SetRaw(uint64(1)<<n - 1)
	}
	h.Object(ref).builtin = true

	dispatch := make(map[MagicString]Routine, len(desc.Routines))
	for id, routine := range desc.Routines {
		dispatch[id] = routine
	}
	r.builtins[desc.ID] = &builtinEntry{desc: desc, object: ref, dispatch: dispatch}
	r.order = append(r.order, desc.ID)
	glog.V(1).Infof("realm %d: registered built-in %s (%d lazy properties)", r.id, desc.ID, len(desc.Names))
}

func (r *Realm) entry(id BuiltinID) *builtinEntry {
	e, ok := r.builtins[id]
	contract.Assertf(ok, "unknown built-in %s", id)
	return e
}

// builtinIDOf returns the built-in identity recorded on ref, or BuiltinNone.
func (r *Realm) builtinIDOf(ref ObjectRef) BuiltinID {
	if p := r.heap.GetInternalProperty(ref, InternalBuiltinID); p != nil {
		return BuiltinID(p.raw)
	}
	return BuiltinNone
}

// tryInstantiate materializes the lazily instantiated property name of the
// built-in object ref. It returns nil when name is not in the built-in's table
// or was already materialized (and possibly deleted) before.
func (r *Realm) tryInstantiate(ref ObjectRef, name Name) *Property {
	h := r.heap
	if !h.Object(ref).builtin {
		return nil
	}
	id, ok := name.Magic()
	if !ok {
		return nil
	}
	bid := r.builtinIDOf(ref)
	e := r.entry(bid)
	i := searchMagic(e.desc.Names, id)
	if i < 0 {
		return nil
	}
	word := h.GetInternalProperty(ref, InternalPendingMask+InternalKind(i/32))
	bit := uint64(1) << (i % 32)
	if word.raw&bit == 0 {
		return nil
	}
	word.raw &^= bit

	var value Value
	var attrs Attributes
	if routine, ok := e.dispatch[id]; ok {
		value = r.makeRoutineFunction(bid, id, routine.Arity)
		attrs = Attributes{Writable: true, Enumerable: false, Configurable: true}
	} else {
		value, attrs = e.desc.Synthesize(r, id)
	}
	p := h.CreateDataProperty(ref, name, attrs.Writable, attrs.Enumerable, attrs.Configurable)
	h.SetDataValue(ref, p, value)
	h.Release(value)
	glog.V(2).Infof("realm %d: instantiated %s.%s", r.id, bid, id)
	return p
}

// instantiateAll materializes every pending property of a built-in object.
func (r *Realm) instantiateAll(ref ObjectRef) {
	if !r.heap.Object(ref).builtin {
		return
	}
	for _, id := range r.entry(r.builtinIDOf(ref)).desc.Names {
		r.tryInstantiate(ref, id.Name())
	}
}

// PendingCount returns how many table entries of a built-in object are not
// yet materialized.
func (r *Realm) PendingCount(ref ObjectRef) int {
	n := 0
	for w := 0; w < maxPendingWords; w++ {
		p := r.heap.GetInternalProperty(ref, InternalPendingMask+InternalKind(w))
		if p == nil {
			break
		}
		n += bits.OnesCount64(p.raw)
	}
	return n
}

// PendingMask returns word w of the pending mask of a built-in object.
func (r *Realm) PendingMask(ref ObjectRef, w int) uint32 {
	if p := r.heap.GetInternalProperty(ref, InternalPendingMask+InternalKind(w)); p != nil {
		return uint32(p.raw)
	}
	return 0
}

// makeRoutineFunction creates the function object that stands for routine id
// of built-in bid. The caller owns the returned value.
func (r *Realm) makeRoutineFunction(bid BuiltinID, id MagicString, arity int) Value {
	h := r.heap
	fn := h.AllocObject(ObjectRef{}, true, ObjectTypeFunction)
	h.SetClass(fn, ClassFunction)
	h.CreateInternalProperty(fn, InternalBuiltinID).SetRaw(uint64(bid))
	h.CreateInternalProperty(fn, InternalBuiltinRoutineID).SetRaw(uint64(id))
	length := h.CreateDataProperty(fn, MagicLength.Name(), false, false, false)
	n := h.NewNumber(float64(arity))
	h.SetDataValue(fn, length, n)
	h.Release(n)
	return OwnedObjectValue(fn)
}

// RoutineOf reports which built-in routine the function object ref stands for.
func (r *Realm) RoutineOf(ref ObjectRef) (BuiltinID, MagicString, bool) {
	p := r.heap.GetInternalProperty(ref, InternalBuiltinRoutineID)
	if p == nil {
		return BuiltinNone, MagicNone, false
	}
	return r.builtinIDOf(ref), MagicString(p.raw), true
}

// Dispatch invokes routine id of built-in bid. Missing arguments up to the
// routine's arity are passed as Undefined. Unknown ids are fatal.
func (r *Realm) Dispatch(bid BuiltinID, id MagicString, this Value, args []Value) (Completion, error) {
	e := r.entry(bid)
	routine, ok := e.dispatch[id]
	contract.Assertf(ok, "built-in %s has no routine %q", bid, id.String())
	if len(args) < routine.Arity {
		padded := make([]Value, routine.Arity)
		n := copy(padded, args)
		for i := n; i < len(padded); i++ {
			padded[i] = Undefined
		}
		args = padded
	}
	return routine.Fn(r, this, args)
}

// Call invokes the callable object fn. Only built-in routines and callable
// built-ins can run here; other functions need the interpreter.
func (r *Realm) Call(fn Value, this Value, args []Value) (Completion, error) {
	if !fn.IsObject() || !r.heap.Object(fn.AsObject()).IsCallable() {
		return r.ThrowTypeError("value is not a function"), nil
	}
	ref := fn.AsObject()
	if bid, id, ok := r.RoutineOf(ref); ok {
		return r.Dispatch(bid, id, this, args)
	}
	if r.heap.Object(ref).builtin {
		if call := r.entry(r.builtinIDOf(ref)).desc.Call; call != nil {
			return call(r, this, args)
		}
	}
	return Completion{}, errors.NotImplemented("call of non-built-in function")
}
