package vm

import "fmt"

type ObjectType uint8

const (
	ObjectTypeGeneral ObjectType = iota
	ObjectTypeFunction
	ObjectTypeArray
)

// Class is the [[Class]] tag of an object. It is kept in an internal property.
type Class uint8

const (
	ClassObject Class = iota
	ClassFunction
	ClassArray
	ClassError
	ClassGlobal
)

func (c Class) String() string {
	switch c {
	case ClassObject:
		return "Object"
	case ClassFunction:
		return "Function"
	case ClassArray:
		return "Array"
	case ClassError:
		return "Error"
	case ClassGlobal:
		return "global"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

type Generation uint8

const (
	GenerationYoung Generation = iota
	GenerationOld
)

func (g Generation) String() string {
	if g == GenerationOld {
		return "old"
	}
	return "young"
}

// Object is a heap entity. Its identity is its slot: objects never move, and
// a freed slot is only reused under a new generation.
type Object struct {
	ref        ObjectRef
	typ        ObjectType
	extensible bool
	builtin    bool      // has lazily instantiated properties
	prototype  ObjectRef // structural link, not counted
	properties []*Property

	// GC metadata
	refs          uint32
	generation    Generation
	age           uint8
	mayRefYounger bool
	marked        bool
}

func (o *Object) Ref() ObjectRef         { return o.ref }
func (o *Object) Type() ObjectType       { return o.typ }
func (o *Object) Extensible() bool       { return o.extensible }
func (o *Object) IsBuiltin() bool        { return o.builtin }
func (o *Object) Prototype() ObjectRef   { return o.prototype }
func (o *Object) RefCount() uint32       { return o.refs }
func (o *Object) Generation() Generation { return o.generation }
func (o *Object) MayRefYounger() bool    { return o.mayRefYounger }
func (o *Object) IsCallable() bool       { return o.typ == ObjectTypeFunction }
func (o *Object) PropertyCount() int     { return len(o.properties) }

func (o *Object) internal(k InternalKind) *Property {
	for _, p := range o.properties {
		if p.kind == PropertyInternal && p.internal == k {
			return p
		}
	}
	return nil
}

// Class returns the object's class tag, ClassObject when none was recorded.
func (o *Object) Class() Class {
	if p := o.internal(InternalClass); p != nil {
		return Class(p.raw)
	}
	return ClassObject
}

// NewObject allocates an extensible general object with the given prototype.
// The caller owns the returned reference.
func (h *Heap) NewObject(proto ObjectRef, class Class) ObjectRef {
	ref := h.AllocObject(proto, true, ObjectTypeGeneral)
	if class != ClassObject {
		h.SetClass(ref, class)
	}
	return ref
}

// SetClass records the class tag in the InternalClass property.
func (h *Heap) SetClass(ref ObjectRef, class Class) {
	o := h.Object(ref)
	p := o.internal(InternalClass)
	if p == nil {
		p = h.CreateInternalProperty(ref, InternalClass)
	}
	p.raw = uint64(class)
}

func (h *Heap) SetExtensible(ref ObjectRef, extensible bool) {
	h.Object(ref).extensible = extensible
}

// SetPrototype relinks ref's prototype. The link is traced, not counted.
func (h *Heap) SetPrototype(ref ObjectRef, proto ObjectRef) {
	o := h.Object(ref)
	if !proto.IsNull() {
		h.writeBarrier(o, h.Object(proto))
	}
	o.prototype = proto
}
