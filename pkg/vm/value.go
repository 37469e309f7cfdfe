package vm

import (
	"fmt"
)

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeEmpty // Internal marker for uninitialized slots, never observable by script
	TypeNumber
	TypeString
	TypeObject
)

// String returns a human-readable string representation of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeEmpty:
		return "empty"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// SimpleValue enumerates the payload-free values.
type SimpleValue uint8

const (
	SimpleUndefined SimpleValue = iota
	SimpleNull
	SimpleFalse
	SimpleTrue
	SimpleEmpty
)

// Value is the tagged engine value. Number, heap-string and object payloads
// live in the Heap and are addressed by generation-checked handles; a Value
// holding one of them is either an owner (must be released exactly once) or a
// borrowed alias produced by CopyValue(v, false).
type Value struct {
	typ   ValueType
	flag  bool        // boolean payload
	magic MagicString // interned string payload
	index uint32      // heap slot for number, heap string or object
	gen   uint32
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, flag: true}
	False     = Value{typ: TypeBoolean, flag: false}
	Empty     = Value{typ: TypeEmpty}
)

// MakeSimpleValue constructs one of the payload-free values.
func MakeSimpleValue(s SimpleValue) Value {
	switch s {
	case SimpleUndefined:
		return Undefined
	case SimpleNull:
		return Null
	case SimpleFalse:
		return False
	case SimpleTrue:
		return True
	case SimpleEmpty:
		return Empty
	}
	panic(fmt.Sprintf("vm: unknown simple value %d", s))
}

func BooleanValue(b bool) Value {
	if b {
		return True
	}
	return False
}

// Value returns an interned string value. Releasing it is a no-op.
func (m MagicString) Value() Value {
	return Value{typ: TypeString, magic: m}
}

// MakeNumberValue wraps a freshly allocated number cell. The value takes
// ownership of the cell.
func MakeNumberValue(ref NumberRef) Value {
	return Value{typ: TypeNumber, index: ref.index, gen: ref.gen}
}

func (v Value) Type() ValueType { return v.typ }

func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) IsEmpty() bool     { return v.typ == TypeEmpty }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsObject() bool    { return v.typ == TypeObject }

// IsMagicString reports whether v is an interned string.
func (v Value) IsMagicString() bool { return v.typ == TypeString && v.magic != MagicNone }

func (v Value) AsBoolean() bool {
	if v.typ != TypeBoolean {
		panic("value is not a boolean")
	}
	return v.flag
}

func (v Value) AsMagic() MagicString {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	return v.magic
}

func (v Value) AsObject() ObjectRef {
	if v.typ != TypeObject {
		panic("value is not an object")
	}
	return ObjectRef{index: v.index, gen: v.gen}
}

func (v Value) numberRef() NumberRef { return NumberRef{index: v.index, gen: v.gen} }
func (v Value) stringRef() StringRef { return StringRef{index: v.index, gen: v.gen} }

// hasHeapPayload reports whether releasing v touches the heap.
func (v Value) hasHeapPayload() bool {
	switch v.typ {
	case TypeNumber, TypeObject:
		return true
	case TypeString:
		return v.magic == MagicNone
	}
	return false
}

// NewNumber allocates a number cell and returns an owning value for it.
func (h *Heap) NewNumber(f float64) Value {
	return MakeNumberValue(h.AllocNumber(f))
}

// NewString returns an interned value when s is a magic string and an owning
// heap string value otherwise.
func (h *Heap) NewString(s string) Value {
	if m := LookupMagic(s); m != MagicNone {
		return m.Value()
	}
	ref := h.allocString(NewName(s).str)
	return Value{typ: TypeString, index: ref.index, gen: ref.gen}
}

// OwnedObjectValue wraps a reference the caller already owns, such as one
// fresh from AllocObject. The count is not changed.
func OwnedObjectValue(o ObjectRef) Value {
	return Value{typ: TypeObject, index: o.index, gen: o.gen}
}

// MakeObjectValue returns an owning value for o, incrementing its count.
func (h *Heap) MakeObjectValue(o ObjectRef) Value {
	h.Ref(o)
	return Value{typ: TypeObject, index: o.index, gen: o.gen}
}

// Number reads the payload of a number value.
func (h *Heap) Number(v Value) float64 {
	if v.typ != TypeNumber {
		panic("value is not a number")
	}
	return h.numberCell(v.numberRef()).v
}

// StringOf returns the text of a string value.
func (h *Heap) StringOf(v Value) string {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	if v.magic != MagicNone {
		return v.magic.String()
	}
	return h.stringCell(v.stringRef()).s.String()
}

// NameOf converts a string value into a property name.
func (h *Heap) NameOf(v Value) Name {
	if v.typ != TypeString {
		panic("value is not a string")
	}
	if v.magic != MagicNone {
		return v.magic.Name()
	}
	return Name{str: h.stringCell(v.stringRef()).s}
}

// CopyValue copies v. With transfer set the copy is an independent owner: a
// number cell is duplicated and object or heap-string counts are bumped. Without
// it the copy aliases v's payload and must not be released.
func (h *Heap) CopyValue(v Value, transfer bool) Value {
	if !transfer || !v.hasHeapPayload() {
		return v
	}
	switch v.typ {
	case TypeNumber:
		return h.NewNumber(h.Number(v))
	case TypeString:
		h.refString(v.stringRef())
		return v
	case TypeObject:
		h.Ref(v.AsObject())
		return v
	}
	return v
}

// Release gives up ownership of v: owned number cells are freed, heap strings
// and objects are dereferenced. Simple values and magic strings are no-ops.
func (h *Heap) Release(v Value) {
	switch v.typ {
	case TypeNumber:
		h.freeNumber(v.numberRef())
	case TypeString:
		if v.magic == MagicNone {
			h.derefString(v.stringRef())
		}
	case TypeObject:
		h.Deref(v.AsObject())
	}
}

// Inspect renders v for diagnostics.
func (h *Heap) Inspect(v Value) string {
	switch v.typ {
	case TypeUndefined, TypeNull, TypeEmpty:
		return v.typ.String()
	case TypeBoolean:
		if v.flag {
			return "true"
		}
		return "false"
	case TypeNumber:
		return numberToString(h.Number(v))
	case TypeString:
		return fmt.Sprintf("%q", h.StringOf(v))
	case TypeObject:
		o := h.Object(v.AsObject())
		return fmt.Sprintf("[object %s #%d]", o.Class(), v.index)
	}
	return "<unknown>"
}
