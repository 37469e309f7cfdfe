package vm

import (
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

type PropertyKind uint8

const (
	PropertyData PropertyKind = iota
	PropertyAccessor
	PropertyInternal
)

// InternalKind names an engine-only property slot.
type InternalKind uint16

const (
	InternalClass InternalKind = iota + 1
	InternalBuiltinID
	InternalBuiltinRoutineID
	// InternalPendingMask is the first word of the non-instantiated built-in
	// mask; word n lives under InternalPendingMask+n.
	InternalPendingMask
)

// Property is one slot of an object's property list.
type Property struct {
	kind     PropertyKind
	name     Name
	internal InternalKind

	value  Value     // data: owned copy, objects are traced edges
	getter ObjectRef // accessor: null means undefined
	setter ObjectRef
	raw    uint64 // internal payload

	writable     bool
	enumerable   bool
	configurable bool
}

func (p *Property) Kind() PropertyKind     { return p.kind }
func (p *Property) Name() Name             { return p.name }
func (p *Property) IsData() bool           { return p.kind == PropertyData }
func (p *Property) IsAccessor() bool       { return p.kind == PropertyAccessor }
func (p *Property) Writable() bool         { return p.writable }
func (p *Property) Enumerable() bool       { return p.enumerable }
func (p *Property) Configurable() bool     { return p.configurable }
func (p *Property) Getter() ObjectRef      { return p.getter }
func (p *Property) Setter() ObjectRef      { return p.setter }
func (p *Property) Raw() uint64            { return p.raw }
func (p *Property) SetRaw(raw uint64)      { p.raw = raw }
func (p *Property) SetWritable(b bool)     { p.writable = b }
func (p *Property) SetEnumerable(b bool)   { p.enumerable = b }
func (p *Property) SetConfigurable(b bool) { p.configurable = b }

// Value returns the stored value of a data property without transferring
// ownership.
func (p *Property) Value() Value {
	contract.Assertf(p.kind == PropertyData, "property %q is not a data property", p.name.String())
	return p.value
}

// CreateDataProperty adds a data property holding Empty. Creating a second
// property with the same name is fatal.
func (h *Heap) CreateDataProperty(ref ObjectRef, name Name, writable, enumerable, configurable bool) *Property {
	o := h.Object(ref)
	contract.Assertf(h.FindNamedProperty(ref, name) == nil, "duplicate property %q", name.String())
	p := &Property{
		kind:         PropertyData,
		name:         name,
		value:        Empty,
		writable:     writable,
		enumerable:   enumerable,
		configurable: configurable,
	}
	o.properties = append(o.properties, p)
	return p
}

// CreateAccessorProperty adds an accessor property. Null getter or setter
// refs stand for undefined.
func (h *Heap) CreateAccessorProperty(ref ObjectRef, name Name, getter, setter ObjectRef, enumerable, configurable bool) *Property {
	o := h.Object(ref)
	contract.Assertf(h.FindNamedProperty(ref, name) == nil, "duplicate property %q", name.String())
	p := &Property{
		kind:         PropertyAccessor,
		name:         name,
		enumerable:   enumerable,
		configurable: configurable,
	}
	o.properties = append(o.properties, p)
	h.SetAccessorPair(ref, p, getter, setter)
	return p
}

// CreateInternalProperty adds an engine-only slot with a zero raw payload.
func (h *Heap) CreateInternalProperty(ref ObjectRef, kind InternalKind) *Property {
	o := h.Object(ref)
	contract.Assertf(o.internal(kind) == nil, "duplicate internal property %d", kind)
	p := &Property{kind: PropertyInternal, internal: kind}
	o.properties = append(o.properties, p)
	return p
}

// FindNamedProperty returns the own data or accessor property called name,
// or nil. Lazily instantiated built-in properties are not synthesized here.
func (h *Heap) FindNamedProperty(ref ObjectRef, name Name) *Property {
	for _, p := range h.Object(ref).properties {
		if p.kind != PropertyInternal && p.name.Equal(name) {
			return p
		}
	}
	return nil
}

// GetInternalProperty returns the internal slot of the given kind, or nil.
func (h *Heap) GetInternalProperty(ref ObjectRef, kind InternalKind) *Property {
	return h.Object(ref).internal(kind)
}

// DeleteProperty unlinks p from ref and releases its payload.
func (h *Heap) DeleteProperty(ref ObjectRef, p *Property) {
	o := h.Object(ref)
	for i, q := range o.properties {
		if q == p {
			o.properties = append(o.properties[:i], o.properties[i+1:]...)
			h.releasePropertyPayload(p)
			return
		}
	}
	contract.Failf("property %q does not belong to object %d", p.name.String(), ref.index)
}

// SetDataValue stores a copy of v into the data property p of ref. The caller
// keeps ownership of v.
func (h *Heap) SetDataValue(ref ObjectRef, p *Property, v Value) {
	contract.Assertf(p.kind == PropertyData, "property %q is not a data property", p.name.String())
	o := h.Object(ref)
	old := p.value
	if v.IsObject() {
		target := h.Object(v.AsObject())
		h.writeBarrier(o, target)
		p.value = v
	} else {
		p.value = h.CopyValue(v, true)
	}
	h.releaseSlotValue(old)
}

// SetAccessorPair replaces the getter and setter of accessor property p.
func (h *Heap) SetAccessorPair(ref ObjectRef, p *Property, getter, setter ObjectRef) {
	contract.Assertf(p.kind == PropertyAccessor, "property %q is not an accessor", p.name.String())
	o := h.Object(ref)
	for _, f := range [...]ObjectRef{getter, setter} {
		if !f.IsNull() {
			h.writeBarrier(o, h.Object(f))
		}
	}
	p.getter, p.setter = getter, setter
}

// ConvertToAccessor turns data property p into an accessor with undefined
// getter and setter, keeping enumerable and configurable.
func (h *Heap) ConvertToAccessor(ref ObjectRef, p *Property) {
	contract.Assertf(p.kind == PropertyData, "property %q is not a data property", p.name.String())
	h.releaseSlotValue(p.value)
	p.value = Undefined
	p.kind = PropertyAccessor
	p.writable = false
	p.getter, p.setter = ObjectRef{}, ObjectRef{}
}

// ConvertToData turns accessor property p into a non-writable data property
// holding undefined, keeping enumerable and configurable.
func (h *Heap) ConvertToData(ref ObjectRef, p *Property) {
	contract.Assertf(p.kind == PropertyAccessor, "property %q is not an accessor", p.name.String())
	p.kind = PropertyData
	p.getter, p.setter = ObjectRef{}, ObjectRef{}
	p.value = Undefined
	p.writable = false
}

// OwnProperties returns the named properties of ref in creation order.
func (h *Heap) OwnProperties(ref ObjectRef) []*Property {
	o := h.Object(ref)
	props := make([]*Property, 0, len(o.properties))
	for _, p := range o.properties {
		if p.kind != PropertyInternal {
			props = append(props, p)
		}
	}
	return props
}

// releaseSlotValue drops a value stored in a property. Objects stored in
// properties are traced by the collector rather than counted.
func (h *Heap) releaseSlotValue(v Value) {
	if v.IsObject() {
		return
	}
	h.Release(v)
}

func (h *Heap) releasePropertyPayload(p *Property) {
	if p.kind == PropertyData {
		h.releaseSlotValue(p.value)
		p.value = Empty
	}
}
