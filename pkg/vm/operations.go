package vm

import (
	"strconv"
)

// Flag is a tri-state descriptor field.
type Flag uint8

const (
	FlagNotSet Flag = iota
	FlagFalse
	FlagTrue
)

func ToFlag(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

func (f Flag) Bool() bool { return f == FlagTrue }

// PropertyDescriptor is the Property Descriptor specification type. Getter
// and Setter hold Undefined or a callable object.
type PropertyDescriptor struct {
	Value    Value
	HasValue bool

	Getter, Setter Value
	HasGet, HasSet bool

	Writable, Enumerable, Configurable Flag
}

func (d *PropertyDescriptor) IsAccessor() bool { return d.HasGet || d.HasSet }
func (d *PropertyDescriptor) IsData() bool     { return d.HasValue || d.Writable != FlagNotSet }
func (d *PropertyDescriptor) IsGeneric() bool  { return !d.IsAccessor() && !d.IsData() }

// ReleaseDescriptor releases the values owned by d.
func (h *Heap) ReleaseDescriptor(d *PropertyDescriptor) {
	if d.HasValue {
		h.Release(d.Value)
	}
	if d.HasGet {
		h.Release(d.Getter)
	}
	if d.HasSet {
		h.Release(d.Setter)
	}
	*d = PropertyDescriptor{}
}

func accessorRef(v Value) ObjectRef {
	if v.IsObject() {
		return v.AsObject()
	}
	return ObjectRef{}
}

// alias is a borrowed Value for an object the caller keeps alive. It must
// not be released.
func alias(ref ObjectRef) Value {
	if ref.IsNull() {
		return Undefined
	}
	return OwnedObjectValue(ref)
}

// GetOwnProperty returns the own property name of ref, materializing a
// pending built-in property on a miss. Returns nil when there is none.
func (r *Realm) GetOwnProperty(ref ObjectRef, name Name) *Property {
	if p := r.heap.FindNamedProperty(ref, name); p != nil {
		return p
	}
	return r.tryInstantiate(ref, name)
}

// GetProperty searches ref and its prototype chain. It returns the property
// and the object holding it.
func (r *Realm) GetProperty(ref ObjectRef, name Name) (*Property, ObjectRef) {
	for cur := ref; !cur.IsNull(); cur = r.heap.Object(cur).prototype {
		if p := r.GetOwnProperty(cur, name); p != nil {
			return p, cur
		}
	}
	return nil, ObjectRef{}
}

func (r *Realm) HasProperty(ref ObjectRef, name Name) bool {
	p, _ := r.GetProperty(ref, name)
	return p != nil
}

// Get implements [[Get]]. The caller owns the completion.
func (r *Realm) Get(ref ObjectRef, name Name) (Completion, error) {
	p, _ := r.GetProperty(ref, name)
	switch {
	case p == nil:
		return Normal(Undefined), nil
	case p.IsData():
		return Normal(r.heap.CopyValue(p.value, true)), nil
	case p.getter.IsNull():
		return Normal(Undefined), nil
	}
	return r.Call(alias(p.getter), alias(ref), nil)
}

func (r *Realm) reject(throw bool, msg string) Completion {
	if throw {
		return r.ThrowTypeError(msg)
	}
	return Normal(False)
}

// canPut implements [[CanPut]].
func (r *Realm) canPut(ref ObjectRef, name Name) bool {
	if p := r.GetOwnProperty(ref, name); p != nil {
		if p.IsAccessor() {
			return !p.setter.IsNull()
		}
		return p.writable
	}
	o := r.heap.Object(ref)
	if o.prototype.IsNull() {
		return o.extensible
	}
	inherited, _ := r.GetProperty(o.prototype, name)
	switch {
	case inherited == nil:
		return o.extensible
	case inherited.IsAccessor():
		return !inherited.setter.IsNull()
	case !o.extensible:
		return false
	}
	return inherited.writable
}

// Put implements [[Put]]. The caller keeps ownership of v.
func (r *Realm) Put(ref ObjectRef, name Name, v Value, throw bool) (Completion, error) {
	h := r.heap
	if !r.canPut(ref, name) {
		return r.reject(throw, "cannot assign to read only property '"+name.String()+"'"), nil
	}
	if own := r.GetOwnProperty(ref, name); own != nil && own.IsData() {
		h.SetDataValue(ref, own, v)
		return Normal(True), nil
	}
	if p, _ := r.GetProperty(ref, name); p != nil && p.IsAccessor() {
		c, err := r.Call(alias(p.setter), alias(ref), []Value{v})
		if err != nil || !c.IsNormal() {
			return c, err
		}
		h.ReleaseCompletion(c)
		return Normal(True), nil
	}
	p := h.CreateDataProperty(ref, name, true, true, true)
	h.SetDataValue(ref, p, v)
	return Normal(True), nil
}

// Delete implements [[Delete]]. Deleting a pending built-in property
// materializes it first, so it is never synthesized again.
func (r *Realm) Delete(ref ObjectRef, name Name, throw bool) Completion {
	p := r.GetOwnProperty(ref, name)
	if p == nil {
		return Normal(True)
	}
	if p.configurable {
		r.heap.DeleteProperty(ref, p)
		return Normal(True)
	}
	return r.reject(throw, "cannot delete property '"+name.String()+"'")
}

func (r *Realm) descriptorMatches(p *Property, d *PropertyDescriptor) bool {
	if d.HasValue && (!p.IsData() || !r.SameValue(d.Value, p.value)) {
		return false
	}
	if d.Writable != FlagNotSet && (!p.IsData() || d.Writable.Bool() != p.writable) {
		return false
	}
	if d.HasGet && (!p.IsAccessor() || accessorRef(d.Getter) != p.getter) {
		return false
	}
	if d.HasSet && (!p.IsAccessor() || accessorRef(d.Setter) != p.setter) {
		return false
	}
	if d.Enumerable != FlagNotSet && d.Enumerable.Bool() != p.enumerable {
		return false
	}
	if d.Configurable != FlagNotSet && d.Configurable.Bool() != p.configurable {
		return false
	}
	return true
}

// DefineOwnProperty implements [[DefineOwnProperty]]. The caller keeps
// ownership of the values in d.
func (r *Realm) DefineOwnProperty(ref ObjectRef, name Name, d *PropertyDescriptor, throw bool) Completion {
	h := r.heap
	current := r.GetOwnProperty(ref, name)
	if current == nil {
		if !h.Object(ref).extensible {
			return r.reject(throw, "cannot define property '"+name.String()+"', object is not extensible")
		}
		if d.IsAccessor() {
			h.CreateAccessorProperty(ref, name, accessorRef(d.Getter), accessorRef(d.Setter), d.Enumerable.Bool(), d.Configurable.Bool())
			return Normal(True)
		}
		p := h.CreateDataProperty(ref, name, d.Writable.Bool(), d.Enumerable.Bool(), d.Configurable.Bool())
		v := Undefined
		if d.HasValue {
			v = d.Value
		}
		h.SetDataValue(ref, p, v)
		return Normal(True)
	}

	if r.descriptorMatches(current, d) {
		return Normal(True)
	}
	redefine := "cannot redefine property '" + name.String() + "'"
	if !current.configurable {
		if d.Configurable == FlagTrue {
			return r.reject(throw, redefine)
		}
		if d.Enumerable != FlagNotSet && d.Enumerable.Bool() != current.enumerable {
			return r.reject(throw, redefine)
		}
	}
	switch {
	case d.IsGeneric():
	case current.IsData() != d.IsData():
		if !current.configurable {
			return r.reject(throw, redefine)
		}
		if current.IsData() {
			h.ConvertToAccessor(ref, current)
		} else {
			h.ConvertToData(ref, current)
		}
	case current.IsData():
		if !current.configurable && !current.writable {
			if d.Writable == FlagTrue {
				return r.reject(throw, redefine)
			}
			if d.HasValue && !r.SameValue(d.Value, current.value) {
				return r.reject(throw, redefine)
			}
		}
	default:
		if !current.configurable {
			if d.HasSet && accessorRef(d.Setter) != current.setter {
				return r.reject(throw, redefine)
			}
			if d.HasGet && accessorRef(d.Getter) != current.getter {
				return r.reject(throw, redefine)
			}
		}
	}

	if d.HasValue {
		h.SetDataValue(ref, current, d.Value)
	}
	if d.Writable != FlagNotSet {
		current.writable = d.Writable.Bool()
	}
	if d.HasGet || d.HasSet {
		getter, setter := current.getter, current.setter
		if d.HasGet {
			getter = accessorRef(d.Getter)
		}
		if d.HasSet {
			setter = accessorRef(d.Setter)
		}
		h.SetAccessorPair(ref, current, getter, setter)
	}
	if d.Enumerable != FlagNotSet {
		current.enumerable = d.Enumerable.Bool()
	}
	if d.Configurable != FlagNotSet {
		current.configurable = d.Configurable.Bool()
	}
	return Normal(True)
}

// OwnProperties lists the own properties of ref after materializing every
// pending built-in property.
func (r *Realm) OwnProperties(ref ObjectRef) []*Property {
	r.instantiateAll(ref)
	return r.heap.OwnProperties(ref)
}

// getField reads an optional field of a descriptor object. The value is
// owned by the caller when present is true.
func (r *Realm) getField(ref ObjectRef, field MagicString) (v Value, present bool, c Completion, err error) {
	name := field.Name()
	if !r.HasProperty(ref, name) {
		return Undefined, false, Normal(Undefined), nil
	}
	c, err = r.Get(ref, name)
	if err != nil || !c.IsNormal() {
		return Undefined, false, c, err
	}
	return c.Value(), true, c, nil
}

// ToPropertyDescriptor converts a descriptor object. On a normal completion
// the caller owns the values in the returned descriptor; otherwise the
// completion carries the thrown error.
func (r *Realm) ToPropertyDescriptor(v Value) (PropertyDescriptor, Completion, error) {
	var d PropertyDescriptor
	if !v.IsObject() {
		return d, r.ThrowTypeError("property description must be an object"), nil
	}
	h := r.heap
	ref := v.AsObject()
	fail := func(c Completion, err error) (PropertyDescriptor, Completion, error) {
		h.ReleaseDescriptor(&d)
		return PropertyDescriptor{}, c, err
	}

	flags := [...]struct {
		field MagicString
		dst   *Flag
	}{
		{MagicEnumerable, &d.Enumerable},
		{MagicConfigurable, &d.Configurable},
	}
	for _, f := range flags {
		fv, ok, c, err := r.getField(ref, f.field)
		if err != nil || !c.IsNormal() {
			return fail(c, err)
		}
		if ok {
			*f.dst = ToFlag(r.ToBoolean(fv))
			h.Release(fv)
		}
	}

	fv, ok, c, err := r.getField(ref, MagicValue)
	if err != nil || !c.IsNormal() {
		return fail(c, err)
	}
	d.Value, d.HasValue = fv, ok

	fv, ok, c, err = r.getField(ref, MagicWritable)
	if err != nil || !c.IsNormal() {
		return fail(c, err)
	}
	if ok {
		d.Writable = ToFlag(r.ToBoolean(fv))
		h.Release(fv)
	}

	accessors := [...]struct {
		field MagicString
		dst   *Value
		has   *bool
	}{
		{MagicGet, &d.Getter, &d.HasGet},
		{MagicSet, &d.Setter, &d.HasSet},
	}
	for _, a := range accessors {
		fv, ok, c, err := r.getField(ref, a.field)
		if err != nil || !c.IsNormal() {
			return fail(c, err)
		}
		if !ok {
			continue
		}
		*a.dst, *a.has = fv, true
		if !fv.IsUndefined() && !(fv.IsObject() && h.Object(fv.AsObject()).IsCallable()) {
			return fail(r.ThrowTypeError("getter or setter must be a function"), nil)
		}
	}

	if d.IsAccessor() && d.IsData() {
		return fail(r.ThrowTypeError("property descriptor cannot be both accessor and data"), nil)
	}
	return d, Normal(Undefined), nil
}

// FromPropertyDescriptor builds a descriptor object for p. The caller owns
// the result.
func (r *Realm) FromPropertyDescriptor(p *Property) Value {
	h := r.heap
	ref := r.NewObject()
	define := func(field MagicString, v Value) {
		slot := h.CreateDataProperty(ref, field.Name(), true, true, true)
		h.SetDataValue(ref, slot, v)
	}
	if p.IsData() {
		define(MagicValue, p.value)
		define(MagicWritable, BooleanValue(p.writable))
	} else {
		define(MagicGet, alias(p.getter))
		define(MagicSet, alias(p.setter))
	}
	define(MagicEnumerable, BooleanValue(p.enumerable))
	define(MagicConfigurable, BooleanValue(p.configurable))
	return OwnedObjectValue(ref)
}

// NewObject allocates a plain object inheriting from Object.prototype when
// the realm has it. The caller owns the reference.
func (r *Realm) NewObject() ObjectRef {
	var proto ObjectRef
	if e, ok := r.builtins[BuiltinObjectPrototype]; ok && !r.torndown {
		proto = e.object
	}
	return r.heap.NewObject(proto, ClassObject)
}

// NewArray allocates an Array-class object holding copies of values at
// indices 0..n-1. The caller owns the reference and keeps ownership of values.
func (r *Realm) NewArray(values []Value) ObjectRef {
	h := r.heap
	ref := h.AllocObject(ObjectRef{}, true, ObjectTypeArray)
	h.SetClass(ref, ClassArray)
	for i, v := range values {
		p := h.CreateDataProperty(ref, NewName(strconv.Itoa(i)), true, true, true)
		h.SetDataValue(ref, p, v)
	}
	length := h.CreateDataProperty(ref, MagicLength.Name(), true, false, false)
	n := h.NewNumber(float64(len(values)))
	h.SetDataValue(ref, length, n)
	h.Release(n)
	return ref
}

// NewTypeError creates a TypeError-shaped object. The caller owns it.
func (r *Realm) NewTypeError(msg string) Value {
	h := r.heap
	ref := r.NewObject()
	h.SetClass(ref, ClassError)
	name := h.CreateDataProperty(ref, MagicName.Name(), true, false, true)
	h.SetDataValue(ref, name, MagicTypeError.Value())
	message := h.CreateDataProperty(ref, MagicMessage.Name(), true, false, true)
	m := h.NewString(msg)
	h.SetDataValue(ref, message, m)
	h.Release(m)
	return OwnedObjectValue(ref)
}

// ThrowTypeError returns a throw completion carrying a new TypeError.
func (r *Realm) ThrowTypeError(msg string) Completion {
	return Throw(r.NewTypeError(msg))
}
