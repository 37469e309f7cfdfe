package builtins

import (
	"ecmalite/pkg/vm"
)

func objectGetPrototypeOfImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.getPrototypeOf")
	if !ok {
		return c, nil
	}
	proto := r.Heap().Object(ref).Prototype()
	if proto.IsNull() {
		return vm.Normal(vm.Null), nil
	}
	return returnObject(r, proto)
}

func objectGetOwnPropertyDescriptorImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.getOwnPropertyDescriptor")
	if !ok {
		return c, nil
	}
	name, err := r.ToPropertyName(args[1])
	if err != nil {
		return vm.Completion{}, err
	}
	p := r.GetOwnProperty(ref, name)
	if p == nil {
		return vm.Normal(vm.Undefined), nil
	}
	return vm.Normal(r.FromPropertyDescriptor(p)), nil
}

func objectGetOwnPropertyNamesImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.getOwnPropertyNames")
	if !ok {
		return c, nil
	}
	return vm.Normal(namesArray(r, r.OwnProperties(ref))), nil
}

func objectCreateImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	proto, properties := args[0], args[1]
	if !proto.IsObject() && !proto.IsNull() {
		return r.ThrowTypeError("Object prototype may only be an Object or null"), nil
	}
	h := r.Heap()
	obj := r.NewObject()
	if proto.IsObject() {
		h.SetPrototype(obj, proto.AsObject())
	} else {
		h.SetPrototype(obj, vm.ObjectRef{})
	}
	if !properties.IsUndefined() {
		c, err := defineProperties(r, obj, properties)
		if err != nil || !c.IsNormal() {
			h.Deref(obj)
			return c, err
		}
	}
	return vm.Normal(vm.OwnedObjectValue(obj)), nil
}

func objectDefinePropertyImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.defineProperty")
	if !ok {
		return c, nil
	}
	name, err := r.ToPropertyName(args[1])
	if err != nil {
		return vm.Completion{}, err
	}
	desc, c, err := r.ToPropertyDescriptor(args[2])
	if err != nil || !c.IsNormal() {
		return c, err
	}
	defer r.Heap().ReleaseDescriptor(&desc)
	if c := r.DefineOwnProperty(ref, name, &desc, true); !c.IsNormal() {
		return c, nil
	}
	return returnObject(r, ref)
}

func objectDefinePropertiesImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.defineProperties")
	if !ok {
		return c, nil
	}
	c, err := defineProperties(r, ref, args[1])
	if err != nil || !c.IsNormal() {
		return c, err
	}
	return returnObject(r, ref)
}

// defineProperties converts every own enumerable property of properties into
// a descriptor before defining any of them on target.
func defineProperties(r *vm.Realm, target vm.ObjectRef, properties vm.Value) (vm.Completion, error) {
	h := r.Heap()
	props, c, err := toObject(r, properties)
	if err != nil || !c.IsNormal() {
		return c, err
	}

	type pending struct {
		name vm.Name
		desc vm.PropertyDescriptor
	}
	var list []pending
	defer func() {
		for i := range list {
			h.ReleaseDescriptor(&list[i].desc)
		}
	}()

	for _, p := range r.OwnProperties(props) {
		if !p.Enumerable() {
			continue
		}
		name := p.Name()
		got, err := r.Get(props, name)
		if err != nil || !got.IsNormal() {
			return got, err
		}
		desc, c, err := r.ToPropertyDescriptor(got.Value())
		h.ReleaseCompletion(got)
		if err != nil || !c.IsNormal() {
			return c, err
		}
		list = append(list, pending{name: name, desc: desc})
	}
	for i := range list {
		if c := r.DefineOwnProperty(target, list[i].name, &list[i].desc, true); !c.IsNormal() {
			return c, nil
		}
	}
	return vm.Normal(vm.Undefined), nil
}

func objectSealImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.seal")
	if !ok {
		return c, nil
	}
	for _, p := range r.OwnProperties(ref) {
		p.SetConfigurable(false)
	}
	r.Heap().SetExtensible(ref, false)
	return returnObject(r, ref)
}

func objectFreezeImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.freeze")
	if !ok {
		return c, nil
	}
	for _, p := range r.OwnProperties(ref) {
		if p.IsData() {
			p.SetWritable(false)
		}
		p.SetConfigurable(false)
	}
	r.Heap().SetExtensible(ref, false)
	return returnObject(r, ref)
}

func objectPreventExtensionsImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.preventExtensions")
	if !ok {
		return c, nil
	}
	r.Heap().SetExtensible(ref, false)
	return returnObject(r, ref)
}

func objectIsSealedImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.isSealed")
	if !ok {
		return c, nil
	}
	for _, p := range r.OwnProperties(ref) {
		if p.Configurable() {
			return vm.Normal(vm.False), nil
		}
	}
	return vm.Normal(vm.BooleanValue(!r.Heap().Object(ref).Extensible())), nil
}

func objectIsFrozenImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.isFrozen")
	if !ok {
		return c, nil
	}
	for _, p := range r.OwnProperties(ref) {
		if p.Configurable() || (p.IsData() && p.Writable()) {
			return vm.Normal(vm.False), nil
		}
	}
	return vm.Normal(vm.BooleanValue(!r.Heap().Object(ref).Extensible())), nil
}

func objectIsExtensibleImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.isExtensible")
	if !ok {
		return c, nil
	}
	return vm.Normal(vm.BooleanValue(r.Heap().Object(ref).Extensible())), nil
}

func objectKeysImpl(r *vm.Realm, this vm.Value, args []vm.Value) (vm.Completion, error) {
	ref, c, ok := requireObject(r, args[0], "Object.keys")
	if !ok {
		return c, nil
	}
	var keys []*vm.Property
	for _, p := range r.OwnProperties(ref) {
		if p.Enumerable() {
			keys = append(keys, p)
		}
	}
	return vm.Normal(namesArray(r, keys)), nil
}
