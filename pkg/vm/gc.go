package vm

import (
	"github.com/golang/glog"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

type GCKind uint8

const (
	// GCMinor reclaims unreachable young objects. Old objects are assumed live;
	// only those flagged mayRefYounger are rescanned.
	GCMinor GCKind = iota
	// GCMajor traces the whole heap and reclaims every unreachable object,
	// cycles included.
	GCMajor
)

func (k GCKind) String() string {
	if k == GCMajor {
		return "major"
	}
	return "minor"
}

// Ref increments the external reference count of ref.
func (h *Heap) Ref(ref ObjectRef) {
	h.Object(ref).refs++
}

// Deref decrements the external reference count of ref. Reaching zero makes
// the object a candidate for the next collection; it is not freed here.
func (h *Heap) Deref(ref ObjectRef) {
	o := h.Object(ref)
	contract.Assertf(o.refs > 0, "reference count underflow on object %d", ref.index)
	o.refs--
}

// writeBarrier records that o now references target.
func (h *Heap) writeBarrier(o, target *Object) {
	if o.generation == GenerationOld && target.generation == GenerationYoung {
		o.mayRefYounger = true
	}
}

func (h *Heap) maybeCollect() {
	if h.collecting || h.opts.MinorThreshold <= 0 || h.allocsSinceMinor < h.opts.MinorThreshold {
		return
	}
	kind := GCMinor
	if h.opts.MajorEvery > 0 && h.minorsSinceMajor >= h.opts.MajorEvery {
		kind = GCMajor
	}
	h.Collect(kind)
}

// eachChild calls fn for every object directly reachable from o.
func (h *Heap) eachChild(o *Object, fn func(*Object)) {
	if !o.prototype.IsNull() {
		fn(h.Object(o.prototype))
	}
	for _, p := range o.properties {
		switch p.kind {
		case PropertyData:
			if p.value.IsObject() {
				fn(h.Object(p.value.AsObject()))
			}
		case PropertyAccessor:
			if !p.getter.IsNull() {
				fn(h.Object(p.getter))
			}
			if !p.setter.IsNull() {
				fn(h.Object(p.setter))
			}
		}
	}
}

func (h *Heap) refsYoung(o *Object) bool {
	found := false
	h.eachChild(o, func(c *Object) {
		if c.generation == GenerationYoung {
			found = true
		}
	})
	return found
}

// Collect runs one collection pass and returns the number of objects freed.
// Roots are the objects with a non-zero reference count.
func (h *Heap) Collect(kind GCKind) int {
	contract.Assertf(!h.collecting, "re-entrant collection")
	h.collecting = true
	defer func() { h.collecting = false }()

	major := kind == GCMajor
	freedBefore := h.stats.ObjectsFreed

	var stack []*Object
	push := func(o *Object) {
		if o.marked || (!major && o.generation == GenerationOld) {
			return
		}
		o.marked = true
		stack = append(stack, o)
	}
	for i := range h.objects {
		o := h.objects[i].obj
		if o == nil {
			continue
		}
		if o.refs > 0 {
			push(o)
		}
		if !major && o.generation == GenerationOld && o.mayRefYounger {
			h.eachChild(o, push)
		}
	}
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		h.eachChild(o, push)
	}

	var promoted []*Object
	for i := range h.objects {
		o := h.objects[i].obj
		if o == nil || (!major && o.generation == GenerationOld) {
			continue
		}
		if !o.marked {
			h.freeObject(o)
			continue
		}
		o.marked = false
		if o.generation == GenerationYoung {
			o.age++
			if int(o.age) >= h.opts.PromotionAge {
				o.generation = GenerationOld
				promoted = append(promoted, o)
			}
		}
	}

	// Recompute the dirty flags that may have changed: promoted objects may
	// point at young ones, and flagged objects may no longer do so.
	for i := range h.objects {
		o := h.objects[i].obj
		if o == nil || o.generation != GenerationOld {
			continue
		}
		if major || o.mayRefYounger {
			o.mayRefYounger = h.refsYoung(o)
		}
	}
	for _, o := range promoted {
		o.mayRefYounger = h.refsYoung(o)
	}

	freed := h.stats.ObjectsFreed - freedBefore
	h.allocsSinceMinor = 0
	if major {
		h.stats.MajorCollections++
		h.minorsSinceMajor = 0
		glog.V(1).Infof("gc: major pass freed %d objects, %d live", freed, h.stats.LiveObjects)
	} else {
		h.stats.MinorCollections++
		h.minorsSinceMajor++
		glog.V(2).Infof("gc: minor pass freed %d objects, %d promoted, %d live", freed, len(promoted), h.stats.LiveObjects)
	}
	return freed
}
