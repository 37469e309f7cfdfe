package vm

import (
	"math"

	"github.com/dop251/goja/unistring"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

// ObjectRef addresses an object slot in the Heap. The zero ObjectRef is the
// null reference. A ref whose generation no longer matches its slot refers to
// a reclaimed object; using it is fatal.
type ObjectRef struct {
	index uint32
	gen   uint32
}

func (r ObjectRef) IsNull() bool { return r.gen == 0 }

// NumberRef addresses a boxed number cell.
type NumberRef struct {
	index uint32
	gen   uint32
}

// StringRef addresses a reference-counted heap string.
type StringRef struct {
	index uint32
	gen   uint32
}

type objectSlot struct {
	obj *Object // nil when the slot is free
	gen uint32
}

type numberCell struct {
	v    float64
	gen  uint32
	live bool
}

type stringCell struct {
	s    unistring.String
	refs uint32
	gen  uint32
}

// GCOptions tunes automatic collection.
type GCOptions struct {
	MinorThreshold int // object allocations between automatic minor passes, 0 disables
	PromotionAge   int // minor passes survived before promotion
	MajorEvery     int // minor passes between major passes, 0 disables
}

func DefaultGCOptions() GCOptions {
	return GCOptions{MinorThreshold: 256, PromotionAge: 2, MajorEvery: 8}
}

// GCStats reports collector counters and live arena populations.
type GCStats struct {
	MinorCollections int
	MajorCollections int
	ObjectsFreed     int
	LiveObjects      int
	LiveNumbers      int
	LiveStrings      int
}

// Heap owns every object, number cell and heap string of one realm.
// It is not safe for concurrent use.
type Heap struct {
	objects     []objectSlot
	freeObjects []uint32
	numbers     []numberCell
	freeNumbers []uint32
	strings     []stringCell
	freeStrings []uint32

	opts             GCOptions
	allocsSinceMinor int
	minorsSinceMajor int
	collecting       bool
	stats            GCStats
}

// NewHeap creates an empty heap with the given collection options
func NewHeap(opts GCOptions) *Heap {
	if opts.PromotionAge <= 0 {
		opts.PromotionAge = 1
	}
	contract.Assertf(opts.PromotionAge <= math.MaxUint8, "promotion age %d exceeds the object age counter", opts.PromotionAge)
	return &Heap{
		objects: make([]objectSlot, 0, 64),
		numbers: make([]numberCell, 0, 64),
		opts:    opts,
	}
}

func nextGen(g uint32) uint32 {
	g++
	if g == 0 {
		g = 1
	}
	return g
}

// --- numbers ---

// AllocNumber boxes f in a fresh cell owned by the caller.
func (h *Heap) AllocNumber(f float64) NumberRef {
	var idx uint32
	if n := len(h.freeNumbers); n > 0 {
		idx = h.freeNumbers[n-1]
		h.freeNumbers = h.freeNumbers[:n-1]
	} else {
		idx = uint32(len(h.numbers))
		h.numbers = append(h.numbers, numberCell{gen: 1})
	}
	c := &h.numbers[idx]
	c.v = f
	c.live = true
	h.stats.LiveNumbers++
	return NumberRef{index: idx, gen: c.gen}
}

func (h *Heap) numberCell(ref NumberRef) *numberCell {
	contract.Assertf(int(ref.index) < len(h.numbers), "number handle %d out of range", ref.index)
	c := &h.numbers[ref.index]
	contract.Assertf(c.live && c.gen == ref.gen, "use of released number cell %d", ref.index)
	return c
}

func (h *Heap) freeNumber(ref NumberRef) {
	contract.Assertf(int(ref.index) < len(h.numbers), "number handle %d out of range", ref.index)
	c := &h.numbers[ref.index]
	contract.Assertf(c.live && c.gen == ref.gen, "double release of number cell %d", ref.index)
	c.live = false
	c.gen = nextGen(c.gen)
	h.freeNumbers = append(h.freeNumbers, ref.index)
	h.stats.LiveNumbers--
}

// --- strings ---

func (h *Heap) allocString(s unistring.String) StringRef {
	var idx uint32
	if n := len(h.freeStrings); n > 0 {
		idx = h.freeStrings[n-1]
		h.freeStrings = h.freeStrings[:n-1]
	} else {
		idx = uint32(len(h.strings))
		h.strings = append(h.strings, stringCell{gen: 1})
	}
	c := &h.strings[idx]
	c.s = s
	c.refs = 1
	h.stats.LiveStrings++
	return StringRef{index: idx, gen: c.gen}
}

func (h *Heap) stringCell(ref StringRef) *stringCell {
	contract.Assertf(int(ref.index) < len(h.strings), "string handle %d out of range", ref.index)
	c := &h.strings[ref.index]
	contract.Assertf(c.refs > 0 && c.gen == ref.gen, "use of released heap string %d", ref.index)
	return c
}

func (h *Heap) refString(ref StringRef) {
	h.stringCell(ref).refs++
}

func (h *Heap) derefString(ref StringRef) {
	contract.Assertf(int(ref.index) < len(h.strings), "string handle %d out of range", ref.index)
	c := &h.strings[ref.index]
	contract.Assertf(c.refs > 0 && c.gen == ref.gen, "double release of heap string %d", ref.index)
	c.refs--
	if c.refs == 0 {
		c.s = ""
		c.gen = nextGen(c.gen)
		h.freeStrings = append(h.freeStrings, ref.index)
		h.stats.LiveStrings--
	}
}

// --- objects ---

// AllocObject creates an object with a reference count of one; the caller owns
// that reference. An automatic minor collection may run first, so every
// object the caller still needs (proto included) must already be owned.
func (h *Heap) AllocObject(proto ObjectRef, extensible bool, typ ObjectType) ObjectRef {
	h.maybeCollect()
	if !proto.IsNull() {
		h.Object(proto)
	}
	var idx uint32
	if n := len(h.freeObjects); n > 0 {
		idx = h.freeObjects[n-1]
		h.freeObjects = h.freeObjects[:n-1]
	} else {
		idx = uint32(len(h.objects))
		h.objects = append(h.objects, objectSlot{gen: 1})
	}
	slot := &h.objects[idx]
	ref := ObjectRef{index: idx, gen: slot.gen}
	slot.obj = &Object{
		ref:        ref,
		typ:        typ,
		extensible: extensible,
		prototype:  proto,
		refs:       1,
		generation: GenerationYoung,
	}
	h.stats.LiveObjects++
	h.allocsSinceMinor++
	return ref
}

// Object resolves ref. A null or stale ref is fatal.
func (h *Heap) Object(ref ObjectRef) *Object {
	contract.Assertf(!ref.IsNull(), "dereferencing null object ref")
	contract.Assertf(int(ref.index) < len(h.objects), "object handle %d out of range", ref.index)
	slot := &h.objects[ref.index]
	contract.Assertf(slot.obj != nil && slot.gen == ref.gen, "use of reclaimed object %d (gen %d)", ref.index, ref.gen)
	return slot.obj
}

// IsLive reports whether ref still names an unreclaimed object.
func (h *Heap) IsLive(ref ObjectRef) bool {
	if ref.IsNull() || int(ref.index) >= len(h.objects) {
		return false
	}
	slot := h.objects[ref.index]
	return slot.obj != nil && slot.gen == ref.gen
}

func (h *Heap) freeObject(o *Object) {
	for _, p := range o.properties {
		h.releasePropertyPayload(p)
	}
	o.properties = nil
	slot := &h.objects[o.ref.index]
	slot.obj = nil
	slot.gen = nextGen(slot.gen)
	h.freeObjects = append(h.freeObjects, o.ref.index)
	h.stats.LiveObjects--
	h.stats.ObjectsFreed++
}

// Stats returns a snapshot of the collector counters.
func (h *Heap) Stats() GCStats { return h.stats }
