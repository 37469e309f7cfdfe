package vm

import (
	"testing"
)

// link stores child in a fresh property of parent.
func link(h *Heap, parent, child ObjectRef, name string) {
	p := h.CreateDataProperty(parent, NewName(name), true, true, true)
	h.SetDataValue(parent, p, OwnedObjectValue(child))
}

func TestGC_UnreachableYoungFreed(t *testing.T) {
	h := NewHeap(manualGC())
	kept := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	dropped := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	h.Deref(dropped)

	if freed := h.Collect(GCMinor); freed != 1 {
		t.Errorf("Expected 1 object freed, got %d", freed)
	}
	if !h.IsLive(kept) || h.IsLive(dropped) {
		t.Errorf("Wrong object reclaimed")
	}
	if s := h.Stats(); s.MinorCollections != 1 || s.LiveObjects != 1 {
		t.Errorf("Unexpected stats %+v", s)
	}
}

func TestGC_PropertyEdgesKeepChildren(t *testing.T) {
	h := NewHeap(manualGC())
	parent := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	child := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	link(h, parent, child, "child")
	h.Deref(child)

	h.Collect(GCMinor)
	if !h.IsLive(child) {
		t.Fatalf("Expected child reachable through property to survive")
	}
	if h.Object(child).RefCount() != 0 {
		t.Errorf("Expected property edge not to be counted, got %d", h.Object(child).RefCount())
	}

	h.Deref(parent)
	h.Collect(GCMinor)
	if h.IsLive(parent) || h.IsLive(child) {
		t.Errorf("Expected both objects reclaimed once the owner dropped")
	}
}

func TestGC_PrototypeEdgeKeepsPrototype(t *testing.T) {
	h := NewHeap(manualGC())
	proto := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	obj := h.AllocObject(proto, true, ObjectTypeGeneral)
	h.Deref(proto)
	h.Collect(GCMajor)
	if !h.IsLive(proto) {
		t.Errorf("Expected prototype to survive while its object is owned")
	}
	h.Deref(obj)
	if freed := h.Collect(GCMajor); freed != 2 {
		t.Errorf("Expected 2 objects freed, got %d", freed)
	}
}

func TestGC_MajorCollectsCycles(t *testing.T) {
	h := NewHeap(manualGC())
	a := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	b := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	link(h, a, b, "next")
	link(h, b, a, "next")

	// Promote both so that only a major pass can reclaim them.
	h.Collect(GCMinor)
	h.Collect(GCMinor)
	if h.Object(a).Generation() != GenerationOld || h.Object(b).Generation() != GenerationOld {
		t.Fatalf("Expected both objects promoted")
	}
	h.Deref(a)
	h.Deref(b)

	if freed := h.Collect(GCMinor); freed != 0 {
		t.Errorf("Expected minor pass to leave old objects alone, freed %d", freed)
	}
	if freed := h.Collect(GCMajor); freed != 2 {
		t.Errorf("Expected major pass to free the cycle, freed %d", freed)
	}
	if n := h.Stats().LiveObjects; n != 0 {
		t.Errorf("Expected empty heap, got %d live objects", n)
	}
}

func TestGC_Promotion(t *testing.T) {
	h := NewHeap(GCOptions{PromotionAge: 3})
	ref := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	for i := 0; i < 2; i++ {
		h.Collect(GCMinor)
		if h.Object(ref).Generation() != GenerationYoung {
			t.Fatalf("Promoted after %d passes, want 3", i+1)
		}
	}
	h.Collect(GCMinor)
	if h.Object(ref).Generation() != GenerationOld {
		t.Errorf("Expected promotion after 3 passes")
	}
}

func TestGC_PromotionAgeLimit(t *testing.T) {
	expectFatal(t, "promotion age 300", func() { NewHeap(GCOptions{PromotionAge: 300}) })

	h := NewHeap(GCOptions{PromotionAge: 255})
	ref := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	for i := 0; i < 254; i++ {
		h.Collect(GCMinor)
	}
	if h.Object(ref).Generation() != GenerationYoung {
		t.Fatalf("Promoted before 255 passes")
	}
	h.Collect(GCMinor)
	if h.Object(ref).Generation() != GenerationOld {
		t.Errorf("Expected promotion after 255 passes, got %s", h.Object(ref).Generation())
	}
	h.Deref(ref)
}

func TestGC_WriteBarrier(t *testing.T) {
	h := NewHeap(manualGC())
	parent := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	h.Collect(GCMinor)
	h.Collect(GCMinor)
	if h.Object(parent).Generation() != GenerationOld {
		t.Fatalf("Expected parent promoted")
	}

	child := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	link(h, parent, child, "child")
	if !h.Object(parent).MayRefYounger() {
		t.Fatalf("Expected old-to-young store to flag the parent")
	}
	h.Deref(child)

	// The only path to child is through the flagged old parent.
	h.Collect(GCMinor)
	if !h.IsLive(child) {
		t.Fatalf("Expected child to survive through the flagged parent")
	}
	if !h.Object(parent).MayRefYounger() {
		t.Errorf("Expected flag to stay while child is young")
	}

	h.Collect(GCMinor)
	if h.Object(child).Generation() != GenerationOld {
		t.Fatalf("Expected child promoted")
	}
	if h.Object(parent).MayRefYounger() {
		t.Errorf("Expected flag cleared once child is old")
	}
}

func TestGC_AutomaticMinor(t *testing.T) {
	h := NewHeap(GCOptions{MinorThreshold: 4, PromotionAge: 2})
	var garbage []ObjectRef
	for i := 0; i < 4; i++ {
		ref := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
		h.Deref(ref)
		garbage = append(garbage, ref)
	}
	if h.Stats().MinorCollections != 0 {
		t.Fatalf("Collected before reaching the threshold")
	}
	h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	if h.Stats().MinorCollections != 1 {
		t.Fatalf("Expected one automatic minor pass, got %d", h.Stats().MinorCollections)
	}
	for _, ref := range garbage {
		if h.IsLive(ref) {
			t.Errorf("Expected unowned object %d reclaimed", ref.index)
		}
	}
}

func TestGC_AutomaticMajor(t *testing.T) {
	h := NewHeap(GCOptions{MinorThreshold: 1, PromotionAge: 1, MajorEvery: 2})
	for i := 0; i < 4; i++ {
		h.Deref(h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral))
	}
	s := h.Stats()
	if s.MinorCollections != 2 || s.MajorCollections != 1 {
		t.Errorf("Expected 2 minor and 1 major pass, got %+v", s)
	}
}

func TestGC_DerefUnderflowIsFatal(t *testing.T) {
	h := NewHeap(manualGC())
	ref := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	h.Deref(ref)
	expectFatal(t, "reference count underflow", func() { h.Deref(ref) })
}

func TestGC_FreedObjectReleasesPayloads(t *testing.T) {
	h := NewHeap(manualGC())
	ref := h.AllocObject(ObjectRef{}, true, ObjectTypeGeneral)
	p := h.CreateDataProperty(ref, NewName("n"), true, true, true)
	n := h.NewNumber(42)
	h.SetDataValue(ref, p, n)
	h.Release(n)
	q := h.CreateDataProperty(ref, NewName("s"), true, true, true)
	s := h.NewString("some heap text")
	h.SetDataValue(ref, q, s)
	h.Release(s)

	h.Deref(ref)
	h.Collect(GCMajor)
	if st := h.Stats(); st.LiveNumbers != 0 || st.LiveStrings != 0 {
		t.Errorf("Expected payloads released with their object, got %+v", st)
	}
}
