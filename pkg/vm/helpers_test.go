package vm

import (
	"fmt"
	"strings"
	"testing"
)

// expectFatal runs fn and fails the test unless it aborts with a message
// containing want.
func expectFatal(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Errorf("Expected fatal error containing %q, got none", want)
			return
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, want) {
			t.Errorf("Expected fatal error containing %q, got %q", want, msg)
		}
	}()
	fn()
}

// manualGC disables automatic collection so tests decide when passes run.
func manualGC() GCOptions {
	return GCOptions{PromotionAge: 2}
}

// countArgs returns the number of arguments it received.
func countArgs(r *Realm, this Value, args []Value) (Completion, error) {
	return Normal(r.Heap().NewNumber(float64(len(args)))), nil
}

// returnThis returns a copy of its this value.
func returnThis(r *Realm, this Value, args []Value) (Completion, error) {
	return Normal(r.Heap().CopyValue(this, true)), nil
}

// testDescriptor is a small callable built-in with routines of several
// arities and one synthesized value property.
func testDescriptor() *BuiltinDescriptor {
	return &BuiltinDescriptor{
		ID:    BuiltinObject,
		Class: ClassFunction,
		Type:  ObjectTypeFunction,
		Names: []MagicString{MagicCreate, MagicDefineProperty, MagicKeys, MagicLength, MagicValueOf},
		Routines: map[MagicString]Routine{
			MagicCreate:         {Arity: 2, Fn: countArgs},
			MagicDefineProperty: {Arity: 3, Fn: countArgs},
			MagicKeys:           {Arity: 1, Fn: countArgs},
			MagicValueOf:        {Arity: 0, Fn: returnThis},
		},
		Synthesize: func(r *Realm, id MagicString) (Value, Attributes) {
			if id != MagicLength {
				panic("unexpected synthesized property " + id.String())
			}
			return r.Heap().NewNumber(1), Attributes{}
		},
		Call: countArgs,
	}
}

func newTestRealm(t *testing.T) *Realm {
	t.Helper()
	return NewRealm(manualGC(), testDescriptor())
}

// numberOf reads a number completion and releases it.
func numberOf(t *testing.T, r *Realm, c Completion, err error) float64 {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !c.IsNormal() || !c.Value().IsNumber() {
		t.Fatalf("Expected normal number completion, got %s %s", c.Kind(), r.Heap().Inspect(c.Value()))
	}
	f := r.Heap().Number(c.Value())
	r.Heap().ReleaseCompletion(c)
	return f
}
