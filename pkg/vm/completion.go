package vm

import "fmt"

type CompletionKind uint8

const (
	CompletionNormal CompletionKind = iota
	CompletionThrow
	CompletionReturn
	CompletionExit
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionNormal:
		return "normal"
	case CompletionThrow:
		return "throw"
	case CompletionReturn:
		return "return"
	case CompletionExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Completion is the result of every evaluating operation. Whoever receives a
// Completion owns its payload and must hand it on or release it with
// Heap.ReleaseCompletion.
type Completion struct {
	kind   CompletionKind
	value  Value
	status int // exit status, CompletionExit only
}

// Normal wraps a value produced by ordinary evaluation; the caller owns v.
func Normal(v Value) Completion { return Completion{kind: CompletionNormal, value: v} }

// Throw wraps a thrown value; the caller owns v.
func Throw(v Value) Completion { return Completion{kind: CompletionThrow, value: v} }

// Return wraps a function return value; the caller owns v.
func Return(v Value) Completion { return Completion{kind: CompletionReturn, value: v} }

// Exit signals script termination with the given status.
func Exit(status int) Completion {
	return Completion{kind: CompletionExit, value: Undefined, status: status}
}

func (c Completion) Kind() CompletionKind { return c.kind }
func (c Completion) IsNormal() bool       { return c.kind == CompletionNormal }
func (c Completion) IsThrow() bool        { return c.kind == CompletionThrow }
func (c Completion) IsReturn() bool       { return c.kind == CompletionReturn }
func (c Completion) IsExit() bool         { return c.kind == CompletionExit }

// Value returns the payload without transferring ownership.
func (c Completion) Value() Value { return c.value }

// Status returns the exit status of an Exit completion.
func (c Completion) Status() int {
	if c.kind != CompletionExit {
		panic(fmt.Sprintf("completion %s has no exit status", c.kind))
	}
	return c.status
}

// ReleaseCompletion releases the payload of c.
func (h *Heap) ReleaseCompletion(c Completion) {
	h.Release(c.value)
}
