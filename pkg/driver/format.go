package driver

import (
	"strconv"
	"strings"

	"ecmalite/pkg/vm"
)

const maxFormatDepth = 2

func (s *Session) formatCompletion(c vm.Completion) string {
	switch {
	case c.IsThrow():
		return "Uncaught " + s.describeError(c.Value())
	case c.IsExit():
		return "exit " + strconv.Itoa(c.Status())
	}
	return s.format(c.Value(), 0)
}

// describeError renders a thrown value as "name: message" when it has
// Error shape.
func (s *Session) describeError(v vm.Value) string {
	if !v.IsObject() {
		return s.format(v, 0)
	}
	ref := v.AsObject()
	h := s.realm.Heap()
	name := h.FindNamedProperty(ref, vm.MagicName.Name())
	msg := h.FindNamedProperty(ref, vm.MagicMessage.Name())
	if name == nil || msg == nil || !name.Value().IsString() || !msg.Value().IsString() {
		return s.format(v, 0)
	}
	return h.StringOf(name.Value()) + ": " + h.StringOf(msg.Value())
}

// format renders arrays and plain objects structurally and everything else
// through Heap.Inspect. It never instantiates lazy properties.
func (s *Session) format(v vm.Value, depth int) string {
	h := s.realm.Heap()
	if !v.IsObject() || depth >= maxFormatDepth {
		return h.Inspect(v)
	}
	o := h.Object(v.AsObject())
	if o.IsBuiltin() || o.IsCallable() {
		return h.Inspect(v)
	}

	props := h.OwnProperties(v.AsObject())
	parts := make([]string, 0, len(props))
	if o.Class() == vm.ClassArray {
		for _, p := range props {
			if _, err := strconv.Atoi(p.Name().String()); err == nil {
				parts = append(parts, s.formatProperty(p, depth))
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	for _, p := range props {
		parts = append(parts, p.Name().String()+": "+s.formatProperty(p, depth))
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (s *Session) formatProperty(p *vm.Property, depth int) string {
	if p.IsAccessor() {
		return "[Getter/Setter]"
	}
	return s.format(p.Value(), depth+1)
}
