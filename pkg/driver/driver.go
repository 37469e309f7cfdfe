package driver

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"

	"ecmalite/pkg/builtins"
	"ecmalite/pkg/config"
	"ecmalite/pkg/errors"
	"ecmalite/pkg/vm"
)

// Session is a persistent inspection session over one realm. Lazily
// instantiated properties, collector state and generations carry over
// between commands.
type Session struct {
	cfg   *config.Config
	realm *vm.Realm
}

// NewSession creates a realm with the standard built-ins configured by cfg.
func NewSession(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Session{cfg: cfg, realm: builtins.NewRealm(cfg.GCOptions())}
}

func (s *Session) Realm() *vm.Realm { return s.realm }

// Close tears the realm down and reports what was left alive.
func (s *Session) Close() vm.GCStats {
	s.realm.Teardown()
	stats := s.realm.Heap().Stats()
	glog.V(1).Infof("session closed: %+v", stats)
	return stats
}

const usage = `commands:
  builtins                          list built-ins and their pending counts
  get <builtin> <name>              read a property, instantiating it if needed
  call <builtin> <routine> [args]   dispatch a routine; args are undefined, null,
                                    true, false, numbers, "strings", {} or @builtin
  mask <builtin>                    show the pending instantiation mask
  gc [minor|major]                  run a collection pass
  stats                             show collector counters`

// Exec runs one command line and returns its printable result.
func (s *Session) Exec(line string) (string, error) {
	fields, err := tokenize(line)
	if err != nil {
		return "", err
	}
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "help":
		return usage, nil
	case "builtins":
		return s.listBuiltins(), nil
	case "get":
		if len(args) != 2 {
			return "", fmt.Errorf("usage: get <builtin> <name>")
		}
		return s.get(args[0], args[1])
	case "call":
		if len(args) < 2 {
			return "", fmt.Errorf("usage: call <builtin> <routine> [args]")
		}
		return s.call(args[0], args[1], args[2:])
	case "mask":
		if len(args) != 1 {
			return "", fmt.Errorf("usage: mask <builtin>")
		}
		return s.mask(args[0])
	case "gc":
		return s.collect(args)
	case "stats":
		return fmt.Sprintf("%+v", s.realm.Heap().Stats()), nil
	}
	return "", fmt.Errorf("unknown command %q, try help", cmd)
}

// DisplayResult prints out or err to w. Returns true if there was no error.
func (s *Session) DisplayResult(w io.Writer, out string, err error) bool {
	if err != nil {
		var engineErr errors.EngineError
		if errors.As(err, &engineErr) {
			errors.DisplayErrors(w, []errors.EngineError{engineErr})
		} else {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
		return false
	}
	if out != "" {
		fmt.Fprintln(w, out)
	}
	return true
}

func (s *Session) builtin(name string) (vm.BuiltinID, error) {
	id, ok := builtins.Lookup(name)
	if !ok {
		return vm.BuiltinNone, fmt.Errorf("unknown built-in %q", name)
	}
	return id, nil
}

func (s *Session) listBuiltins() string {
	var b strings.Builder
	for i, id := range s.realm.Builtins() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-18s %d pending", id, s.realm.PendingCount(s.realm.Builtin(id)))
	}
	return b.String()
}

func (s *Session) get(builtinName, prop string) (string, error) {
	id, err := s.builtin(builtinName)
	if err != nil {
		return "", err
	}
	c, err := s.realm.Get(s.realm.Builtin(id), vm.NewName(prop))
	if err != nil {
		return "", err
	}
	defer s.realm.Heap().ReleaseCompletion(c)
	return s.formatCompletion(c), nil
}

func (s *Session) call(builtinName, routine string, tokens []string) (string, error) {
	id, err := s.builtin(builtinName)
	if err != nil {
		return "", err
	}
	rid := vm.LookupMagic(routine)
	p := s.realm.GetOwnProperty(s.realm.Builtin(id), vm.NewName(routine))
	if rid == vm.MagicNone || p == nil || !p.IsData() || !p.Value().IsObject() {
		return "", fmt.Errorf("%s has no routine %q", id, routine)
	}
	if bid, _, ok := s.realm.RoutineOf(p.Value().AsObject()); !ok || bid != id {
		return "", fmt.Errorf("%s.%s is not a built-in routine", id, routine)
	}

	h := s.realm.Heap()
	args := make([]vm.Value, 0, len(tokens))
	defer func() {
		for _, v := range args {
			h.Release(v)
		}
	}()
	for _, tok := range tokens {
		v, err := s.parseArg(tok)
		if err != nil {
			return "", err
		}
		args = append(args, v)
	}

	c, err := s.realm.Dispatch(id, rid, vm.OwnedObjectValue(s.realm.Builtin(id)), args)
	if err != nil {
		return "", err
	}
	defer h.ReleaseCompletion(c)
	return s.formatCompletion(c), nil
}

func (s *Session) mask(builtinName string) (string, error) {
	id, err := s.builtin(builtinName)
	if err != nil {
		return "", err
	}
	ref := s.realm.Builtin(id)
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d pending", id, s.realm.PendingCount(ref))
	for w := 0; w < 4; w++ {
		if s.realm.Heap().GetInternalProperty(ref, vm.InternalPendingMask+vm.InternalKind(w)) == nil {
			break
		}
		fmt.Fprintf(&b, " [%d]=%#x", w, s.realm.PendingMask(ref, w))
	}
	return b.String(), nil
}

func (s *Session) collect(args []string) (string, error) {
	kind := vm.GCMinor
	if len(args) > 0 {
		switch args[0] {
		case "minor":
		case "major":
			kind = vm.GCMajor
		default:
			return "", fmt.Errorf("usage: gc [minor|major]")
		}
	}
	freed := s.realm.Heap().Collect(kind)
	return fmt.Sprintf("%s collection freed %d objects", kind, freed), nil
}

// parseArg turns a command token into a value owned by the caller.
func (s *Session) parseArg(tok string) (vm.Value, error) {
	h := s.realm.Heap()
	switch tok {
	case "undefined":
		return vm.Undefined, nil
	case "null":
		return vm.Null, nil
	case "true":
		return vm.True, nil
	case "false":
		return vm.False, nil
	case "{}":
		return vm.OwnedObjectValue(s.realm.NewObject()), nil
	}
	switch {
	case strings.HasPrefix(tok, "@"):
		id, err := s.builtin(tok[1:])
		if err != nil {
			return vm.Undefined, err
		}
		return s.realm.GetBuiltin(id), nil
	case strings.HasPrefix(tok, `"`):
		text, err := strconv.Unquote(tok)
		if err != nil {
			return vm.Undefined, fmt.Errorf("bad string literal %s", tok)
		}
		return h.NewString(text), nil
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return vm.Undefined, fmt.Errorf("cannot parse argument %q", tok)
	}
	return h.NewNumber(f), nil
}

// tokenize splits a command line on spaces, keeping double-quoted strings
// (with their quotes) together.
func tokenize(line string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inString, escaped := false, false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case inString:
			cur.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
		case r == '"':
			cur.WriteRune(r)
			inString = true
		case r == ' ' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inString {
		return nil, fmt.Errorf("unterminated string")
	}
	flush()
	return fields, nil
}
