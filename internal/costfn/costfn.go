package costfn

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Func computes the cost of macs operations whose operands have a and b bits.
type Func func(macs int64, a, b int) (float64, error)

// ErrUnknownCostFunction is returned when an identifier names no preset and
// carries no callable.
var ErrUnknownCostFunction = errors.New("unknown cost function")

// UnknownCostFunctionError names the identifier that failed to resolve.
type UnknownCostFunctionError struct {
	Name string
}

func (e *UnknownCostFunctionError) Error() string {
	return fmt.Sprintf("%s %q: try %s or review the cost_function blocks in the config", ErrUnknownCostFunction, e.Name, strings.Join(presetNames(), ", "))
}

func (e *UnknownCostFunctionError) Is(target error) bool {
	return target == ErrUnknownCostFunction
}

// Kind tells which variant a Spec holds.
type Kind int

const (
	KindPreset Kind = iota
	KindCustom
)

func (k Kind) String() string {
	switch k {
	case KindPreset:
		return "preset"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec identifies a cost function.
type Spec struct {
	Kind Kind
	Name string
	// Func is set only for KindCustom.
	Func Func
}

// Preset identifies a built-in or registered function by name.
func Preset(name string) Spec {
	return Spec{Kind: KindPreset, Name: name}
}

// Custom wraps a caller-supplied callable. name is used in logs and output.
func Custom(name string, fn Func) Spec {
	return Spec{Kind: KindCustom, Name: name, Func: fn}
}

func (s Spec) String() string {
	if s.Name == "" {
		return s.Kind.String()
	}
	return s.Name
}

// Entry describes one resolvable name.
type Entry struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Builtin     bool   `json:"builtin" yaml:"builtin"`
}

type registered struct {
	entry Entry
	fn    Func
}

// Registry maps names to cost functions. It starts with the built-in presets;
// configuration adds to it with Register. Names are case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]registered
}

// NewRegistry returns a registry holding the built-in presets.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]registered)}
	for _, p := range presets {
		r.funcs[strings.ToUpper(p.entry.Name)] = p
	}
	return r
}

// Register adds a named function. Names may not shadow a preset or an
// earlier registration.
func (r *Registry) Register(name, description string, fn Func) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("cost function name must not be empty")
	}
	if fn == nil {
		return fmt.Errorf("cost function %q has no implementation", name)
	}

	key := strings.ToUpper(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.funcs[key]; ok {
		return fmt.Errorf("cost function %q is already defined as %q", name, existing.entry.Name)
	}
	r.funcs[key] = registered{entry: Entry{Name: name, Description: description}, fn: fn}
	return nil
}

// Resolve returns the callable for s.
func (r *Registry) Resolve(s Spec) (Func, error) {
	switch s.Kind {
	case KindCustom:
		if s.Func == nil {
			return nil, &UnknownCostFunctionError{Name: s.String()}
		}
		return s.Func, nil
	case KindPreset:
		r.mu.RLock()
		defer r.mu.RUnlock()
		if reg, ok := r.funcs[strings.ToUpper(strings.TrimSpace(s.Name))]; ok {
			return reg.fn, nil
		}
		return nil, &UnknownCostFunctionError{Name: s.Name}
	default:
		return nil, &UnknownCostFunctionError{Name: s.String()}
	}
}

// Entries lists every resolvable name, presets first, then alphabetically.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.funcs))
	for _, reg := range r.funcs {
		out = append(out, reg.entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Builtin != out[j].Builtin {
			return out[i].Builtin
		}
		return strings.ToUpper(out[i].Name) < strings.ToUpper(out[j].Name)
	})
	return out
}
