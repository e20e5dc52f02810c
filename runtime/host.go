package runtime

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	lua "github.com/yuin/gopher-lua"

	"github.com/wippyai/nsplua/engine"
	"github.com/wippyai/nsplua/errors"
)

// Host is the interface for struct-based host modules.
// All exported methods with the lua.LGFunction signature are registered as
// functions of the guest module named by Namespace.
type Host interface {
	// Namespace returns the module name guest code requires (e.g., "utime").
	Namespace() string
}

// ExplicitRegistrar allows hosts to provide exact guest function names
// when automatic PascalCase-to-snake_case conversion doesn't apply.
type ExplicitRegistrar interface {
	Register() map[string]lua.LGFunction
}

type HostRegistry struct {
	funcs map[string]map[string]lua.LGFunction
	mu    sync.RWMutex
}

func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs: make(map[string]map[string]lua.LGFunction),
	}
}

var lgFunctionType = reflect.TypeOf(lua.LGFunction(nil))

func (r *HostRegistry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if ns == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[ns] == nil {
		r.funcs[ns] = make(map[string]lua.LGFunction)
	}

	if er, ok := h.(ExplicitRegistrar); ok {
		for name, fn := range er.Register() {
			r.funcs[ns][name] = fn
		}
		return nil
	}

	rv := reflect.ValueOf(h)
	rt := rv.Type()

	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Namespace" {
			continue
		}
		bound := rv.Method(i)
		if !bound.Type().ConvertibleTo(lgFunctionType) {
			continue
		}
		fn := bound.Convert(lgFunctionType).Interface().(lua.LGFunction)
		r.funcs[ns][toSnakeCase(method.Name)] = fn
	}

	if len(r.funcs[ns]) == 0 {
		delete(r.funcs, ns)
		return errors.InvalidInput(errors.PhaseHost, "host "+ns+" exports no functions")
	}
	return nil
}

func (r *HostRegistry) RegisterFunc(namespace, name string, fn lua.LGFunction) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}
	if fn == nil {
		return errors.InvalidInput(errors.PhaseHost, "handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]lua.LGFunction)
	}
	r.funcs[namespace][name] = fn
	return nil
}

// Namespaces returns the registered module names in sorted order.
func (r *HostRegistry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		names = append(names, ns)
	}
	sort.Strings(names)
	return names
}

// Bind makes every registered namespace loadable with require. Binding
// again replaces the loaders, so functions registered later become visible
// to modules not yet required.
func (r *HostRegistry) Bind(e *engine.Engine) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for namespace, funcs := range r.funcs {
		table := make(map[string]lua.LGFunction, len(funcs))
		for name, fn := range funcs {
			table[name] = fn
		}
		e.L.PreloadModule(namespace, func(L *lua.LState) int {
			L.Push(L.SetFuncs(L.NewTable(), table))
			return 1
		})
	}
}

// toSnakeCase converts PascalCase to snake_case.
// Acronym runs stay together: GetHTTPURL -> get_httpurl
func toSnakeCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts next word, not part of acronym
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('_')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1 // -1 because loop will increment
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
