package shape

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/cdivs/internal/cache"
	"github.com/gogpu/cdivs/internal/logx"
)

//go:embed shapes.yaml
var builtinYAML []byte

// Empty is the name every unknown shape resolves to.
const Empty = "empty"

var dynamics = map[string]DynamicFunc{
	"hillside": func(p Params) []float64 {
		v := p.H * .7 * p.WP
		return []float64{v, v}
	},
	"clouds": func(p Params) []float64 {
		d := p.W - p.H*3
		return []float64{d * .09, d * .05}
	},
	"_squares": func(p Params) []float64 {
		return []float64{4 + 3*p.HP, 8 - 6*p.HP}
	},
	"_circles": func(p Params) []float64 {
		return []float64{4 * p.IHP, -(4 * p.IHP)}
	},
}

var library struct {
	mu     sync.Mutex
	loaded bool
	defs   map[string]Def
	abbrs  map[string]string
	order  []string
}

// programs holds compiled shapes by full name.
var programs = cache.New[string, *Program](0)

// RegisterDynamic adds a dynamic value function usable from Def.Dynamic.
func RegisterDynamic(name string, fn DynamicFunc) {
	library.mu.Lock()
	defer library.mu.Unlock()
	dynamics[name] = fn
}

func dynamicFunc(name string) (DynamicFunc, bool) {
	fn, ok := dynamics[name]
	return fn, ok
}

// ParseLibrary decodes a YAML list of shape definitions.
func ParseLibrary(data []byte) ([]Def, error) {
	var defs []Def
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("shape library: %w", err)
	}
	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("shape library entry %d: %w: missing name", i, ErrSyntax)
		}
	}
	return defs, nil
}

func ensureLoaded() {
	if library.loaded {
		return
	}
	library.loaded = true
	library.defs = make(map[string]Def)
	library.abbrs = make(map[string]string)
	library.order = nil
	defs, err := ParseLibrary(builtinYAML)
	if err != nil {
		logx.Diag("shape", "built-in library unreadable", "err", err)
		return
	}
	for _, d := range defs {
		add(d)
	}
}

func add(d Def) {
	if _, ok := library.defs[d.Name]; !ok {
		library.order = append(library.order, d.Name)
	}
	library.defs[d.Name] = d
	if d.Abbr != "" {
		library.abbrs[d.Abbr] = d.Name
	}
	stale := dependents(d.Name)
	for name := range stale {
		programs.Delete(name)
	}
	tiles.DeleteFunc(func(k tileKey) bool { return stale[k.name] })
}

// dependents returns name and every shape whose parent chain reaches it.
func dependents(name string) map[string]bool {
	out := map[string]bool{name: true}
	for child, d := range library.defs {
		seen := map[string]bool{child: true}
		for p := d.Parent; p != ""; {
			full, ok := resolveName(p)
			if !ok || seen[full] {
				break
			}
			if full == name {
				out[child] = true
				break
			}
			seen[full] = true
			p = library.defs[full].Parent
		}
	}
	return out
}

// Register adds or replaces a shape. The definition is compiled eagerly so
// syntax errors surface here instead of at draw time.
func Register(d Def) error {
	library.mu.Lock()
	defer library.mu.Unlock()
	ensureLoaded()
	resolved, err := resolve(d)
	if err != nil {
		return err
	}
	if _, err := Compile(resolved); err != nil {
		return err
	}
	add(d)
	return nil
}

// Resolve returns the full name for a name or abbreviation.
func Resolve(name string) (string, bool) {
	library.mu.Lock()
	defer library.mu.Unlock()
	ensureLoaded()
	return resolveName(name)
}

func resolveName(name string) (string, bool) {
	if full, ok := library.abbrs[name]; ok {
		return full, true
	}
	_, ok := library.defs[name]
	return name, ok
}

// resolve fills an empty header or command string from the parent chain.
func resolve(d Def) (Def, error) {
	seen := map[string]bool{d.Name: true}
	for p := d.Parent; p != "" && (d.Header == "" || d.Commands == ""); {
		full, ok := resolveName(p)
		if !ok || seen[full] {
			return d, fmt.Errorf("shape %q: %w: parent %q", d.Name, ErrUnknownShape, p)
		}
		seen[full] = true
		parent := library.defs[full]
		if d.Header == "" {
			d.Header = parent.Header
		}
		if d.Commands == "" {
			d.Commands = parent.Commands
		}
		if len(d.Keys) == 0 {
			d.Keys = parent.Keys
		}
		if d.Dynamic == "" {
			d.Dynamic = parent.Dynamic
		}
		p = parent.Parent
	}
	return d, nil
}

// Find compiles the named shape once and returns the cached program.
func Find(name string) (*Program, error) {
	library.mu.Lock()
	defer library.mu.Unlock()
	ensureLoaded()
	full, ok := resolveName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, name)
	}
	if p, ok := programs.Get(full); ok {
		return p, nil
	}
	d, err := resolve(library.defs[full])
	if err != nil {
		return nil, err
	}
	p, err := Compile(d)
	if err != nil {
		return nil, err
	}
	programs.Set(full, p)
	return p, nil
}

// Lookup is Find that never fails: problems are logged and the empty
// shape is returned.
func Lookup(name string) *Program {
	p, err := Find(name)
	if err == nil {
		return p
	}
	logx.Diag("shape", "shape unavailable, drawing nothing", "type", name, "err", err)
	if p, err := Find(Empty); err == nil {
		return p
	}
	return &Program{Name: Empty, Header: Header{DelayMul: 1, XRepeat: 1, YRepeat: 1}, Keys: defaultKeys}
}

// Names lists the registered shapes in library order.
func Names() []string {
	library.mu.Lock()
	defer library.mu.Unlock()
	ensureLoaded()
	return slices.Clone(library.order)
}

// Abbr returns the abbreviation of a shape, or "".
func Abbr(name string) string {
	library.mu.Lock()
	defer library.mu.Unlock()
	ensureLoaded()
	if d, ok := library.defs[name]; ok {
		return d.Abbr
	}
	return ""
}

// IsDecor reports whether name is a decorative cut pattern.
func IsDecor(name string) bool { return strings.HasPrefix(name, "_") }

// Reset drops registered shapes and compiled programs and reloads the
// built-in library on next use.
func Reset() {
	library.mu.Lock()
	library.loaded = false
	library.mu.Unlock()
	programs.Clear()
	resetTiles()
}
