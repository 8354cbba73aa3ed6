package schema

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory returns a fresh, default-constructed record.
type Factory func() Record

// FieldInfo is one (name, descriptor) pair of a registered type.
type FieldInfo struct {
	Name string
	Desc Descriptor
}

// Registry maps type names to their factories. Types are added with an
// explicit Register call; nothing is discovered at runtime.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds T to the registry under its TypeName.
func Register[T any, P Pointer[T]](reg *Registry) error {
	return reg.Add(func() Record { return newInstance[T, P]() })
}

// Add registers a factory. Registering the same type name twice is an error.
func (r *Registry) Add(factory Factory) error {
	name := factory().TypeName()
	if name == "" {
		return errors.New("schema: record type name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("schema: type %s is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// New returns a fresh instance of the named type.
func (r *Registry) New(name string) (Record, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("schema: type %s is not registered", name)
	}
	return factory(), nil
}

// Types returns the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns the ordered field descriptors of the named type.
func (r *Registry) Describe(name string) ([]FieldInfo, error) {
	rec, err := r.New(name)
	if err != nil {
		return nil, err
	}
	fields := rec.Fields()
	out := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		out = append(out, FieldInfo{Name: f.Name, Desc: f.Desc})
	}
	return out, nil
}

// Validate checks that every record type referenced by a registered type's
// descriptors is itself registered and that no type declares a field twice.
func (r *Registry) Validate() error {
	var errs []error
	for _, name := range r.Types() {
		fields, err := r.Describe(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		seen := make(map[string]bool, len(fields))
		for _, f := range fields {
			if seen[f.Name] {
				errs = append(errs, fmt.Errorf("schema: %s declares field %s twice", name, f.Name))
			}
			seen[f.Name] = true
			for _, ref := range f.Desc.RecordTypes() {
				if _, err := r.New(ref); err != nil {
					errs = append(errs, fmt.Errorf("schema: %s.%s refers to unregistered type %s", name, f.Name, ref))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// DecodeAny decodes text into whichever registered type its tag names.
func (r *Registry) DecodeAny(text []byte) (Record, error) {
	raw, err := parse(text)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &SchemaMismatch{}
	}
	name, ok := findTag(obj)
	if !ok {
		return nil, &SchemaMismatch{Found: name}
	}
	rec, err := r.New(name)
	if err != nil {
		return nil, err
	}
	if err := decodeObject(obj, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
