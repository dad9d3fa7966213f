package ftdc

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Registry collects schemas by name and remembers registration order.
// It has two phases: a single-threaded load phase that calls Register,
// then Freeze, after which the registry is immutable and may be read
// from any number of goroutines without locking.
type Registry struct {
	data    map[string]*Schema
	ordered []string

	frozen atomic.Bool
}

// NewRegistry allocates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{
		data: make(map[string]*Schema),
	}
}

func (reg *Registry) Size() int {
	return len(reg.data)
}

// Register adds a schema under its own name. Fails on duplicate names
// and on any registry already frozen.
func (reg *Registry) Register(schema *Schema) error {
	if schema == nil {
		return errors.Wrap(ErrInvalidSchema, "nil schema")
	}

	if reg.frozen.Load() {
		return errors.Wrapf(ErrRegistryFrozen, "schema: %q", schema.Name())
	}

	identity := schema.Name()

	if _, exist := reg.data[identity]; exist {
		return errors.Wrapf(ErrDuplicateSchema, "schema: %q", identity)
	}

	reg.ordered = append(reg.ordered, identity)
	reg.data[identity] = schema

	return nil
}

// Freeze ends the load phase. Idempotent, the first caller wins.
func (reg *Registry) Freeze() {
	reg.frozen.CompareAndSwap(false, true)
}

func (reg *Registry) Frozen() bool {
	return reg.frozen.Load()
}

// Get returns the named schema or ErrUnknownSchema.
func (reg *Registry) Get(identity string) (*Schema, error) {
	if schema, exist := reg.data[identity]; exist {
		return schema, nil
	}

	return nil, errors.Wrapf(ErrUnknownSchema, "schema: %q", identity)
}

// Exists reports whether a schema name is registered.
func (reg *Registry) Exists(identity string) bool {
	_, exist := reg.data[identity]
	return exist
}

// Names returns all schema names in registration order.
func (reg *Registry) Names() []string {
	names := make([]string, len(reg.ordered))
	copy(names, reg.ordered)

	return names
}

func (reg *Registry) ForEach(fn func(string, *Schema) bool) {
	for identity, schema := range reg.data {
		if !fn(identity, schema) {
			break
		}
	}
}

func (reg *Registry) OrderedForEach(fn func(string, *Schema) bool) {
	for _, identity := range reg.ordered {
		if schema, exist := reg.data[identity]; exist {
			if !fn(identity, schema) {
				break
			}
		}
	}
}
