package pipeline

import "github.com/iancoleman/strcase"

// Environment is the immutable map<name, Producer> consumed by the
// realizer (§6). Names is the insertion order producers were added in;
// every iteration over the environment in this codebase goes through
// Names rather than ranging the map directly, so two runs over the same
// built Environment always visit producers in the same order (§5
// determinism requirement).
type Environment struct {
	byName map[string]*Producer
	names  []string
}

// NewEnvironment builds an Environment from producers in the given
// order, keyed by each producer's exact Name; no canonicalization is
// applied here (see CanonicalLabel for the snake_case display form).
func NewEnvironment(producers ...*Producer) *Environment {
	env := &Environment{byName: make(map[string]*Producer, len(producers))}
	for _, p := range producers {
		env.Add(p)
	}
	return env
}

// Add inserts or replaces a producer, recording insertion order the
// first time a name is seen.
func (e *Environment) Add(p *Producer) {
	if _, exists := e.byName[p.Name]; !exists {
		e.names = append(e.names, p.Name)
	}
	e.byName[p.Name] = p
}

// Lookup returns the producer named name, or nil if absent.
func (e *Environment) Lookup(name string) *Producer {
	return e.byName[name]
}

// Has reports whether name is present in the environment.
func (e *Environment) Has(name string) bool {
	_, ok := e.byName[name]
	return ok
}

// Names returns every producer name in insertion order.
func (e *Environment) Names() []string {
	out := make([]string, len(e.names))
	copy(out, e.names)
	return out
}

// Len returns the number of producers in the environment.
func (e *Environment) Len() int { return len(e.names) }

// CanonicalLabel renders a producer/dim pair for diagnostics in the
// conventional "producer.dim" form, canonicalizing the dim spelling.
func CanonicalLabel(producer, dim string) string {
	return producer + "." + strcase.ToSnake(dim)
}
