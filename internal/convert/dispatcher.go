package convert

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/nifconv/internal/document"
)

// ErrUnregisteredType is returned when no rule converts a source type.
var ErrUnregisteredType = errors.New("unregistered source type")

// Rule converts one source block and returns the destination block it
// became, or -1 when it produced none.
type Rule func(ctx *Context, src int) (int, error)

// Module is implemented by every rule set.
type Module interface {
	Register(d *Dispatcher)
}

// Dispatcher is the closed table of rules, keyed by source type tag.
type Dispatcher struct {
	rules map[string]Rule
}

// NewDispatcher creates a dispatcher and registers the given modules.
func NewDispatcher(modules ...Module) *Dispatcher {
	d := &Dispatcher{rules: make(map[string]Rule)}
	for _, m := range modules {
		m.Register(d)
	}
	return d
}

// Register binds a rule to one or more source type tags.
func (d *Dispatcher) Register(rule Rule, typeTags ...string) {
	for _, tag := range typeTags {
		if _, exists := d.rules[tag]; exists {
			panic(fmt.Sprintf("rule for type '%s' already registered", tag))
		}
		slog.Debug("Registering rule.", "type", tag)
		d.rules[tag] = rule
	}
}

// Rule returns the rule registered for a type tag.
func (d *Dispatcher) Rule(typeTag string) (Rule, bool) {
	r, ok := d.rules[typeTag]
	return r, ok
}

// Types lists every registered tag, sorted.
func (d *Dispatcher) Types() []string {
	out := make([]string, 0, len(d.rules))
	for t := range d.rules {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Validate checks every registered tag against the source schema.
func (d *Dispatcher) Validate(schema *document.Schema) error {
	if schema == nil {
		return errors.New("no source schema to validate rules against")
	}
	var unknown []string
	for _, t := range d.Types() {
		if !schema.Known(t) {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("rules registered for types missing from the %s schema: %s",
			schema.Name, strings.Join(unknown, ", "))
	}
	return nil
}
