package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/matveld/bms/core/eventlog"
	"github.com/matveld/bms/core/events"
	"github.com/matveld/bms/core/model"
	"github.com/matveld/bms/internal/eventbus"
)

// Registry is the insertion-ordered cell store. It owns the canonical cell
// records; callers only ever see copies. Register and Remove append to the
// event log, every committed mutation publishes a CellEvent.
type Registry struct {
	mu    sync.RWMutex
	cells map[string]*model.Cell
	order []string

	elog *eventlog.Log
	bus  *eventbus.TypedBus[events.CellEvent]
}

// New creates an empty registry. elog and bus may be nil in tests.
func New(elog *eventlog.Log, bus *eventbus.TypedBus[events.CellEvent]) *Registry {
	return &Registry{
		cells: map[string]*model.Cell{},
		elog:  elog,
		bus:   bus,
	}
}

// Register validates and stores a new cell. Empty chemistry is inferred
// from the id, zero voltage bounds are filled from the chemistry profile
// before validation.
func (r *Registry) Register(c model.Cell) error {
	if c.Chemistry == "" {
		c.Chemistry = model.InferChemistry(c.ID)
	}
	if c.MinVoltage == 0 && c.MaxVoltage == 0 {
		p := c.Chemistry.Profile()
		c.MinVoltage, c.MaxVoltage = p.Min, p.Max
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAttributes, err)
	}

	r.mu.Lock()
	if _, ok := r.cells[c.ID]; ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
	}
	stored := c
	r.cells[c.ID] = &stored
	r.order = append(r.order, c.ID)
	r.mu.Unlock()

	r.append(eventlog.SeverityInfo, fmt.Sprintf("Cell %s registered", c.ID))
	r.publish(events.CellRegistered, c)
	return nil
}

// Remove deletes a cell. Tasks referencing the id are left alone; they fail
// lazily when the queue next validates targets.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	cell, ok := r.cells[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	removed := *cell
	delete(r.cells, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.append(eventlog.SeverityWarning, fmt.Sprintf("Cell %s removed", id))
	r.publish(events.CellRemoved, removed)
	return nil
}

// Update merges a partial patch into the cell. Only the fields the patch
// touches are re-validated; in particular voltage bounds are left alone
// unless the patch changes them. A failed validation leaves the cell
// untouched.
func (r *Registry) Update(id string, p model.CellPatch) error {
	r.mu.Lock()
	cell, ok := r.cells[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	merged := p.Apply(*cell)
	if err := p.Validate(merged); err != nil {
		r.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidAttributes, err)
	}
	*cell = merged
	r.mu.Unlock()

	r.publish(events.CellUpdated, merged)
	return nil
}

// Mutate applies an unvalidated in-place mutation to one cell. Composite
// operations own their logging and events.
func (r *Registry) Mutate(id string, fn func(*model.Cell)) error {
	r.mu.Lock()
	cell, ok := r.cells[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	fn(cell)
	r.mu.Unlock()
	return nil
}

// Sweep applies an unvalidated mutation to every cell in insertion order
// and returns the number of cells touched. Used by batch and emergency
// operations, which log and publish on their own.
func (r *Registry) Sweep(fn func(*model.Cell)) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		fn(r.cells[id])
	}
	return len(r.order)
}

// Get returns a copy of the cell.
func (r *Registry) Get(id string) (model.Cell, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cell, ok := r.cells[id]
	if !ok {
		return model.Cell{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *cell, nil
}

// List returns copies of all cells in insertion order.
func (r *Registry) List() []model.Cell {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]model.Cell, 0, len(r.order))
	for _, id := range r.order {
		res = append(res, *r.cells[id])
	}
	return res
}

// Has reports whether the id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cells[id]
	return ok
}

// Len returns the number of registered cells.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) append(sev eventlog.Severity, msg string) {
	if r.elog != nil {
		r.elog.Append(sev, msg)
	}
}

func (r *Registry) publish(kind events.CellEventKind, c model.Cell) {
	if r.bus != nil {
		r.bus.Publish(events.CellEvent{Kind: kind, Cell: c, Time: time.Now()})
	}
}
