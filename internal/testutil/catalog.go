package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/seistrack/famview/internal/domain/catalog"
	"github.com/seistrack/famview/pkg/errors"
)

// MemCatalog is an in-memory catalog implementing the event, family, and
// trigger repositories for tests.
type MemCatalog struct {
	mu       sync.RWMutex
	events   map[catalog.EventID]*catalog.Event
	families map[catalog.FamilyID]*catalog.Family
	triggers []float64

	// FailEvents forces GetEvents to fail for the listed family member sets,
	// keyed by event ID.  Used to exercise per-family fault isolation.
	failEvents map[catalog.EventID]error
}

// NewMemCatalog returns an empty in-memory catalog.
func NewMemCatalog() *MemCatalog {
	return &MemCatalog{
		events:     make(map[catalog.EventID]*catalog.Event),
		families:   make(map[catalog.FamilyID]*catalog.Family),
		failEvents: make(map[catalog.EventID]error),
	}
}

// FailEvent makes any GetEvent/GetEvents touching id return err.
func (c *MemCatalog) FailEvent(id catalog.EventID, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failEvents[id] = err
}

// GetEvent implements catalog.EventRepository.
func (c *MemCatalog) GetEvent(_ context.Context, id catalog.EventID) (*catalog.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err, ok := c.failEvents[id]; ok {
		return nil, err
	}
	ev, ok := c.events[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeEventNotFound,
			fmt.Sprintf("event %d not found", id))
	}
	cp := *ev
	return &cp, nil
}

// GetEvents implements catalog.EventRepository.
func (c *MemCatalog) GetEvents(ctx context.Context, ids []catalog.EventID) ([]*catalog.Event, error) {
	out := make([]*catalog.Event, 0, len(ids))
	for _, id := range ids {
		ev, err := c.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// ListEventTimes implements catalog.EventRepository.
func (c *MemCatalog) ListEventTimes(_ context.Context) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]float64, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Time)
	}
	sort.Float64s(out)
	return out, nil
}

// PutEvent implements catalog.EventRepository.
func (c *MemCatalog) PutEvent(_ context.Context, ev *catalog.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *ev
	c.events[ev.ID] = &cp
	return nil
}

// GetFamily implements catalog.FamilyRepository.
func (c *MemCatalog) GetFamily(_ context.Context, id catalog.FamilyID) (*catalog.Family, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fam, ok := c.families[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeFamilyNotFound,
			fmt.Sprintf("family %d not found", id))
	}
	cp := *fam
	cp.Members = append([]catalog.EventID(nil), fam.Members...)
	return &cp, nil
}

// ListFamilies implements catalog.FamilyRepository.
func (c *MemCatalog) ListFamilies(_ context.Context) ([]*catalog.Family, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]catalog.FamilyID, 0, len(c.families))
	for id := range c.families {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	out := make([]*catalog.Family, 0, len(ids))
	for _, id := range ids {
		fam := c.families[id]
		cp := *fam
		cp.Members = append([]catalog.EventID(nil), fam.Members...)
		out = append(out, &cp)
	}
	return out, nil
}

// PutFamily implements catalog.FamilyRepository.
func (c *MemCatalog) PutFamily(_ context.Context, fam *catalog.Family) error {
	if err := fam.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *fam
	cp.Members = append([]catalog.EventID(nil), fam.Members...)
	c.families[fam.ID] = &cp
	return nil
}

// ListTriggerTimes implements catalog.TriggerRepository.
func (c *MemCatalog) ListTriggerTimes(_ context.Context) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := append([]float64(nil), c.triggers...)
	sort.Float64s(out)
	return out, nil
}

// PutTrigger implements catalog.TriggerRepository.
func (c *MemCatalog) PutTrigger(_ context.Context, t float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggers = append(c.triggers, t)
	return nil
}
