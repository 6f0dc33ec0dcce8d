package filter

import (
	"fmt"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// Identified is a catalog record with a canonical id.
type Identified interface {
	ID() string
}

// Session holds the active criteria over one catalog, the filtered result
// and the selection. The selection is always a subset of the result.
type Session[T Identified, C Criteria[T]] struct {
	catalog  []T
	presets  map[string]C
	criteria C
	result   []T
	selected map[string]struct{}
}

// NewSession starts with zero criteria, which matches the whole catalog.
func NewSession[T Identified, C Criteria[T]](catalog []T, presets map[string]C) *Session[T, C] {
	s := &Session[T, C]{
		catalog:  catalog,
		presets:  presets,
		selected: make(map[string]struct{}),
	}
	var zero C
	s.Apply(zero)
	return s
}

// Apply replaces the criteria, re-filters, and drops selected ids that
// are no longer in the result.
func (s *Session[T, C]) Apply(c C) []T {
	s.criteria = c
	s.result = ApplyFilters(s.catalog, c)

	visible := make(map[string]struct{}, len(s.result))
	for _, item := range s.result {
		visible[item.ID()] = struct{}{}
	}
	for id := range s.selected {
		if _, ok := visible[id]; !ok {
			delete(s.selected, id)
		}
	}
	return s.Result()
}

// ApplyPreset replaces the criteria wholesale with a named preset.
func (s *Session[T, C]) ApplyPreset(name string) ([]T, error) {
	c, ok := s.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset %q: %w", name, models.ErrNotFound)
	}
	return s.Apply(c), nil
}

// Criteria returns the active criteria.
func (s *Session[T, C]) Criteria() C {
	return s.criteria
}

// Result returns a copy of the filtered result.
func (s *Session[T, C]) Result() []T {
	return append([]T(nil), s.result...)
}

// Toggle flips selection of id. Ids outside the result are ignored.
// Returns whether id is selected afterwards.
func (s *Session[T, C]) Toggle(id string) bool {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return false
	}
	for _, item := range s.result {
		if item.ID() == id {
			s.selected[id] = struct{}{}
			return true
		}
	}
	return false
}

// Select adds each visible id to the selection and returns the ids that
// are outside the current result, in input order.
func (s *Session[T, C]) Select(ids ...string) (dropped []string) {
	for _, id := range ids {
		if s.Contains(id) {
			continue
		}
		if !s.Toggle(id) {
			dropped = append(dropped, id)
		}
	}
	return dropped
}

// SelectAll selects every item in the current result.
func (s *Session[T, C]) SelectAll() {
	for _, item := range s.result {
		s.selected[item.ID()] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Session[T, C]) Clear() {
	s.selected = make(map[string]struct{})
}

// Contains reports whether id is selected.
func (s *Session[T, C]) Contains(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// IDs returns the selected ids in result order.
func (s *Session[T, C]) IDs() []string {
	ids := make([]string, 0, len(s.selected))
	for _, item := range s.result {
		if _, ok := s.selected[item.ID()]; ok {
			ids = append(ids, item.ID())
		}
	}
	return ids
}

// Selected returns the selected records in result order.
func (s *Session[T, C]) Selected() []T {
	out := make([]T, 0, len(s.selected))
	for _, item := range s.result {
		if _, ok := s.selected[item.ID()]; ok {
			out = append(out, item)
		}
	}
	return out
}
