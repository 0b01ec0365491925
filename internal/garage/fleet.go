// Package garage holds the fleet aggregate: the ordered vehicle collection,
// the selection state and the persistence round-trip.
package garage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/ukydev/smart-garage/internal/models"
)

var (
	ErrNotFound    = errors.New("vehicle not found")
	ErrUnknownKind = errors.New("unknown vehicle kind")
	ErrDuplicateID = errors.New("duplicate vehicle id")
)

// IDGenerator supplies unique, stable vehicle ids. The fleet only relies on
// uniqueness, not on any particular format.
type IDGenerator func() string

// Fleet owns every vehicle. Vehicles keep their insertion order; the
// selection is a weak reference by id.
type Fleet struct {
	vehicles   []*models.Vehicle
	byID       map[string]*models.Vehicle
	selectedID string
	newID      IDGenerator
}

// New creates an empty fleet. A nil generator defaults to ULIDs.
func New(gen IDGenerator) *Fleet {
	if gen == nil {
		gen = func() string { return ulid.Make().String() }
	}
	return &Fleet{
		byID:  make(map[string]*models.Vehicle),
		newID: gen,
	}
}

// CreateOptions carries the kind-specific creation fields.
type CreateOptions struct {
	// CargoCapacity is required (positive) when creating a truck.
	CargoCapacity float64
}

// Create validates the input, builds the right vehicle variant with a fresh
// id and appends it to the fleet.
func (f *Fleet) Create(kind models.Kind, model, color string, opts CreateOptions) (*models.Vehicle, error) {
	var (
		v   *models.Vehicle
		err error
	)
	switch kind {
	case models.KindCar:
		v, err = models.NewCar(f.newID(), model, color)
	case models.KindSportsCar:
		v, err = models.NewSportsCar(f.newID(), model, color)
	case models.KindTruck:
		v, err = models.NewTruck(f.newID(), model, color, opts.CargoCapacity)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	if err := f.add(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (f *Fleet) add(v *models.Vehicle) error {
	if _, exists := f.byID[v.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, v.ID)
	}
	f.vehicles = append(f.vehicles, v)
	f.byID[v.ID] = v
	return nil
}

// Get looks a vehicle up by id.
func (f *Fleet) Get(id string) (*models.Vehicle, bool) {
	v, ok := f.byID[id]
	return v, ok
}

// Vehicles returns the vehicles in insertion order. The slice is a copy,
// the vehicles are not.
func (f *Fleet) Vehicles() []*models.Vehicle {
	out := make([]*models.Vehicle, len(f.vehicles))
	copy(out, f.vehicles)
	return out
}

// Len is the number of vehicles in the fleet.
func (f *Fleet) Len() int {
	return len(f.vehicles)
}

// Select marks the vehicle with the given id as the current one.
func (f *Fleet) Select(id string) error {
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	f.selectedID = id
	return nil
}

// Deselect clears the current selection.
func (f *Fleet) Deselect() {
	f.selectedID = ""
}

// Selected returns the currently selected vehicle, or nil when no selection
// is active (including after the selected vehicle was removed).
func (f *Fleet) Selected() *models.Vehicle {
	if f.selectedID == "" {
		return nil
	}
	return f.byID[f.selectedID]
}

// Remove deletes a vehicle and its maintenance history from the fleet,
// clearing the selection if it pointed at the removed vehicle.
func (f *Fleet) Remove(id string) error {
	if _, ok := f.byID[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(f.byID, id)
	for i, v := range f.vehicles {
		if v.ID == id {
			f.vehicles = append(f.vehicles[:i], f.vehicles[i+1:]...)
			break
		}
	}
	if f.selectedID == id {
		f.selectedID = ""
	}
	return nil
}

// Reset empties the fleet and drops the selection.
func (f *Fleet) Reset() {
	f.vehicles = nil
	f.byID = make(map[string]*models.Vehicle)
	f.selectedID = ""
}

// Summary renders a one-line-per-vehicle listing for the UI collaborator.
func (f *Fleet) Summary() string {
	if len(f.vehicles) == 0 {
		return "The garage is empty."
	}
	var b strings.Builder
	for i, v := range f.vehicles {
		marker := " "
		if v.ID == f.selectedID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %d. [%s] %s  %s", marker, i+1, v.Kind.Label(), v.ListLabel(), v.ID)
		if i < len(f.vehicles)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
