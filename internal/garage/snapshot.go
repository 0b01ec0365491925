package garage

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/smart-garage/internal/models"
	"github.com/ukydev/smart-garage/internal/store"
)

// VehicleSnapshot is the flat persisted form of one vehicle. The kind
// discriminant drives reconstruction; kind-specific fields are zero for the
// kinds they don't apply to. There is no schema version, missing fields are
// defaulted on restore.
type VehicleSnapshot struct {
	ID            string               `json:"id" msgpack:"id"`
	Kind          models.Kind          `json:"kind" msgpack:"kind"`
	Model         string               `json:"model" msgpack:"model"`
	Color         string               `json:"color" msgpack:"color"`
	IgnitionOn    bool                 `json:"ignition_on" msgpack:"ignition_on"`
	Speed         float64              `json:"speed" msgpack:"speed"`
	MaxSpeed      float64              `json:"max_speed" msgpack:"max_speed"`
	TurboOn       bool                 `json:"turbo_on,omitempty" msgpack:"turbo_on,omitempty"`
	CargoCapacity float64              `json:"cargo_capacity,omitempty" msgpack:"cargo_capacity,omitempty"`
	CurrentCargo  float64              `json:"current_cargo,omitempty" msgpack:"current_cargo,omitempty"`
	History       []models.Maintenance `json:"maintenance_history" msgpack:"maintenance_history"`
}

// Snapshot flattens every vehicle into its persisted form, in insertion
// order.
func (f *Fleet) Snapshot() []VehicleSnapshot {
	records := make([]VehicleSnapshot, 0, len(f.vehicles))
	for _, v := range f.vehicles {
		rec := VehicleSnapshot{
			ID:         v.ID,
			Kind:       v.Kind,
			Model:      v.Model,
			Color:      v.Color,
			IgnitionOn: v.IgnitionOn,
			Speed:      v.Speed,
			MaxSpeed:   v.MaxSpeed(),
			History:    append([]models.Maintenance(nil), v.History...),
		}
		if v.Turbo != nil {
			rec.TurboOn = v.Turbo.Engaged
		}
		if v.Cargo != nil {
			rec.CargoCapacity = v.Cargo.Capacity
			rec.CurrentCargo = v.Cargo.Current
		}
		records = append(records, rec)
	}
	return records
}

// RestoreReport sums up what a restore did to the stored records.
type RestoreReport struct {
	Loaded   int
	Skipped  int
	Repaired int
}

// Restore replaces the fleet contents with the vehicles rebuilt from the
// stored records. Unknown kinds and malformed entries are skipped with a
// warning rather than failing the whole load; corrupted truck fields are
// repaired to keep the vehicle available, and every repair is logged.
func (f *Fleet) Restore(records []VehicleSnapshot) RestoreReport {
	f.Reset()
	var report RestoreReport
	for _, rec := range records {
		v, repairs, err := f.restoreVehicle(rec)
		if err != nil {
			log.WithFields(log.Fields{"id": rec.ID, "kind": rec.Kind}).
				Warnf("skipping stored vehicle: %v", err)
			report.Skipped++
			continue
		}
		if err := f.add(v); err != nil {
			log.WithField("id", rec.ID).Warnf("skipping stored vehicle: %v", err)
			report.Skipped++
			continue
		}
		report.Loaded++
		report.Repaired += repairs
	}
	return report
}

func (f *Fleet) restoreVehicle(rec VehicleSnapshot) (*models.Vehicle, int, error) {
	id := rec.ID
	repairs := 0
	if id == "" {
		// Pre-id records exist in old blobs; give them a fresh id.
		id = f.newID()
		log.WithField("model", rec.Model).Warn("stored vehicle had no id, generated one")
		repairs++
	}

	var (
		v   *models.Vehicle
		err error
	)
	switch rec.Kind {
	case models.KindCar:
		v, err = models.NewCar(id, rec.Model, rec.Color)
	case models.KindSportsCar:
		v, err = models.NewSportsCar(id, rec.Model, rec.Color)
	case models.KindTruck:
		capacity := rec.CargoCapacity
		if capacity <= 0 {
			log.WithFields(log.Fields{"id": id, "capacity": capacity}).
				Warnf("stored truck has invalid capacity, repairing to %.0fkg", models.DefaultTruckCapacity)
			capacity = models.DefaultTruckCapacity
			repairs++
		}
		v, err = models.NewTruck(id, rec.Model, rec.Color, capacity)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownKind, rec.Kind)
	}
	if err != nil {
		return nil, 0, err
	}

	v.IgnitionOn = rec.IgnitionOn
	v.Speed = rec.Speed
	if v.Speed < 0 {
		log.WithFields(log.Fields{"id": id, "speed": v.Speed}).Warn("stored speed is negative, repairing to 0")
		v.Speed = 0
		repairs++
	}
	if v.Turbo != nil {
		v.Turbo.Engaged = rec.TurboOn
	}
	if max := v.MaxSpeed(); v.Speed > max {
		log.WithFields(log.Fields{"id": id, "speed": v.Speed, "max": max}).
			Warn("stored speed exceeds top speed, clamping")
		v.Speed = max
		repairs++
	}
	if v.Cargo != nil && rec.CurrentCargo > 0 {
		v.Cargo.Current = rec.CurrentCargo
		if v.Cargo.Current > v.Cargo.Capacity {
			log.WithFields(log.Fields{"id": id, "cargo": v.Cargo.Current, "capacity": v.Cargo.Capacity}).
				Warn("stored cargo exceeds capacity, clamping")
			v.Cargo.Current = v.Cargo.Capacity
			repairs++
		}
	}
	if len(rec.History) > 0 {
		v.History = append([]models.Maintenance(nil), rec.History...)
		models.SortByDateDesc(v.History)
	}
	return v, repairs, nil
}

// Load restores the fleet from the store. An absent blob leaves the fleet
// empty; a corrupt one resets it to empty rather than keeping a partial
// parse around.
func (f *Fleet) Load(s store.Store) error {
	var records []VehicleSnapshot
	err := s.Load(&records)
	if errors.Is(err, store.ErrNotFound) {
		f.Reset()
		return nil
	}
	if err != nil {
		f.Reset()
		return fmt.Errorf("failed to load garage: %w", err)
	}
	report := f.Restore(records)
	if report.Skipped > 0 || report.Repaired > 0 {
		log.WithFields(log.Fields{
			"loaded":   report.Loaded,
			"skipped":  report.Skipped,
			"repaired": report.Repaired,
		}).Warn("garage loaded with repairs")
	}
	return nil
}

// Save writes the current fleet state to the store. On failure the
// in-memory state stays the source of truth; the caller decides whether to
// retry on the next operation.
func (f *Fleet) Save(s store.Store) error {
	if err := s.Save(f.Snapshot()); err != nil {
		return fmt.Errorf("failed to save garage: %w", err)
	}
	return nil
}
