package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Kind discriminates the vehicle variants. The wire values match the
// persisted blob layout, which predates this implementation.
type Kind string

const (
	KindCar       Kind = "car"
	KindSportsCar Kind = "esportivo"
	KindTruck     Kind = "caminhao"
)

// IsValidKind checks if a kind is one of the known vehicle variants.
func IsValidKind(k Kind) bool {
	switch k {
	case KindCar, KindSportsCar, KindTruck:
		return true
	default:
		return false
	}
}

// Label returns the display name for a vehicle kind.
func (k Kind) Label() string {
	switch k {
	case KindSportsCar:
		return "Sports car"
	case KindTruck:
		return "Truck"
	default:
		return "Car"
	}
}

// Speed and cargo tuning, in km/h and kg.
const (
	CarMaxSpeed         = 180.0
	SportsBaseMaxSpeed  = 250.0
	SportsTurboMaxSpeed = 320.0
	TruckMaxSpeed       = 120.0

	TurboBoost    = 1.8
	MinLoadFactor = 0.3
	DefaultStep   = 10.0

	DefaultTruckCapacity = 1000.0
)

var (
	ErrMissingID       = errors.New("vehicle id is required")
	ErrEmptyModel      = errors.New("vehicle model must not be empty")
	ErrEmptyColor      = errors.New("vehicle color must not be empty")
	ErrInvalidCapacity = errors.New("cargo capacity must be a positive number")

	ErrAlreadyOn   = errors.New("engine is already on")
	ErrAlreadyOff  = errors.New("engine is already off")
	ErrStillMoving = errors.New("stop the vehicle completely before turning it off")
	ErrEngineOff   = errors.New("turn the engine on first")

	ErrNotSportsCar    = errors.New("vehicle has no turbo")
	ErrTurboEngaged    = errors.New("turbo is already engaged")
	ErrTurboNotEngaged = errors.New("turbo is not engaged")

	ErrNotTruck          = errors.New("vehicle has no cargo bed")
	ErrEngineRunning     = errors.New("turn the engine off before handling cargo")
	ErrInvalidAmount     = errors.New("cargo amount must be a positive number")
	ErrOverCapacity      = errors.New("cargo exceeds remaining capacity")
	ErrInsufficientCargo = errors.New("not enough cargo to unload")
)

// TurboState is the sports-car payload.
type TurboState struct {
	Engaged bool `json:"engaged" msgpack:"engaged"`
}

// CargoState is the truck payload.
type CargoState struct {
	Capacity float64 `json:"capacity" msgpack:"capacity"`
	Current  float64 `json:"current" msgpack:"current"`
}

// Vehicle is a closed tagged variant over {car, sports car, truck}: shared
// fields plus at most one kind-specific payload. Operations dispatch on
// Kind, so the variant set is checked exhaustively instead of relying on
// virtual dispatch.
type Vehicle struct {
	ID         string        `json:"id" msgpack:"id"`
	Kind       Kind          `json:"kind" msgpack:"kind"`
	Model      string        `json:"model" msgpack:"model"`
	Color      string        `json:"color" msgpack:"color"`
	IgnitionOn bool          `json:"ignition_on" msgpack:"ignition_on"`
	Speed      float64       `json:"speed" msgpack:"speed"`
	Turbo      *TurboState   `json:"turbo,omitempty" msgpack:"turbo,omitempty"`
	Cargo      *CargoState   `json:"cargo,omitempty" msgpack:"cargo,omitempty"`
	History    []Maintenance `json:"maintenance_history" msgpack:"maintenance_history"`
}

func newVehicle(id, model, color string, kind Kind) (*Vehicle, error) {
	id = strings.TrimSpace(id)
	model = strings.TrimSpace(model)
	color = strings.TrimSpace(color)
	if id == "" {
		return nil, ErrMissingID
	}
	if model == "" {
		return nil, ErrEmptyModel
	}
	if color == "" {
		return nil, ErrEmptyColor
	}
	return &Vehicle{
		ID:      id,
		Kind:    kind,
		Model:   model,
		Color:   color,
		History: []Maintenance{},
	}, nil
}

// NewCar creates a plain car.
func NewCar(id, model, color string) (*Vehicle, error) {
	return newVehicle(id, model, color, KindCar)
}

// NewSportsCar creates a sports car with the turbo disengaged.
func NewSportsCar(id, model, color string) (*Vehicle, error) {
	v, err := newVehicle(id, model, color, KindSportsCar)
	if err != nil {
		return nil, err
	}
	v.Turbo = &TurboState{}
	return v, nil
}

// NewTruck creates an empty truck with the given cargo capacity in kg.
func NewTruck(id, model, color string, capacity float64) (*Vehicle, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	v, err := newVehicle(id, model, color, KindTruck)
	if err != nil {
		return nil, err
	}
	v.Cargo = &CargoState{Capacity: capacity}
	return v, nil
}

// MaxSpeed returns the current top speed, which depends on the kind and,
// for a sports car, on whether the turbo is engaged.
func (v *Vehicle) MaxSpeed() float64 {
	switch v.Kind {
	case KindSportsCar:
		if v.Turbo != nil && v.Turbo.Engaged {
			return SportsTurboMaxSpeed
		}
		return SportsBaseMaxSpeed
	case KindTruck:
		return TruckMaxSpeed
	default:
		return CarMaxSpeed
	}
}

// TurnOn starts the engine.
func (v *Vehicle) TurnOn() error {
	if v.IgnitionOn {
		return ErrAlreadyOn
	}
	v.IgnitionOn = true
	return nil
}

// TurnOff stops the engine. The vehicle has to be standing still.
func (v *Vehicle) TurnOff() error {
	if !v.IgnitionOn {
		return ErrAlreadyOff
	}
	if v.Speed > 0 {
		return ErrStillMoving
	}
	v.IgnitionOn = false
	return nil
}

// Accelerate raises the speed by a kind-specific transform of delta,
// capped at the current top speed, and returns the new speed. A
// non-positive delta falls back to the default step.
func (v *Vehicle) Accelerate(delta float64) (float64, error) {
	if !v.IgnitionOn {
		return v.Speed, ErrEngineOff
	}
	if delta <= 0 {
		log.WithField("delta", delta).Warn("invalid acceleration step, using default")
		delta = DefaultStep
	}
	v.Speed = math.Min(v.Speed+delta*v.accelFactor(), v.MaxSpeed())
	return v.Speed, nil
}

// accelFactor is the variant-specific acceleration multiplier: turbo boosts
// a sports car, load slows a truck down to MinLoadFactor at the extreme.
func (v *Vehicle) accelFactor() float64 {
	switch v.Kind {
	case KindSportsCar:
		if v.Turbo != nil && v.Turbo.Engaged {
			return TurboBoost
		}
	case KindTruck:
		if v.Cargo != nil && v.Cargo.Capacity > 0 {
			return math.Max(MinLoadFactor, 1-v.Cargo.Current/(2*v.Cargo.Capacity))
		}
	}
	return 1.0
}

// Brake lowers the speed by delta, floored at zero, and returns the new
// speed. Braking a standing vehicle is a no-op. Works with the engine off.
func (v *Vehicle) Brake(delta float64) float64 {
	if v.Speed == 0 {
		return 0
	}
	if delta <= 0 {
		log.WithField("delta", delta).Warn("invalid brake step, using default")
		delta = DefaultStep
	}
	v.Speed = math.Max(0, v.Speed-delta)
	return v.Speed
}

// Honk returns the audio cue text for the caller to play. No state changes.
func (v *Vehicle) Honk() string {
	return fmt.Sprintf("%s honks: beep beep!", v.Model)
}

// EngageTurbo switches the turbo on, raising the top speed. Sports car only.
func (v *Vehicle) EngageTurbo() error {
	if v.Kind != KindSportsCar || v.Turbo == nil {
		return ErrNotSportsCar
	}
	if !v.IgnitionOn {
		return ErrEngineOff
	}
	if v.Turbo.Engaged {
		return ErrTurboEngaged
	}
	v.Turbo.Engaged = true
	return nil
}

// DisengageTurbo switches the turbo off. If the current speed exceeds the
// lower base top speed it is clamped, and limited reports that.
func (v *Vehicle) DisengageTurbo() (limited bool, err error) {
	if v.Kind != KindSportsCar || v.Turbo == nil {
		return false, ErrNotSportsCar
	}
	if !v.Turbo.Engaged {
		return false, ErrTurboNotEngaged
	}
	v.Turbo.Engaged = false
	if v.Speed > v.MaxSpeed() {
		v.Speed = v.MaxSpeed()
		limited = true
	}
	return limited, nil
}

// LoadCargo adds amount kg to the truck bed. The engine has to be off.
func (v *Vehicle) LoadCargo(amount float64) error {
	if v.Kind != KindTruck || v.Cargo == nil {
		return ErrNotTruck
	}
	if v.IgnitionOn {
		return ErrEngineRunning
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if v.Cargo.Current+amount > v.Cargo.Capacity {
		return fmt.Errorf("%w: %.0fkg over the remaining %.0fkg",
			ErrOverCapacity, amount, v.Cargo.Capacity-v.Cargo.Current)
	}
	v.Cargo.Current += amount
	return nil
}

// UnloadCargo removes amount kg from the truck bed. The engine has to be off.
func (v *Vehicle) UnloadCargo(amount float64) error {
	if v.Kind != KindTruck || v.Cargo == nil {
		return ErrNotTruck
	}
	if v.IgnitionOn {
		return ErrEngineRunning
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if v.Cargo.Current-amount < 0 {
		return fmt.Errorf("%w: only %.0fkg loaded", ErrInsufficientCargo, v.Cargo.Current)
	}
	v.Cargo.Current -= amount
	return nil
}

// AddMaintenance validates the record and appends it to the history, which
// is kept sorted most-recent-first. Nothing is added when validation fails.
func (v *Vehicle) AddMaintenance(m Maintenance, today time.Time) error {
	if err := m.Validate(today); err != nil {
		return err
	}
	v.History = append(v.History, m)
	SortByDateDesc(v.History)
	return nil
}

// HistoryBuckets partitions a maintenance history for display.
type HistoryBuckets struct {
	Completed       []Maintenance // most-recent-first
	ScheduledFuture []Maintenance // soonest-first, date >= today
	ScheduledPast   []Maintenance // overdue or unparsable date
}

// PartitionHistory splits the history into completed services, upcoming
// appointments and overdue ones. Pure query; the history is not touched.
func (v *Vehicle) PartitionHistory(today time.Time) HistoryBuckets {
	day := DateOnly(today)
	var buckets HistoryBuckets
	for _, m := range v.History {
		if m.Status == StatusCompleted {
			buckets.Completed = append(buckets.Completed, m)
			continue
		}
		if date, ok := m.ParsedDate(); ok && !date.Before(day) {
			buckets.ScheduledFuture = append(buckets.ScheduledFuture, m)
		} else {
			buckets.ScheduledPast = append(buckets.ScheduledPast, m)
		}
	}
	SortByDateAsc(buckets.ScheduledFuture)
	return buckets
}

// ListLabel is the short description used in vehicle lists.
func (v *Vehicle) ListLabel() string {
	return fmt.Sprintf("%s (%s)", v.Model, v.Color)
}

// Describe renders the vehicle details, including the kind-specific state.
func (v *Vehicle) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\n", v.ID)
	fmt.Fprintf(&b, "Model: %s\n", v.Model)
	fmt.Fprintf(&b, "Color: %s\n", v.Color)
	fmt.Fprintf(&b, "Type: %s\n", v.Kind.Label())
	fmt.Fprintf(&b, "Top speed: %.0f km/h", v.MaxSpeed())
	switch v.Kind {
	case KindSportsCar:
		state := "disengaged"
		if v.Turbo != nil && v.Turbo.Engaged {
			state = "engaged"
		}
		fmt.Fprintf(&b, "\nTurbo: %s", state)
	case KindTruck:
		if v.Cargo != nil {
			fmt.Fprintf(&b, "\nCapacity: %.0f kg\nCurrent load: %.0f kg", v.Cargo.Capacity, v.Cargo.Current)
		}
	}
	return b.String()
}
