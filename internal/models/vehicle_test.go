package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustCar(t *testing.T) *Vehicle {
	t.Helper()
	v, err := NewCar("car-1", "Fusca", "blue")
	assert.NoError(t, err)
	return v
}

func mustSportsCar(t *testing.T) *Vehicle {
	t.Helper()
	v, err := NewSportsCar("sc-1", "Ferrari", "red")
	assert.NoError(t, err)
	return v
}

func mustTruck(t *testing.T, capacity float64) *Vehicle {
	t.Helper()
	v, err := NewTruck("tr-1", "Scania", "white", capacity)
	assert.NoError(t, err)
	return v
}

func TestNewVehicle_Validation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() (*Vehicle, error)
		wantErr error
	}{
		{"missing id", func() (*Vehicle, error) { return NewCar("", "Fusca", "blue") }, ErrMissingID},
		{"empty model", func() (*Vehicle, error) { return NewCar("id", "", "blue") }, ErrEmptyModel},
		{"whitespace model", func() (*Vehicle, error) { return NewCar("id", "  ", "blue") }, ErrEmptyModel},
		{"empty color", func() (*Vehicle, error) { return NewCar("id", "Fusca", "") }, ErrEmptyColor},
		{"zero truck capacity", func() (*Vehicle, error) { return NewTruck("id", "Scania", "white", 0) }, ErrInvalidCapacity},
		{"negative truck capacity", func() (*Vehicle, error) { return NewTruck("id", "Scania", "white", -10) }, ErrInvalidCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.build()
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, v)
		})
	}
}

func TestVehicle_Kinds(t *testing.T) {
	assert.Equal(t, CarMaxSpeed, mustCar(t).MaxSpeed())
	assert.Equal(t, SportsBaseMaxSpeed, mustSportsCar(t).MaxSpeed())
	assert.Equal(t, TruckMaxSpeed, mustTruck(t, 1000).MaxSpeed())
}

func TestVehicle_Ignition(t *testing.T) {
	v := mustCar(t)

	assert.NoError(t, v.TurnOn())
	assert.True(t, v.IgnitionOn)
	assert.ErrorIs(t, v.TurnOn(), ErrAlreadyOn)

	_, err := v.Accelerate(30)
	assert.NoError(t, err)

	// Turning off while moving fails and leaves the ignition on.
	assert.ErrorIs(t, v.TurnOff(), ErrStillMoving)
	assert.True(t, v.IgnitionOn)

	v.Brake(30)
	assert.NoError(t, v.TurnOff())
	assert.False(t, v.IgnitionOn)
	assert.ErrorIs(t, v.TurnOff(), ErrAlreadyOff)
}

func TestVehicle_Accelerate(t *testing.T) {
	v := mustCar(t)

	speed, err := v.Accelerate(10)
	assert.ErrorIs(t, err, ErrEngineOff)
	assert.Zero(t, speed)
	assert.Zero(t, v.Speed)

	assert.NoError(t, v.TurnOn())

	speed, err = v.Accelerate(10)
	assert.NoError(t, err)
	assert.Equal(t, 10.0, speed)

	// Never past the top speed, whatever the input magnitude.
	speed, err = v.Accelerate(1e6)
	assert.NoError(t, err)
	assert.Equal(t, CarMaxSpeed, speed)

	v.Speed = 0
	speed, err = v.Accelerate(-3)
	assert.NoError(t, err)
	assert.Equal(t, DefaultStep, speed)
}

func TestVehicle_Brake(t *testing.T) {
	v := mustCar(t)
	assert.Equal(t, 0.0, v.Brake(50))

	assert.NoError(t, v.TurnOn())
	_, err := v.Accelerate(40)
	assert.NoError(t, err)

	assert.Equal(t, 25.0, v.Brake(15))
	assert.Equal(t, 0.0, v.Brake(100))

	_, err = v.Accelerate(40)
	assert.NoError(t, err)
	assert.Equal(t, 30.0, v.Brake(-1)) // default step
}

func TestVehicle_Honk(t *testing.T) {
	v := mustCar(t)
	assert.NoError(t, v.TurnOn())
	_, err := v.Accelerate(20)
	assert.NoError(t, err)

	cue := v.Honk()
	assert.Contains(t, cue, "Fusca")
	assert.Equal(t, 20.0, v.Speed)
	assert.True(t, v.IgnitionOn)
}

func TestSportsCar_Turbo(t *testing.T) {
	v := mustSportsCar(t)

	assert.ErrorIs(t, v.EngageTurbo(), ErrEngineOff)
	assert.NoError(t, v.TurnOn())

	// Turbo off: plain acceleration.
	speed, err := v.Accelerate(10)
	assert.NoError(t, err)
	assert.Equal(t, 10.0, speed)

	assert.NoError(t, v.EngageTurbo())
	assert.Equal(t, SportsTurboMaxSpeed, v.MaxSpeed())
	assert.ErrorIs(t, v.EngageTurbo(), ErrTurboEngaged)

	// Turbo on: the 1.8 boost applies.
	speed, err = v.Accelerate(10)
	assert.NoError(t, err)
	assert.Equal(t, 28.0, speed)
}

func TestSportsCar_DisengageTurboClampsSpeed(t *testing.T) {
	v := mustSportsCar(t)
	assert.NoError(t, v.TurnOn())
	assert.NoError(t, v.EngageTurbo())

	for v.Speed < SportsBaseMaxSpeed {
		_, err := v.Accelerate(50)
		assert.NoError(t, err)
	}
	assert.Greater(t, v.Speed, SportsBaseMaxSpeed)

	limited, err := v.DisengageTurbo()
	assert.NoError(t, err)
	assert.True(t, limited)
	assert.Equal(t, SportsBaseMaxSpeed, v.Speed)

	_, err = v.DisengageTurbo()
	assert.ErrorIs(t, err, ErrTurboNotEngaged)
}

func TestSportsCar_DisengageTurboBelowBase(t *testing.T) {
	v := mustSportsCar(t)
	assert.NoError(t, v.TurnOn())
	assert.NoError(t, v.EngageTurbo())

	_, err := v.Accelerate(10)
	assert.NoError(t, err)

	limited, err := v.DisengageTurbo()
	assert.NoError(t, err)
	assert.False(t, limited)
	assert.Equal(t, 18.0, v.Speed)
}

func TestTruck_Cargo(t *testing.T) {
	v := mustTruck(t, 1000)

	assert.ErrorIs(t, v.LoadCargo(1200), ErrOverCapacity)
	assert.Zero(t, v.Cargo.Current)

	assert.NoError(t, v.LoadCargo(800))
	assert.Equal(t, 800.0, v.Cargo.Current)

	assert.NoError(t, v.TurnOn())
	assert.ErrorIs(t, v.LoadCargo(50), ErrEngineRunning)
	assert.ErrorIs(t, v.UnloadCargo(50), ErrEngineRunning)
	assert.Equal(t, 800.0, v.Cargo.Current)
	assert.NoError(t, v.TurnOff())

	assert.ErrorIs(t, v.LoadCargo(0), ErrInvalidAmount)
	assert.ErrorIs(t, v.UnloadCargo(-5), ErrInvalidAmount)

	assert.ErrorIs(t, v.UnloadCargo(900), ErrInsufficientCargo)
	assert.NoError(t, v.UnloadCargo(800))
	assert.Zero(t, v.Cargo.Current)
}

func TestTruck_LoadSlowsAcceleration(t *testing.T) {
	v := mustTruck(t, 1000)
	assert.NoError(t, v.LoadCargo(800))
	assert.NoError(t, v.TurnOn())

	// factor = 1 - 800/2000 = 0.6
	speed, err := v.Accelerate(10)
	assert.NoError(t, err)
	assert.InDelta(t, 6.0, speed, 1e-9)

	empty := mustTruck(t, 1000)
	assert.NoError(t, empty.TurnOn())
	speed, err = empty.Accelerate(10)
	assert.NoError(t, err)
	assert.Equal(t, 10.0, speed)
}

func TestVehicle_WrongKindOperations(t *testing.T) {
	car := mustCar(t)
	assert.ErrorIs(t, car.EngageTurbo(), ErrNotSportsCar)
	_, err := car.DisengageTurbo()
	assert.ErrorIs(t, err, ErrNotSportsCar)
	assert.ErrorIs(t, car.LoadCargo(10), ErrNotTruck)
	assert.ErrorIs(t, car.UnloadCargo(10), ErrNotTruck)

	truck := mustTruck(t, 500)
	assert.ErrorIs(t, truck.EngageTurbo(), ErrNotSportsCar)
}

func TestVehicle_AddMaintenance(t *testing.T) {
	v := mustCar(t)

	bad := NewMaintenance("2026-08-31", "oil change", nil, "", StatusCompleted)
	assert.ErrorIs(t, v.AddMaintenance(bad, testToday), ErrInvalidCost)
	assert.Empty(t, v.History)

	// Insertion order should not matter for the final ordering.
	for _, m := range []Maintenance{
		NewMaintenance("2026-01-10", "inspection", costOf(30), "", StatusCompleted),
		NewMaintenance("garbage", "mystery", nil, "", StatusScheduled),
		NewMaintenance("2026-08-20", "oil change", costOf(50), "", StatusCompleted),
		NewMaintenance("2026-05-05", "tires", nil, "", StatusScheduled),
	} {
		if m.Validate(testToday) == nil {
			assert.NoError(t, v.AddMaintenance(m, testToday))
		} else {
			v.History = append(v.History, m)
			SortByDateDesc(v.History)
		}
	}

	assert.Equal(t, []string{"2026-08-20", "2026-05-05", "2026-01-10", "garbage"}, dates(v.History))
}

func TestVehicle_PartitionHistory(t *testing.T) {
	v := mustCar(t)
	v.History = []Maintenance{
		{Date: "2026-08-20", ServiceType: "oil change", Cost: costOf(50), Status: StatusCompleted},
		{Date: "2026-09-20", ServiceType: "inspection", Status: StatusScheduled},
		{Date: "2026-09-05", ServiceType: "tires", Status: StatusScheduled},
		{Date: "2026-09-01", ServiceType: "wash", Status: StatusScheduled},
		{Date: "2026-07-01", ServiceType: "brakes", Status: StatusScheduled},
		{Date: "whenever", ServiceType: "mystery", Status: StatusScheduled},
	}

	buckets := v.PartitionHistory(testToday)

	assert.Equal(t, []string{"2026-08-20"}, dates(buckets.Completed))
	// Today counts as upcoming, ordered soonest-first.
	assert.Equal(t, []string{"2026-09-01", "2026-09-05", "2026-09-20"}, dates(buckets.ScheduledFuture))
	assert.Equal(t, []string{"2026-07-01", "whenever"}, dates(buckets.ScheduledPast))

	// Pure query: the stored history keeps its descending order.
	assert.Len(t, v.History, 6)
}

func TestVehicle_Describe(t *testing.T) {
	truck := mustTruck(t, 1000)
	assert.NoError(t, truck.LoadCargo(250))
	text := truck.Describe()
	assert.Contains(t, text, "Truck")
	assert.Contains(t, text, "1000 kg")
	assert.Contains(t, text, "250 kg")

	sports := mustSportsCar(t)
	assert.Contains(t, sports.Describe(), "Turbo: disengaged")
	assert.Equal(t, "Ferrari (red)", sports.ListLabel())
}
