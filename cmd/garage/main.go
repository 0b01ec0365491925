// Command garage is the terminal front end of the smart garage: every
// subcommand loads the fleet, runs one core operation and saves the result
// back to local storage.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/smart-garage/internal/garage"
	"github.com/ukydev/smart-garage/internal/models"
	"github.com/ukydev/smart-garage/internal/store"
)

const usage = `usage: garage <command> [args]

  list                                  show all vehicles
  add <kind> <model> <color> [kg]       create a vehicle (kind: car|esportivo|caminhao,
                                        kg = cargo capacity, trucks only)
  select <id>                           pick the vehicle other commands act on
  remove <id>                           delete a vehicle and its history
  on | off | honk                       ignition and horn for the selected vehicle
  gas [delta] | brake [delta]           accelerate / brake the selected vehicle
  turbo on|off                          engage / disengage the turbo (sports car)
  load <kg> | unload <kg>               cargo operations (truck, engine off)
  service <date> <type> <cost> [note]   record a completed service (date YYYY-MM-DD)
  schedule <date> <type> [note]         schedule an appointment
  history                               show the selected vehicle's maintenance
  reminders                             appointments due today or tomorrow`

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("could not load .env: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	dataDir := os.Getenv("GARAGE_DATA_DIR")
	if dataDir == "" {
		dataDir = "./garage-data"
	}

	st, cleanup, err := openStore(dataDir)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	defer cleanup()

	fleet := garage.New(nil)
	if err := fleet.Load(st); err != nil {
		log.Warnf("resetting garage: %v", err)
	}
	restoreSelection(fleet, dataDir)

	if err := run(fleet, st, dataDir, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

// openStore picks the storage backend from GARAGE_STORE (badger by
// default, "file" for a plain JSON file).
func openStore(dataDir string) (store.Store, func(), error) {
	switch driver := os.Getenv("GARAGE_STORE"); driver {
	case "", "badger":
		db, err := store.OpenBadger(filepath.Join(dataDir, "badger"))
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := db.Close(); err != nil {
				log.Errorf("failed to close badger db: %v", err)
			}
		}
		return store.NewBadgerStore(db, "GARAGE", "fleet"), cleanup, nil
	case "file":
		return store.NewFileStore(filepath.Join(dataDir, "garage.json")), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown GARAGE_STORE value %q", driver)
	}
}

func run(fleet *garage.Fleet, st store.Store, dataDir, command string, args []string) error {
	today := time.Now()

	switch command {
	case "list":
		fmt.Println(fleet.Summary())
		return nil

	case "add":
		if len(args) < 3 {
			return fmt.Errorf("usage: garage add <kind> <model> <color> [kg]")
		}
		kind := models.Kind(args[0])
		var opts garage.CreateOptions
		if len(args) > 3 {
			capacity, err := strconv.ParseFloat(args[3], 64)
			if err != nil {
				return fmt.Errorf("invalid cargo capacity %q", args[3])
			}
			opts.CargoCapacity = capacity
		}
		v, err := fleet.Create(kind, args[1], args[2], opts)
		if err != nil {
			return err
		}
		if err := fleet.Save(st); err != nil {
			return err
		}
		fmt.Printf("%s added: %s (%s)\n", v.Kind.Label(), v.ListLabel(), v.ID)
		return nil

	case "select":
		if len(args) < 1 {
			return fmt.Errorf("usage: garage select <id>")
		}
		if err := fleet.Select(args[0]); err != nil {
			return err
		}
		saveSelection(dataDir, args[0])
		fmt.Printf("selected %s\n", fleet.Selected().ListLabel())
		return nil

	case "remove":
		if len(args) < 1 {
			return fmt.Errorf("usage: garage remove <id>")
		}
		if err := fleet.Remove(args[0]); err != nil {
			return err
		}
		if fleet.Selected() == nil {
			saveSelection(dataDir, "")
		}
		if err := fleet.Save(st); err != nil {
			return err
		}
		fmt.Println("vehicle removed")
		return nil

	case "reminders":
		reminders := fleet.UpcomingReminders(today)
		if len(reminders) == 0 {
			fmt.Println("No appointments due today or tomorrow.")
			return nil
		}
		for _, r := range reminders {
			fmt.Println(r)
		}
		return nil
	}

	// Everything below acts on the selected vehicle.
	v := fleet.Selected()
	if v == nil {
		return fmt.Errorf("no vehicle selected, run: garage select <id>")
	}

	switch command {
	case "on":
		if err := v.TurnOn(); err != nil {
			return err
		}
		fmt.Printf("%s is on\n", v.Model)

	case "off":
		if err := v.TurnOff(); err != nil {
			return err
		}
		fmt.Printf("%s is off\n", v.Model)

	case "gas":
		speed, err := v.Accelerate(parseStep(args))
		if err != nil {
			return err
		}
		fmt.Printf("%s at %.0f km/h (top %.0f)\n", v.Model, speed, v.MaxSpeed())

	case "brake":
		speed := v.Brake(parseStep(args))
		fmt.Printf("%s at %.0f km/h\n", v.Model, speed)

	case "honk":
		fmt.Println(v.Honk())
		return nil // no state change, nothing to save

	case "turbo":
		if len(args) < 1 {
			return fmt.Errorf("usage: garage turbo on|off")
		}
		switch args[0] {
		case "on":
			if err := v.EngageTurbo(); err != nil {
				return err
			}
			fmt.Printf("turbo engaged, top speed %.0f km/h\n", v.MaxSpeed())
		case "off":
			limited, err := v.DisengageTurbo()
			if err != nil {
				return err
			}
			if limited {
				fmt.Printf("turbo disengaged, speed limited to %.0f km/h\n", v.Speed)
			} else {
				fmt.Println("turbo disengaged")
			}
		default:
			return fmt.Errorf("usage: garage turbo on|off")
		}

	case "load", "unload":
		if len(args) < 1 {
			return fmt.Errorf("usage: garage %s <kg>", command)
		}
		amount, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[0])
		}
		if command == "load" {
			err = v.LoadCargo(amount)
		} else {
			err = v.UnloadCargo(amount)
		}
		if err != nil {
			return err
		}
		fmt.Printf("current load: %.0f/%.0f kg\n", v.Cargo.Current, v.Cargo.Capacity)

	case "service", "schedule":
		record, err := buildRecord(command, args)
		if err != nil {
			return err
		}
		if err := v.AddMaintenance(record, today); err != nil {
			return err
		}
		fmt.Println(record.Format())

	case "history":
		buckets := v.PartitionHistory(today)
		fmt.Println(v.Describe())
		printBucket("Completed services", buckets.Completed)
		printBucket("Upcoming appointments", buckets.ScheduledFuture)
		printBucket("Overdue appointments", buckets.ScheduledPast)
		return nil

	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", command)
	}

	return fleet.Save(st)
}

func buildRecord(command string, args []string) (models.Maintenance, error) {
	if command == "service" {
		if len(args) < 3 {
			return models.Maintenance{}, fmt.Errorf("usage: garage service <date> <type> <cost> [note]")
		}
		cost, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return models.Maintenance{}, fmt.Errorf("invalid cost %q", args[2])
		}
		return models.NewMaintenance(args[0], args[1], &cost,
			strings.Join(args[3:], " "), models.StatusCompleted), nil
	}
	if len(args) < 2 {
		return models.Maintenance{}, fmt.Errorf("usage: garage schedule <date> <type> [note]")
	}
	return models.NewMaintenance(args[0], args[1], nil,
		strings.Join(args[2:], " "), models.StatusScheduled), nil
}

func printBucket(title string, records []models.Maintenance) {
	fmt.Printf("\n%s:\n", title)
	if len(records) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, m := range records {
		fmt.Printf("  %s\n", m.Format())
	}
}

func parseStep(args []string) float64 {
	if len(args) == 0 {
		return models.DefaultStep
	}
	step, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		log.Warnf("invalid step %q, using default", args[0])
		return models.DefaultStep
	}
	return step
}

// The selection is a UI concern, not part of the persisted fleet blob, so
// the CLI keeps it in a side file between invocations.
func selectionPath(dataDir string) string {
	return filepath.Join(dataDir, "selected")
}

func restoreSelection(fleet *garage.Fleet, dataDir string) {
	data, err := os.ReadFile(selectionPath(dataDir))
	if err != nil {
		return
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return
	}
	if err := fleet.Select(id); err != nil {
		log.Warnf("dropping stale selection: %v", err)
	}
}

func saveSelection(dataDir string, id string) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Warnf("failed to remember selection: %v", err)
		return
	}
	if err := os.WriteFile(selectionPath(dataDir), []byte(id), 0o644); err != nil {
		log.Warnf("failed to remember selection: %v", err)
	}
}
