package garage

import (
	"fmt"
	"time"

	"github.com/ukydev/smart-garage/internal/models"
)

// DueLabel says how soon a scheduled appointment is.
type DueLabel string

const (
	DueToday    DueLabel = "due today"
	DueTomorrow DueLabel = "due tomorrow"
)

// Reminder is one scheduled appointment that is about to come up.
type Reminder struct {
	VehicleID   string
	Model       string
	ServiceType string
	Date        string
	Due         DueLabel
}

func (r Reminder) String() string {
	return fmt.Sprintf("%s: %s - %s", r.Due, r.ServiceType, r.Model)
}

// UpcomingReminders scans every vehicle's scheduled maintenance and returns
// the appointments falling on today or tomorrow, today's first. Pure query.
func (f *Fleet) UpcomingReminders(today time.Time) []Reminder {
	day := models.DateOnly(today)
	tomorrow := day.AddDate(0, 0, 1)

	var dueToday, dueTomorrow []Reminder
	for _, v := range f.vehicles {
		for _, m := range v.History {
			if m.Status != models.StatusScheduled {
				continue
			}
			date, ok := m.ParsedDate()
			if !ok {
				continue
			}
			reminder := Reminder{
				VehicleID:   v.ID,
				Model:       v.Model,
				ServiceType: m.ServiceType,
				Date:        m.Date,
			}
			switch {
			case date.Equal(day):
				reminder.Due = DueToday
				dueToday = append(dueToday, reminder)
			case date.Equal(tomorrow):
				reminder.Due = DueTomorrow
				dueTomorrow = append(dueTomorrow, reminder)
			}
		}
	}
	return append(dueToday, dueTomorrow...)
}
