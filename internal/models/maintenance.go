package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for maintenance dates.
// Dates are stored as raw text so that an unparsable value survives a
// storage round-trip instead of being silently dropped.
const DateLayout = "2006-01-02"

// MaintenanceStatus tells a performed service apart from a scheduled one.
type MaintenanceStatus string

const (
	StatusCompleted MaintenanceStatus = "Completed"
	StatusScheduled MaintenanceStatus = "Scheduled"
)

// IsValidStatus checks if a maintenance status is one of the known values.
func IsValidStatus(s MaintenanceStatus) bool {
	return s == StatusCompleted || s == StatusScheduled
}

var (
	ErrEmptyServiceType = errors.New("service type must not be empty")
	ErrMissingDate      = errors.New("maintenance date is required")
	ErrUnparsableDate   = errors.New("maintenance date is not a valid calendar date")
	ErrFutureCompleted  = errors.New("completed maintenance cannot have a future date")
	ErrInvalidCost      = errors.New("completed maintenance requires a non-negative cost")
	ErrInvalidStatus    = errors.New("invalid maintenance status")
)

// Maintenance represents a single service event or scheduled appointment
// for a vehicle. Records are immutable once added to a history.
type Maintenance struct {
	Date        string            `json:"date" msgpack:"date"`
	ServiceType string            `json:"service_type" msgpack:"service_type"`
	Cost        *float64          `json:"cost,omitempty" msgpack:"cost,omitempty"`
	Description string            `json:"description,omitempty" msgpack:"description,omitempty"`
	Status      MaintenanceStatus `json:"status" msgpack:"status"`
}

// NewMaintenance builds a maintenance record with trimmed text fields.
// Call Validate before adding the record to a vehicle history.
func NewMaintenance(date, serviceType string, cost *float64, description string, status MaintenanceStatus) Maintenance {
	return Maintenance{
		Date:        strings.TrimSpace(date),
		ServiceType: strings.TrimSpace(serviceType),
		Cost:        cost,
		Description: strings.TrimSpace(description),
		Status:      status,
	}
}

// ParsedDate returns the record date as midnight UTC, or ok=false when the
// stored text is not a valid calendar date.
func (m Maintenance) ParsedDate() (time.Time, bool) {
	if m.Date == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, m.Date, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Validate checks the record against the maintenance rules. It returns the
// first failing rule's error, or nil when the record is acceptable. The
// caller supplies "today" so that date checks stay deterministic.
func (m Maintenance) Validate(today time.Time) error {
	if m.ServiceType == "" {
		return ErrEmptyServiceType
	}
	if m.Date == "" {
		return ErrMissingDate
	}
	date, ok := m.ParsedDate()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnparsableDate, m.Date)
	}
	if m.Status == StatusCompleted {
		if date.After(DateOnly(today)) {
			return ErrFutureCompleted
		}
		if m.Cost == nil || *m.Cost < 0 {
			return ErrInvalidCost
		}
	}
	if !IsValidStatus(m.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, m.Status)
	}
	return nil
}

// Format renders the record as a one-line human-readable summary. The cost
// only shows up on completed records that actually carry one.
func (m Maintenance) Format() string {
	icon := "📅"
	if m.Status == StatusCompleted {
		icon = "🔧"
	}

	dateText := "invalid date"
	if date, ok := m.ParsedDate(); ok {
		dateText = date.Format("02/01/2006")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s on %s", icon, m.ServiceType, dateText)
	if m.Status == StatusCompleted && m.Cost != nil && *m.Cost >= 0 {
		fmt.Fprintf(&b, " - $%.2f", *m.Cost)
	}
	if m.Description != "" {
		fmt.Fprintf(&b, " (%s)", m.Description)
	}
	fmt.Fprintf(&b, " [%s]", m.Status)
	return b.String()
}

// SortByDateDesc orders records most-recent-first, used for history views.
// Records with unparsable dates always sort last.
func SortByDateDesc(records []Maintenance) {
	sort.SliceStable(records, func(i, j int) bool {
		return lessByDate(records[i], records[j], false)
	})
}

// SortByDateAsc orders records soonest-first, used for upcoming-schedule
// views. Records with unparsable dates always sort last.
func SortByDateAsc(records []Maintenance) {
	sort.SliceStable(records, func(i, j int) bool {
		return lessByDate(records[i], records[j], true)
	})
}

func lessByDate(a, b Maintenance, asc bool) bool {
	da, aok := a.ParsedDate()
	db, bok := b.ParsedDate()
	switch {
	case aok && !bok:
		return true
	case !aok:
		return false
	}
	if asc {
		return da.Before(db)
	}
	return da.After(db)
}

// DateOnly truncates a timestamp to midnight UTC so two values can be
// compared as calendar dates.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
