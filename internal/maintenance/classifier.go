// Package maintenance computes the due state of recurring vehicle
// maintenance obligations. Given the last performed service and the type's
// frequency and warning margins, each configured dimension (kilometers,
// date) is classified as ok, proximo or vencido; the overall state is the
// more severe of the two.
package maintenance

import (
	"time"

	"github.com/siga-admin/siga/internal/apperr"
)

// State classifies one maintenance dimension or the overall obligation.
type State string

const (
	// StateOK means the obligation is not close to due.
	StateOK State = "ok"
	// StateProximo means the obligation falls inside the warning margin.
	StateProximo State = "proximo"
	// StateVencido means the obligation is overdue.
	StateVencido State = "vencido"
)

// severity orders states for the overall aggregation: vencido > proximo > ok.
var severity = map[State]int{
	StateOK:      0,
	StateProximo: 1,
	StateVencido: 2,
}

// worse returns the more severe of two states.
func worse(a, b State) State {
	if severity[b] > severity[a] {
		return b
	}

	return a
}

// Schedule mirrors the frequency and margin configuration of a maintenance
// type. A dimension with a nil frequency is not configured and is ignored.
type Schedule struct {
	FrequencyKM     *int
	FrequencyMonths *int
	WarnMarginKM    *int
	WarnMarginDays  *int
}

// Reference is the last performed service anchoring the computation.
type Reference struct {
	Odometer    int
	PerformedAt time.Time
}

// Status is the outcome of a classification.
type Status struct {
	// NextOdometer is the odometer reading at which the service is due;
	// nil when the km dimension is not configured.
	NextOdometer *int `json:"next_odometer,omitempty"`
	// NextDate is the date at which the service is due; nil when the date
	// dimension is not configured.
	NextDate *time.Time `json:"next_date,omitempty"`
	// KM is the state of the kilometer dimension (ok if unconfigured).
	KM State `json:"estado_km"`
	// Date is the state of the date dimension (ok if unconfigured).
	Date State `json:"estado_fecha"`
	// Overall is the more severe of KM and Date.
	Overall State `json:"estado"`
}

// ValidateSchedule rejects schedules with neither frequency configured.
func ValidateSchedule(s Schedule) error {
	if s.FrequencyKM == nil && s.FrequencyMonths == nil {
		return apperr.Validationf("maintenance type needs a km or month frequency")
	}

	if s.FrequencyKM != nil && *s.FrequencyKM <= 0 {
		return apperr.Validationf("km frequency must be positive")
	}

	if s.FrequencyMonths != nil && *s.FrequencyMonths <= 0 {
		return apperr.Validationf("month frequency must be positive")
	}

	if s.WarnMarginKM != nil && *s.WarnMarginKM < 0 {
		return apperr.Validationf("km warning margin cannot be negative")
	}

	if s.WarnMarginDays != nil && *s.WarnMarginDays < 0 {
		return apperr.Validationf("day warning margin cannot be negative")
	}

	return nil
}

// Classify computes the due state of an obligation from its schedule, the
// last performed service, the vehicle's current odometer and the current
// time.
func Classify(s Schedule, last Reference, currentKM int, now time.Time) Status {
	st := Status{KM: StateOK, Date: StateOK}

	if s.FrequencyKM != nil {
		next := last.Odometer + *s.FrequencyKM
		st.NextOdometer = &next

		margin := 0
		if s.WarnMarginKM != nil {
			margin = *s.WarnMarginKM
		}

		switch {
		case currentKM >= next:
			st.KM = StateVencido
		case next-currentKM <= margin:
			st.KM = StateProximo
		}
	}

	if s.FrequencyMonths != nil {
		next := last.PerformedAt.AddDate(0, *s.FrequencyMonths, 0)
		st.NextDate = &next

		margin := 0
		if s.WarnMarginDays != nil {
			margin = *s.WarnMarginDays
		}

		switch {
		case !now.Before(next):
			st.Date = StateVencido
		case next.Sub(now) <= time.Duration(margin)*24*time.Hour:
			st.Date = StateProximo
		}
	}

	st.Overall = worse(st.KM, st.Date)

	return st
}
