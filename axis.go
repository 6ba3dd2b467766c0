package main

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedResponse marks a consumption response missing one of the
// fields the export pipeline depends on.
var ErrMalformedResponse = errors.New("malformed consumption response")

// wireDateLayout is the date format Enedis uses both in requests and in
// periode fields of responses.
const wireDateLayout = "02/01/2006"

type stepUnit int

const (
	unitHours stepUnit = iota
	unitDays
	unitMonths
	unitYears
)

// Granularity describes one of the four supported export resolutions: the
// calendar unit the time axis advances in, the per-point step in that unit,
// the label layout and the name of the export file.
type Granularity struct {
	Name     string
	unit     stepUnit
	step     float64
	layout   string
	fileName string
}

var (
	// GranularityHalfHour labels points every 30 minutes ("23:30").
	GranularityHalfHour = Granularity{Name: "hours", unit: unitHours, step: 0.5, layout: "15:04", fileName: "export_hours_values.json"}
	// GranularityDay labels points every day ("28 Feb 2024").
	GranularityDay = Granularity{Name: "days", unit: unitDays, step: 1, layout: "02 Jan 2006", fileName: "export_days_values.json"}
	// GranularityMonth labels points every calendar month ("Feb").
	GranularityMonth = Granularity{Name: "months", unit: unitMonths, step: 1, layout: "Jan", fileName: "export_months_values.json"}
	// GranularityYear labels points every calendar year ("2024").
	GranularityYear = Granularity{Name: "years", unit: unitYears, step: 1, layout: "2006", fileName: "export_years_values.json"}
)

// offset advances t by n units of the granularity. n is fractional only for
// the hour unit (half-hour steps); calendar units always receive whole
// counts and go through calendar arithmetic, not fixed-day durations.
func (g Granularity) offset(t time.Time, n float64) time.Time {
	switch g.unit {
	case unitHours:
		return t.Add(time.Duration(n * float64(time.Hour)))
	case unitDays:
		return t.AddDate(0, 0, int(n))
	case unitMonths:
		return addCalendarMonths(t, int(n))
	default:
		return addCalendarMonths(t, 12*int(n))
	}
}

// addCalendarMonths advances t by n calendar months, clamping the day of
// month on overflow: Jan 31 + 1 month is Feb 28 (or 29), not Mar 2 as
// time.AddDate would have it.
func addCalendarMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	m := int(month) - 1 + n
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	target := time.Month(m + 1)
	if last := daysIn(year, target); day > last {
		day = last
	}
	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	// day 0 of the next month
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// consumptionValues extracts the cleaned value sequence from res, in source
// order. Negative readings are error codes on the API side, not real
// measurements, and are clamped to zero.
func consumptionValues(res *ConsumptionResponse) ([]float64, error) {
	values := make([]float64, len(res.Graphe.Data))
	for i, point := range res.Graphe.Data {
		if point.Valeur == nil {
			return nil, fmt.Errorf("%w: data point %d has no valeur", ErrMalformedResponse, i)
		}
		v := *point.Valeur
		if v < 0 {
			v = 0
		}
		values[i] = v
	}
	return values, nil
}

// timeAxis generates one formatted label per data point. dateDebut is the
// reference date of the reported window and decalage says how many steps the
// first point precedes it, so the first instant is dateDebut minus decalage
// steps and every following label advances by one step.
func timeAxis(res *ConsumptionResponse, g Granularity) ([]string, error) {
	debut := res.Graphe.Periode.DateDebut
	if debut == "" {
		return nil, fmt.Errorf("%w: missing periode.dateDebut", ErrMalformedResponse)
	}
	queried, err := time.Parse(wireDateLayout, debut)
	if err != nil {
		return nil, fmt.Errorf("parsing dateDebut %q: %w", debut, err)
	}

	start := g.offset(queried, -float64(res.Graphe.Decalage)*g.step)

	labels := make([]string, len(res.Graphe.Data))
	for i := range labels {
		labels[i] = g.offset(start, float64(i)*g.step).Format(g.layout)
	}
	return labels, nil
}
