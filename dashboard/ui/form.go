package ui

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"aerosafety/rbo/internal/db/repositories"
	"aerosafety/rbo/internal/models/dtos/requests"
	gormModels "aerosafety/rbo/internal/models/gorm"
	"aerosafety/rbo/internal/services"
)

// OperatorForm holds the raw form values so a rejected form can be redisplayed
type OperatorForm struct {
	Name           string
	EvaluationDate string
	Probability    string
	Severity       string
	AircraftCount  string
	MonthlyFlights string
	StationCount   string
	Inspector      string
	FindingsCount  string
}

// emptyForm prefills the evaluation date with today
func emptyForm(now time.Time) OperatorForm {
	return OperatorForm{EvaluationDate: now.Format(services.DateLayout)}
}

func formFromValues(v url.Values) OperatorForm {
	get := func(k string) string { return strings.TrimSpace(v.Get(k)) }
	return OperatorForm{
		Name:           get("name"),
		EvaluationDate: get("evaluation_date"),
		Probability:    get("probability"),
		Severity:       get("severity"),
		AircraftCount:  get("aircraft_count"),
		MonthlyFlights: get("monthly_flights"),
		StationCount:   get("station_count"),
		Inspector:      get("inspector"),
		FindingsCount:  get("findings_count"),
	}
}

func formFromOperator(op *gormModels.Operator) OperatorForm {
	itoa := strconv.Itoa
	inspector := op.Inspector
	if inspector == gormModels.DefaultInspector {
		inspector = ""
	}
	return OperatorForm{
		Name:           op.Name,
		EvaluationDate: op.EvaluationDate.UTC().Format(services.DateLayout),
		Probability:    itoa(op.Probability),
		Severity:       itoa(op.Severity),
		AircraftCount:  itoa(op.AircraftCount),
		MonthlyFlights: itoa(op.MonthlyFlights),
		StationCount:   itoa(op.StationCount),
		Inspector:      inspector,
		FindingsCount:  itoa(op.FindingsCount),
	}
}

// Input converts the form; a blank number is missing, a non-number is rejected
func (f OperatorForm) Input() (requests.OperatorInput, error) {
	in := requests.OperatorInput{
		Name:           f.Name,
		EvaluationDate: f.EvaluationDate,
		Inspector:      f.Inspector,
	}

	fields := []struct {
		name string
		raw  string
		dst  **int
	}{
		{"probability", f.Probability, &in.Probability},
		{"severity", f.Severity, &in.Severity},
		{"aircraft_count", f.AircraftCount, &in.AircraftCount},
		{"monthly_flights", f.MonthlyFlights, &in.MonthlyFlights},
		{"station_count", f.StationCount, &in.StationCount},
		{"findings_count", f.FindingsCount, &in.FindingsCount},
	}

	for _, fld := range fields {
		if fld.raw == "" {
			continue
		}
		n, err := strconv.Atoi(fld.raw)
		if err != nil {
			return in, repositories.NewValidationError(fld.name, "must be a whole number")
		}
		*fld.dst = &n
	}

	return in, nil
}
