package vitals

import (
	"fmt"
	"strconv"
	"strings"
)

// VisitDate is a calendar date as recorded in the vitals file. Month and day
// are range-checked by the validator but not checked against each other.
type VisitDate struct {
	Year  int
	Month int
	Day   int
}

func (d VisitDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d VisitDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *VisitDate) UnmarshalText(b []byte) error {
	parsed, err := parseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Visit is one set of vital-sign measurements.
type Visit struct {
	Date             VisitDate `json:"date"`
	Temperature      float64   `json:"temperature"`
	HeartRate        int       `json:"heart_rate"`
	RespiratoryRate  int       `json:"respiratory_rate"`
	SystolicBP       int       `json:"systolic_bp"`
	DiastolicBP      int       `json:"diastolic_bp"`
	OxygenSaturation int       `json:"oxygen_saturation"`
}

// NeedsFollowUp reports whether any vital sign is outside the normal range
// used for follow-up scheduling.
func (v Visit) NeedsFollowUp() bool {
	return v.HeartRate > 100 ||
		v.HeartRate < 60 ||
		v.SystolicBP > 140 ||
		v.DiastolicBP > 90 ||
		v.OxygenSaturation < 90
}

// VisitInput carries the typed fields of a visit before validation.
type VisitInput struct {
	Date             string  `json:"date"`
	Temperature      float64 `json:"temperature"`
	HeartRate        int     `json:"heart_rate"`
	RespiratoryRate  int     `json:"respiratory_rate"`
	SystolicBP       int     `json:"systolic_bp"`
	DiastolicBP      int     `json:"diastolic_bp"`
	OxygenSaturation int     `json:"oxygen_saturation"`
}

// PatientRecord is a patient identifier with its visit history in arrival order.
type PatientRecord struct {
	PatientID int     `json:"patient_id"`
	Visits    []Visit `json:"visits"`
}

// PatientVisit pairs a visit with the patient it belongs to.
type PatientVisit struct {
	PatientID int   `json:"patient_id"`
	Visit     Visit `json:"visit"`
}

// FormatLine renders a visit in the flat-file layout:
// patientId,date,temp,hr,rr,sbp,dbp,spo2
func FormatLine(patientID int, v Visit) string {
	return strings.Join([]string{
		strconv.Itoa(patientID),
		v.Date.String(),
		formatTemperature(v.Temperature),
		strconv.Itoa(v.HeartRate),
		strconv.Itoa(v.RespiratoryRate),
		strconv.Itoa(v.SystolicBP),
		strconv.Itoa(v.DiastolicBP),
		strconv.Itoa(v.OxygenSaturation),
	}, ",")
}

// formatTemperature keeps at least one decimal so whole degrees read as 37.0.
func formatTemperature(t float64) string {
	s := strconv.FormatFloat(t, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
