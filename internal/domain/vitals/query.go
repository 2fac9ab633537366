package vitals

import (
	"fmt"
	"strconv"
	"strings"
)

// AllPatients selects every patient in listing and statistics queries.
const AllPatients = 0

const minFilterYear = 1990

// GetPatient returns the record of a single patient.
func GetPatient(store *VisitStore, patientID int) (PatientRecord, error) {
	rec, ok := store.Get(patientID)
	if !ok {
		return PatientRecord{}, fmt.Errorf("patient %d: %w", patientID, ErrPatientNotFound)
	}
	return rec, nil
}

// ListPatients returns the record of patientID, or every record in store
// order when patientID is AllPatients.
func ListPatients(store *VisitStore, patientID int) ([]PatientRecord, error) {
	switch {
	case patientID < 0:
		return nil, fmt.Errorf("patient id %d: %w", patientID, ErrMalformedQuery)
	case patientID == AllPatients:
		return store.Records(), nil
	}
	rec, err := GetPatient(store, patientID)
	if err != nil {
		return nil, err
	}
	return []PatientRecord{rec}, nil
}

// VitalStats holds the mean of each vital sign over the visits in scope.
type VitalStats struct {
	PatientID           int     `json:"patient_id"`
	AllPatients         bool    `json:"all_patients"`
	NumVisits           int     `json:"num_visits"`
	AvgTemperature      float64 `json:"avg_temperature"`
	AvgHeartRate        float64 `json:"avg_heart_rate"`
	AvgRespiratoryRate  float64 `json:"avg_respiratory_rate"`
	AvgSystolicBP       float64 `json:"avg_systolic_bp"`
	AvgDiastolicBP      float64 `json:"avg_diastolic_bp"`
	AvgOxygenSaturation float64 `json:"avg_oxygen_saturation"`
}

// ComputeStats averages the vitals of one patient, or of every visit of every
// patient pooled together when patientID is AllPatients.
func ComputeStats(store *VisitStore, patientID int) (*VitalStats, error) {
	if patientID < 0 {
		return nil, fmt.Errorf("patient id %d: %w", patientID, ErrMalformedQuery)
	}
	if patientID != AllPatients && !store.Has(patientID) {
		return nil, fmt.Errorf("patient %d: %w", patientID, ErrPatientNotFound)
	}

	stats := &VitalStats{PatientID: patientID, AllPatients: patientID == AllPatients}
	var temp float64
	var hr, rr, sbp, dbp, spo2 int
	store.Each(func(id int, v Visit) bool {
		if !stats.AllPatients && id != patientID {
			return true
		}
		stats.NumVisits++
		temp += v.Temperature
		hr += v.HeartRate
		rr += v.RespiratoryRate
		sbp += v.SystolicBP
		dbp += v.DiastolicBP
		spo2 += v.OxygenSaturation
		return true
	})
	if stats.NumVisits == 0 {
		return nil, ErrNoData
	}

	n := float64(stats.NumVisits)
	stats.AvgTemperature = temp / n
	stats.AvgHeartRate = float64(hr) / n
	stats.AvgRespiratoryRate = float64(rr) / n
	stats.AvgSystolicBP = float64(sbp) / n
	stats.AvgDiastolicBP = float64(dbp) / n
	stats.AvgOxygenSaturation = float64(spo2) / n
	return stats, nil
}

// DateFilter restricts FindVisitsByDate. A nil field is not filtered on.
type DateFilter struct {
	Year  *int
	Month *int
}

// ParseDateFilter builds a DateFilter from optional textual year and month.
// Empty strings leave the field unset; non-numeric input is malformed.
func ParseDateFilter(year, month string) (DateFilter, error) {
	var f DateFilter
	if year = strings.TrimSpace(year); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return DateFilter{}, fmt.Errorf("year %q: %w", year, ErrMalformedQuery)
		}
		f.Year = &y
	}
	if month = strings.TrimSpace(month); month != "" {
		m, err := strconv.Atoi(month)
		if err != nil {
			return DateFilter{}, fmt.Errorf("month %q: %w", month, ErrMalformedQuery)
		}
		f.Month = &m
	}
	return f, nil
}

// valid reports whether the filter selects anything. A month without a year,
// a year before 1990 or wider than four digits, and a month outside 1-12 are
// all rejected.
func (f DateFilter) valid() bool {
	switch {
	case f.Year == nil && f.Month == nil:
		return true
	case f.Year == nil:
		return false
	case f.Month == nil:
		return *f.Year >= minFilterYear && *f.Year <= 9999
	default:
		return *f.Year >= minFilterYear && *f.Month >= 1 && *f.Month <= 12
	}
}

func (f DateFilter) match(d VisitDate) bool {
	if f.Year != nil && d.Year != *f.Year {
		return false
	}
	if f.Month != nil && d.Month != *f.Month {
		return false
	}
	return true
}

// FindVisitsByDate returns the visits matching the filter in store order. An
// invalid filter yields an empty result.
func FindVisitsByDate(store *VisitStore, f DateFilter) []PatientVisit {
	out := []PatientVisit{}
	if !f.valid() {
		return out
	}
	store.Each(func(id int, v Visit) bool {
		if f.match(v.Date) {
			out = append(out, PatientVisit{PatientID: id, Visit: v})
		}
		return true
	})
	return out
}

// FindFollowUpCandidates returns, once each and in first-occurrence order,
// the patients with at least one visit outside the normal vital ranges.
func FindFollowUpCandidates(store *VisitStore) []int {
	out := []int{}
	seen := make(map[int]bool)
	store.Each(func(id int, v Visit) bool {
		if !seen[id] && v.NeedsFollowUp() {
			seen[id] = true
			out = append(out, id)
		}
		return true
	})
	return out
}

// FollowUpReport pairs the follow-up candidates with their out-of-range
// visits, both taken from the same store.
type FollowUpReport struct {
	PatientIDs []int          `json:"patient_ids"`
	Visits     []PatientVisit `json:"visits"`
}

func BuildFollowUpReport(store *VisitStore) FollowUpReport {
	visits := []PatientVisit{}
	store.Each(func(id int, v Visit) bool {
		if v.NeedsFollowUp() {
			visits = append(visits, PatientVisit{PatientID: id, Visit: v})
		}
		return true
	})
	return FollowUpReport{PatientIDs: FindFollowUpCandidates(store), Visits: visits}
}
