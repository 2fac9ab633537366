package vitals

import "fmt"

// PatientReportLines renders patient records as a human-readable listing.
func PatientReportLines(records []PatientRecord) []string {
	lines := []string{}
	for _, rec := range records {
		lines = append(lines, fmt.Sprintf("Patient ID: %d", rec.PatientID))
		for _, v := range rec.Visits {
			lines = append(lines,
				fmt.Sprintf(" Visit Date: %s", v.Date),
				fmt.Sprintf("  Temperature: %.2f C", v.Temperature),
				fmt.Sprintf("  Heart Rate: %d bpm", v.HeartRate),
				fmt.Sprintf("  Respiratory Rate: %d bpm", v.RespiratoryRate),
				fmt.Sprintf("  Systolic Blood Pressure: %d mmHg", v.SystolicBP),
				fmt.Sprintf("  Diastolic Blood Pressure: %d mmHg", v.DiastolicBP),
				fmt.Sprintf("  Oxygen Saturation: %d %%", v.OxygenSaturation),
			)
		}
	}
	return lines
}

// Title names the scope of the statistics.
func (s *VitalStats) Title() string {
	if s.AllPatients {
		return "Vital Signs for All Patients"
	}
	return fmt.Sprintf("Vital Signs for Patient %d", s.PatientID)
}

// Rows returns label, two-decimal mean and unit for each vital sign.
func (s *VitalStats) Rows() [][3]string {
	f := func(v float64) string { return fmt.Sprintf("%.2f", v) }
	return [][3]string{
		{"Average temperature", f(s.AvgTemperature), "C"},
		{"Average heart rate", f(s.AvgHeartRate), "bpm"},
		{"Average respiratory rate", f(s.AvgRespiratoryRate), "bpm"},
		{"Average systolic blood pressure", f(s.AvgSystolicBP), "mmHg"},
		{"Average diastolic blood pressure", f(s.AvgDiastolicBP), "mmHg"},
		{"Average oxygen saturation", f(s.AvgOxygenSaturation), "%"},
	}
}

// StatsReportLines renders statistics with means to two decimals.
func StatsReportLines(s *VitalStats) []string {
	lines := []string{s.Title() + ":"}
	for _, row := range s.Rows() {
		lines = append(lines, fmt.Sprintf("  %s: %s %s", row[0], row[1], row[2]))
	}
	return lines
}
