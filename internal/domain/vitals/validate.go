package vitals

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// FieldCount is the number of comma-separated fields in one vitals line.
const FieldCount = 8

const minYear = 1900

type intRange struct {
	rule     Rule
	min, max int
}

var (
	heartRateRange       = intRange{RuleHeartRate, 30, 180}
	respiratoryRateRange = intRange{RuleRespiratoryRate, 5, 40}
	systolicRange        = intRange{RuleSystolicBP, 70, 200}
	diastolicRange       = intRange{RuleDiastolicBP, 40, 120}
	oxygenRange          = intRange{RuleOxygenSaturation, 70, 100}
)

func (r intRange) check(v int) error {
	if v < r.min || v > r.max {
		return invalid(r.rule, strconv.Itoa(v))
	}
	return nil
}

func (r intRange) parse(raw string) (int, error) {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(r.rule, raw)
	}
	return v, r.check(v)
}

// ParseLine validates one raw line of the vitals file and returns the
// patient id and visit it describes.
func ParseLine(line string) (int, Visit, error) {
	trimmed := strings.TrimRight(line, " \t\r\n")
	id, v, err := ValidateFields(strings.Split(trimmed, ","))
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Line = trimmed
		}
		return 0, Visit{}, err
	}
	return id, v, nil
}

// ValidateFields validates a pre-split record in file order:
// patientId, date, temperature, hr, rr, sbp, dbp, spo2.
func ValidateFields(fields []string) (int, Visit, error) {
	if len(fields) != FieldCount {
		return 0, Visit{}, invalid(RuleFieldCount, strconv.Itoa(len(fields)))
	}
	raw := make([]string, len(fields))
	for i, f := range fields {
		raw[i] = strings.TrimSpace(f)
	}
	fields = raw

	var v Visit
	var err error
	if v.Date, err = parseDate(fields[1]); err != nil {
		return 0, Visit{}, err
	}
	if v.Temperature, err = parseTemperature(fields[2]); err != nil {
		return 0, Visit{}, err
	}
	if v.HeartRate, err = heartRateRange.parse(fields[3]); err != nil {
		return 0, Visit{}, err
	}
	if v.RespiratoryRate, err = respiratoryRateRange.parse(fields[4]); err != nil {
		return 0, Visit{}, err
	}
	if v.SystolicBP, err = systolicRange.parse(fields[5]); err != nil {
		return 0, Visit{}, err
	}
	if v.DiastolicBP, err = diastolicRange.parse(fields[6]); err != nil {
		return 0, Visit{}, err
	}
	if v.OxygenSaturation, err = oxygenRange.parse(fields[7]); err != nil {
		return 0, Visit{}, err
	}

	id, err := parsePatientID(fields[0])
	if err != nil {
		return 0, Visit{}, err
	}
	return id, v, nil
}

// ValidateVisit validates already-typed visit fields. With strictDate the date
// must also be exactly yyyy-mm-dd (10 characters, hyphens at 4 and 7).
func ValidateVisit(patientID int, in VisitInput, strictDate bool) (Visit, error) {
	date := strings.TrimSpace(in.Date)
	if strictDate && !hasDateShape(date) {
		return Visit{}, invalid(RuleDateFormat, date)
	}

	v := Visit{
		HeartRate:        in.HeartRate,
		RespiratoryRate:  in.RespiratoryRate,
		SystolicBP:       in.SystolicBP,
		DiastolicBP:      in.DiastolicBP,
		OxygenSaturation: in.OxygenSaturation,
	}
	var err error
	if v.Date, err = parseDate(date); err != nil {
		return Visit{}, err
	}
	if v.Temperature, err = checkTemperature(in.Temperature); err != nil {
		return Visit{}, err
	}
	checks := []struct {
		r intRange
		v int
	}{
		{heartRateRange, v.HeartRate},
		{respiratoryRateRange, v.RespiratoryRate},
		{systolicRange, v.SystolicBP},
		{diastolicRange, v.DiastolicBP},
		{oxygenRange, v.OxygenSaturation},
	}
	for _, c := range checks {
		if err := c.r.check(c.v); err != nil {
			return Visit{}, err
		}
	}
	if patientID <= 0 {
		return Visit{}, invalid(RulePatientID, strconv.Itoa(patientID))
	}
	return v, nil
}

func hasDateShape(s string) bool {
	return len(s) == 10 && s[4] == '-' && s[7] == '-'
}

func parseDate(raw string) (VisitDate, error) {
	parts := strings.Split(raw, "-")
	if len(parts) != 3 {
		return VisitDate{}, invalid(RuleDate, raw)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return VisitDate{}, invalid(RuleDate, raw)
		}
		nums[i] = n
	}
	d := VisitDate{Year: nums[0], Month: nums[1], Day: nums[2]}
	if d.Year <= minYear || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return VisitDate{}, invalid(RuleDate, raw)
	}
	return d, nil
}

// parseTemperature accepts decimal notation only; ParseFloat's hex form is
// rejected.
func parseTemperature(raw string) (float64, error) {
	digits := strings.TrimLeft(raw, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, invalid(RuleTemperature, raw)
	}
	t, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalid(RuleTemperature, raw)
	}
	return checkTemperature(t)
}

func checkTemperature(t float64) (float64, error) {
	if math.IsNaN(t) || t < 35.0 || t > 42.0 {
		return 0, invalid(RuleTemperature, strconv.FormatFloat(t, 'g', -1, 64))
	}
	return t, nil
}

func parsePatientID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, invalid(RulePatientID, raw)
	}
	return id, nil
}
