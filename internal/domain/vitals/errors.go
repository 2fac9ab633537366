package vitals

import (
	"errors"
	"fmt"
)

var (
	ErrSourceUnavailable = errors.New("vitals source unavailable")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrNoData            = errors.New("no visits in scope")
	ErrMalformedQuery    = errors.New("malformed query parameter")
)

// Rule names a single validation rule applied to a visit record.
type Rule string

const (
	RuleFieldCount       Rule = "field_count"
	RuleDateFormat       Rule = "date_format"
	RuleDate             Rule = "date"
	RuleTemperature      Rule = "temperature"
	RuleHeartRate        Rule = "heart_rate"
	RuleRespiratoryRate  Rule = "respiratory_rate"
	RuleSystolicBP       Rule = "systolic_bp"
	RuleDiastolicBP      Rule = "diastolic_bp"
	RuleOxygenSaturation Rule = "oxygen_saturation"
	RulePatientID        Rule = "patient_id"
	RuleLineLength       Rule = "line_length"
)

var ruleMessages = map[Rule]string{
	RuleFieldCount:       "invalid number of fields",
	RuleDateFormat:       "invalid date format, expected yyyy-mm-dd",
	RuleDate:             "invalid date",
	RuleTemperature:      "invalid temperature value, expected 35.0-42.0 C",
	RuleHeartRate:        "invalid heart rate value, expected 30-180 bpm",
	RuleRespiratoryRate:  "invalid respiratory rate value, expected 5-40 bpm",
	RuleSystolicBP:       "invalid systolic blood pressure value, expected 70-200 mmHg",
	RuleDiastolicBP:      "invalid diastolic blood pressure value, expected 40-120 mmHg",
	RuleOxygenSaturation: "invalid oxygen saturation value, expected 70-100%",
	RulePatientID:        "invalid patient id, expected a positive integer",
	RuleLineLength:       "line too long",
}

// ValidationError reports the first rule a record violated. Line is set when
// the record came from the flat file.
type ValidationError struct {
	Rule  Rule   `json:"rule"`
	Value string `json:"value"`
	Line  string `json:"line,omitempty"`
}

func (e *ValidationError) Error() string {
	msg := ruleMessages[e.Rule]
	if msg == "" {
		msg = string(e.Rule)
	}
	msg = fmt.Sprintf("%s (%s)", msg, e.Value)
	if e.Line != "" {
		msg += " in line: " + e.Line
	}
	return msg
}

func invalid(rule Rule, value string) *ValidationError {
	return &ValidationError{Rule: rule, Value: value}
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
