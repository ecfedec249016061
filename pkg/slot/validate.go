package slot

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Result is the outcome of validating a present-but-possibly-malformed
// value. Malformed input never produces an error: it produces a reason the
// dialog controller turns into a retry prompt.
type Result struct {
	Valid  bool
	Reason string
}

// OK reports a passing validation.
func OK() Result { return Result{Valid: true} }

// Invalid reports a failing validation with a diagnostic reason. The reason
// is for logs and audit records, never spoken to the caller.
func Invalid(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// ValidatorFunc checks a filled slot value. Pure: no I/O, no mutation.
type ValidatorFunc func(value string) Result

var (
	zipPattern  = regexp.MustCompile(`^[0-9]{5}$`)
	ssnPattern  = regexp.MustCompile(`^[0-9]{9}$`)
	namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z '\-.]+$`)
	digitsOnly  = regexp.MustCompile(`[^0-9]`)
)

// ZipCode accepts exactly five digits, separators stripped.
func ZipCode(value string) Result {
	cleaned := digitsOnly.ReplaceAllString(value, "")
	if !zipPattern.MatchString(cleaned) {
		return Invalid("zip code must be five digits, got %d", len(cleaned))
	}
	return OK()
}

// SSN accepts nine digits and rejects the structurally reserved ranges:
// all-zero area, group or serial, area 666 and areas 900-999.
func SSN(value string) Result {
	cleaned := digitsOnly.ReplaceAllString(value, "")
	if !ssnPattern.MatchString(cleaned) {
		return Invalid("ssn must be nine digits, got %d", len(cleaned))
	}
	area, group, serial := cleaned[0:3], cleaned[3:5], cleaned[5:9]
	switch {
	case area == "000" || group == "00" || serial == "0000":
		return Invalid("ssn contains an all-zero segment")
	case area == "666":
		return Invalid("ssn area 666 is reserved")
	case area[0] == '9':
		return Invalid("ssn area %s is reserved", area)
	}
	return OK()
}

// dobLayouts are the date shapes the NLU layer is known to hand over.
var dobLayouts = []string{"2006-01-02", "01/02/2006", "January 2 2006", "January 2, 2006"}

// DateOfBirth accepts a parseable date representing a plausible living
// caller: not in the future, not older than 120 years.
func DateOfBirth(value string) Result {
	trimmed := strings.TrimSpace(value)
	var parsed time.Time
	var err error
	for _, layout := range dobLayouts {
		parsed, err = time.Parse(layout, trimmed)
		if err == nil {
			break
		}
	}
	if err != nil {
		return Invalid("unparseable date of birth %q", trimmed)
	}
	now := time.Now()
	if parsed.After(now) {
		return Invalid("date of birth is in the future")
	}
	if parsed.Before(now.AddDate(-120, 0, 0)) {
		return Invalid("date of birth is more than 120 years ago")
	}
	return OK()
}

// PersonName accepts alphabetic names with the usual punctuation.
func PersonName(value string) Result {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 2 || !namePattern.MatchString(trimmed) {
		return Invalid("name must be alphabetic")
	}
	return OK()
}

// YesNo accepts any answer that normalizes to an affirmative or negative.
func YesNo(value string) Result {
	if Normalize(value) == OutcomeInvalid {
		return Invalid("answer %q is neither yes nor no", value)
	}
	return OK()
}

// Any accepts every non-empty value; used for free-form slots.
func Any(value string) Result {
	if strings.TrimSpace(value) == "" {
		return Invalid("empty value")
	}
	return OK()
}

// validators maps the validator names usable in flow definitions.
var validators = map[string]ValidatorFunc{
	"zip":   ZipCode,
	"ssn":   SSN,
	"dob":   DateOfBirth,
	"name":  PersonName,
	"yesno": YesNo,
	"any":   Any,
}

// Validator resolves a validator by its flow-definition name.
func Validator(name string) (ValidatorFunc, bool) {
	v, ok := validators[name]
	return v, ok
}
