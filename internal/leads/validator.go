package leads

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nameRe  = regexp.MustCompile(`^[A-Za-z .]+$`)
	phoneRe = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Validate checks a raw form submission and returns a normalized Lead, or the
// full list of field errors. Every field is checked independently so the
// caller can report all problems at once. Input is untrusted: wrong-typed
// values are treated as invalid, never panicked on.
func Validate(raw map[string]any) (*Lead, []string) {
	var errs []string

	name := trimmedString(raw["name"])
	if len(name) < 2 {
		errs = append(errs, "Name must be at least 2 characters")
	}
	if len(name) > 50 {
		errs = append(errs, "Name must be less than 50 characters")
	}
	if !nameRe.MatchString(name) {
		errs = append(errs, "Name can only contain letters, spaces, and periods")
	}

	age, ageOK := parseAge(raw["age"])
	if !ageOK || age < 1 || age > 120 {
		errs = append(errs, "Age must be between 1 and 120")
	}

	phone := stripNonDigits(raw["phone"])
	if !phoneRe.MatchString(phone) {
		errs = append(errs, "Phone must be a valid 10-digit Indian mobile number")
	}

	city := strings.ToLower(trimmedString(raw["city"]))
	if !isValidCity(city) {
		errs = append(errs, "City must be one of: Vizag, Tirupati, Kakinada")
	}

	service := trimmedString(raw["service"])
	if service == "" {
		service = DefaultService
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Lead{
		Name:    name,
		Age:     age,
		Phone:   phone,
		City:    city,
		Service: service,
	}, nil
}

func trimmedString(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// parseAge accepts the age as either a JSON string ("34") or number (34).
func parseAge(v any) (int, bool) {
	switch age := v.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(age))
		if err != nil {
			return 0, false
		}
		return n, true
	case float64:
		if age != float64(int(age)) {
			return 0, false
		}
		return int(age), true
	default:
		return 0, false
	}
}

func stripNonDigits(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func isValidCity(city string) bool {
	for _, c := range ValidCities {
		if c == city {
			return true
		}
	}
	return false
}
