package leads

import "time"

// Lead is a validated booking request. It is only constructed by Validate
// succeeding on every field; the handler stamps Timestamp and Source before
// handing it to the notifier. Leads are never persisted.
type Lead struct {
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Cities where home visits are offered. City input is matched
// case-insensitively and stored lower-case.
var ValidCities = []string{"vizag", "tirupati", "kakinada"}

// DefaultService is used when the form leaves the service field blank.
const DefaultService = "General Consultation"

// DefaultSource tags leads captured through the website form.
const DefaultSource = "website"
