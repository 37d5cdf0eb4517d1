package logging

import "strings"

// Fields that may carry patient-identifying data. Values under these keys are
// replaced before any log call writes them.
var sensitiveKeys = map[string]struct{}{
	"name":    {},
	"phone":   {},
	"age":     {},
	"patient": {},
	"mobile":  {},
	"email":   {},
}

const redactedValue = "[REDACTED]"

// Redact returns a copy of attrs with patient-identifying values replaced.
// attrs is the usual alternating key/value list passed to slog; non-string
// keys are left untouched.
func Redact(attrs ...any) []any {
	out := make([]any, len(attrs))
	copy(out, attrs)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if _, sensitive := sensitiveKeys[strings.ToLower(key)]; sensitive {
			out[i+1] = redactedValue
		}
	}
	return out
}

// IsSensitiveKey reports whether a field name is treated as patient data.
func IsSensitiveKey(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(key)]
	return ok
}
