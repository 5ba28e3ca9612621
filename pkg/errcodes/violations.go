package errcodes

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldViolation is a single failed rule for a submitted field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationFailure carries every violation found in a submission, in the
// order the fields were declared.
type ValidationFailure struct {
	Violations []FieldViolation
}

func (vf *ValidationFailure) Error() string {
	msgs := make([]string, 0, len(vf.Violations))
	for _, v := range vf.Violations {
		msgs = append(msgs, v.Message)
	}
	return strings.Join(msgs, "; ")
}

// Add appends a violation for field.
func (vf *ValidationFailure) Add(field, message string) {
	vf.Violations = append(vf.Violations, FieldViolation{Field: field, Message: message})
}

// Has reports whether field has at least one violation.
func (vf *ValidationFailure) Has(field string) bool {
	for _, v := range vf.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// Err returns nil when there are no violations.
func (vf *ValidationFailure) Err() error {
	if vf == nil || len(vf.Violations) == 0 {
		return nil
	}
	return vf
}

// AsValidationFailure unwraps err into a ValidationFailure if it is one.
func AsValidationFailure(err error) (*ValidationFailure, bool) {
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return vf, true
	}
	return nil, false
}
