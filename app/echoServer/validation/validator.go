package validation

import (
	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

// New wraps the shared validator instance so echo's c.Validate uses the
// same rules as the controllers.
func New(v *validator.Validate) *Validator {
	return &Validator{v: v}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}
