package validator

// Validator is the entry point the services and handlers share: plain struct
// validation plus access to the business rules.
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{
		business: NewBusinessValidator(),
	}
}

// Validate runs tag-level validation and returns nil when the struct passes.
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

// GetBusinessValidator exposes the underlying business validator for rules
// that need more than struct tags.
func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}
