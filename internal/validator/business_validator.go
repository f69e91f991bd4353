package validator

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campus-qa/access-control-service/internal/models"
)

// BusinessValidator handles business rule validation on top of the struct
// tags: custom token rules and the request-status transition table.
type BusinessValidator struct {
	validate *validator.Validate
}

// ValidationError represents a single business validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// AuditDateLayouts are the accepted formats for the close-entry date.
var AuditDateLayouts = []string{"2006-01-02", time.RFC3339}

// ParseAuditDate parses a close-entry date in any accepted layout.
func ParseAuditDate(value string) (time.Time, error) {
	for _, layout := range AuditDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// NewBusinessValidator creates a validator with the domain rules registered.
func NewBusinessValidator() *BusinessValidator {
	bv := &BusinessValidator{validate: validator.New()}
	bv.registerBusinessRules()
	return bv
}

// Validate validates a struct against tag rules and converts failures into
// ValidationErrors.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	var errs ValidationErrors

	err := bv.validate.Struct(s)
	if err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			errs = append(errs, ValidationError{
				Field:   fe.Field(),
				Message: bv.errorMessage(fe),
				Value:   fe.Value(),
				Rule:    fe.Tag(),
			})
		}
	}
	return errs
}

// ValidateStatusTransition validates an access-request status change against
// the allowed transition table. Closed is terminal; reopening creates a new
// record instead of transitioning the old one.
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.RequestStatus) ValidationErrors {
	allowedTransitions := map[models.RequestStatus][]models.RequestStatus{
		models.RequestPending:  {models.RequestApproved, models.RequestDenied},
		models.RequestApproved: {models.RequestClosed},
		models.RequestDenied:   {models.RequestClosed},
		models.RequestClosed:   {},
	}

	for _, allowed := range allowedTransitions[current] {
		if next == allowed {
			return nil
		}
	}
	return ValidationErrors{{
		Field:   "status",
		Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
		Value:   next,
		Rule:    "status_transition",
	}}
}

// registerBusinessRules registers custom domain validators.
func (bv *BusinessValidator) registerBusinessRules() {
	// Capability token validation (case-sensitive, Restricted excluded)
	bv.validate.RegisterValidation("capability", func(fl validator.FieldLevel) bool {
		return models.IsValidCapability(models.Capability(fl.Field().String()))
	})

	// Flag target type validation
	bv.validate.RegisterValidation("flag_target", func(fl validator.FieldLevel) bool {
		return models.IsValidFlagTarget(models.FlagTargetType(fl.Field().String()))
	})

	// Trust weight range validation (0-5; zero means removal)
	bv.validate.RegisterValidation("trust_weight", func(fl validator.FieldLevel) bool {
		w := fl.Field().Int()
		return w >= models.TrustWeightMin && w <= int64(models.TrustWeightMax)
	})

	// Non-blank text validation (required only rejects the empty string)
	bv.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	// Close-entry date validation
	bv.validate.RegisterValidation("audit_date", func(fl validator.FieldLevel) bool {
		_, err := ParseAuditDate(fl.Field().String())
		return err == nil
	})
}

func (bv *BusinessValidator) errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "capability":
		return "is not a selectable capability"
	case "flag_target":
		return "is not a flaggable content type"
	case "trust_weight":
		return fmt.Sprintf("must be between %d and %d", models.TrustWeightMin, models.TrustWeightMax)
	case "audit_date":
		return "is not a recognized date"
	case "max":
		return fmt.Sprintf("exceeds maximum length %s", fe.Param())
	case "min":
		return fmt.Sprintf("is below minimum %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
