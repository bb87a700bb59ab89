package handler

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/FateProtocol_Go/internal/domain"
)

// Custom validation tags
const (
	TagMarketType     = "market_type"
	TagPredictionSide = "prediction_side"
	TagOutcomeSide    = "outcome_side"
	TagParticipant    = "participant"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

var (
	validate     *Validator
	validateOnce sync.Once
)

// InitValidator builds the shared validator and registers the custom tags
func InitValidator() {
	validateOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation(TagMarketType, validateMarketType)
		_ = v.RegisterValidation(TagPredictionSide, validatePredictionSide)
		_ = v.RegisterValidation(TagOutcomeSide, validateOutcomeSide)
		_ = v.RegisterValidation(TagParticipant, validateParticipant)

		validate = &Validator{validate: v}
	})
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	InitValidator()
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a field -> message map
// without leaking internal struct names
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case TagMarketType:
			errs[field] = "Must be one of PriceDirection, PriceTarget, PriceRange"
		case TagPredictionSide:
			errs[field] = "Invalid prediction side"
		case TagOutcomeSide:
			errs[field] = "Must be Pass or Fail"
		case TagParticipant:
			errs[field] = fmt.Sprintf("Must be 1-%d non-blank characters", domain.MaxParticipantIDLen)
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gte", "lte", "gt", "lt":
			errs[field] = fmt.Sprintf("Out of range (%s %s)", e.Tag(), e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

func validateMarketType(fl validator.FieldLevel) bool {
	return domain.MarketType(fl.Field().String()).IsValid()
}

func validatePredictionSide(fl validator.FieldLevel) bool {
	side := domain.PredictionSide(fl.Field().String())
	for _, t := range []domain.MarketType{domain.MarketTypePriceDirection, domain.MarketTypePriceTarget, domain.MarketTypePriceRange} {
		if t.Accepts(side) {
			return true
		}
	}
	return false
}

func validateOutcomeSide(fl validator.FieldLevel) bool {
	return domain.OutcomeSide(fl.Field().String()).IsValid()
}

func validateParticipant(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	return strings.TrimSpace(id) != "" && len(id) <= domain.MaxParticipantIDLen
}
