package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/slotbook/service-booking/pkg/domain"
)

var customerNameRegex = regexp.MustCompile(`^[A-Za-z\s'-]+$`)

var (
	// OpeningTime and ClosingTime bound the bookable window, both inclusive.
	OpeningTime = MustTimeOfDay(8, 0, 0)
	ClosingTime = MustTimeOfDay(20, 0, 0)
)

// Input holds the raw, unvalidated fields of a create or update request.
type Input struct {
	CustomerName  string  `validate:"required,customer_name"`
	CustomerEmail string  `validate:"required,email"`
	CustomerPhone string  `validate:"required,number"`
	Date          string  `validate:"required"`
	Time          string  `validate:"required"`
	Description   *string `validate:"omitempty"`
}

// fieldNames maps Input struct fields to their wire names.
var fieldNames = map[string]string{
	"CustomerName":  "customer_name",
	"CustomerEmail": "customer_email",
	"CustomerPhone": "customer_phone",
	"Date":          "date",
	"Time":          "time",
	"Description":   "description",
}

// Validator checks booking input against the booking rules. It is safe for
// concurrent use.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithClock sets the clock used to decide what "today" is.
func WithClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) { v.now = now }
}

// NewValidator creates a Validator using the local clock by default.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("customer_name", validateCustomerName); err != nil {
		panic(fmt.Sprintf("booking: register customer_name validation: %v", err))
	}

	bv := &Validator{validate: v, now: time.Now}
	for _, opt := range opts {
		opt(bv)
	}
	return bv
}

func validateCustomerName(fl validator.FieldLevel) bool {
	return customerNameRegex.MatchString(fl.Field().String())
}

// Validate returns validated Details, or a validation DomainError listing
// every offending field.
func (v *Validator) Validate(in Input) (Details, error) {
	var fieldErrs []domain.FieldError
	failed := make(map[string]bool)

	if err := v.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Details{}, fmt.Errorf("failed to validate booking: %w", err)
		}
		for _, fe := range verrs {
			name := fieldNames[fe.StructField()]
			failed[name] = true
			fieldErrs = append(fieldErrs, domain.FieldError{Field: name, Message: translate(fe)})
		}
	}

	d := Details{
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Description:   in.Description,
	}

	if !failed["customer_phone"] {
		phone, err := strconv.ParseInt(in.CustomerPhone, 10, 64)
		if err != nil {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "customer_phone", Message: "customer_phone is too long"})
		} else {
			d.CustomerPhone = phone
		}
	}

	if !failed["date"] {
		date, err := ParseDate(in.Date)
		switch {
		case err != nil:
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
		case date.Before(DateOf(v.now())):
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "date", Message: "past date: cannot book past dates"})
		default:
			d.Date = date
		}
	}

	if !failed["time"] {
		tod, err := ParseTimeOfDay(in.Time)
		switch {
		case err != nil:
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "time", Message: "time must be in HH:MM or HH:MM:SS format"})
		case tod.Before(OpeningTime) || tod.After(ClosingTime):
			fieldErrs = append(fieldErrs, domain.FieldError{
				Field:   "time",
				Message: fmt.Sprintf("outside allowed window: bookings are allowed between %s and %s", OpeningTime, ClosingTime),
			})
		default:
			d.Time = tod
		}
	}

	if len(fieldErrs) > 0 {
		return Details{}, domain.NewFieldValidationError("invalid booking", fieldErrs...)
	}
	return d, nil
}

func translate(fe validator.FieldError) string {
	name := fieldNames[fe.StructField()]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "customer_name":
		return "customer_name may contain only letters, spaces, apostrophes and hyphens"
	case "email":
		return "customer_email must be a valid email address"
	case "number":
		return "customer_phone must contain only digits"
	default:
		return fe.Error()
	}
}
