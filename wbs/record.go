package wbs

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Record is a single row of a WBS worksheet.
type Record struct {
	ID             string `validate:"required,notblank"`
	Parent         string
	Type           string `validate:"required,notblank"`
	Name           string `validate:"required,notblank"`
	Description    string
	EstimatedHours string
	Row            int

	invalid error
}

var (
	ErrMissingID   = errors.New("missing WBS ID")
	ErrMissingType = errors.New("missing type")
	ErrMissingName = errors.New("missing name")
	ErrDuplicateID = errors.New("duplicate WBS ID")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	return v
}

// Validate checks that a record has the fields required to create a work package. The result
// is cached on the record, so that validation happens once at ingestion.
func (r *Record) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		r.invalid = nil
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		r.invalid = err
		return err
	}

	list := []error{}
	for _, e := range errs {
		switch e.Field() {
		case "ID":
			list = append(list, ErrMissingID)
		case "Type":
			list = append(list, ErrMissingType)
		case "Name":
			list = append(list, ErrMissingName)
		default:
			list = append(list, fmt.Errorf("invalid %v", e.Field()))
		}
	}

	r.invalid = errors.Join(list...)

	return r.invalid
}

// Eligible returns true if the record passed validation.
func (r Record) Eligible() bool {
	return r.invalid == nil
}

// Invalid returns the validation error recorded at ingestion, if any.
func (r Record) Invalid() error {
	return r.invalid
}

func (r Record) IsPhase() bool {
	return strings.EqualFold(strings.TrimSpace(r.Type), "phase")
}

// Estimate returns the estimated hours as an ISO-8601 duration e.g. PT8H or PT1H30M. An empty
// estimate (or one that rounds to zero minutes) returns "" and no error.
func (r Record) Estimate() (string, error) {
	s := strings.TrimSpace(r.EstimatedHours)
	if s == "" {
		return "", nil
	}

	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("invalid estimated hours '%v'", r.EstimatedHours)
	} else if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return "", fmt.Errorf("invalid estimated hours '%v'", r.EstimatedHours)
	} else if math.Round(hours*60) >= math.MaxInt64 {
		return "", fmt.Errorf("estimated hours '%v' out of range", r.EstimatedHours)
	}

	minutes := int64(math.Round(hours * 60))
	if minutes == 0 {
		return "", nil
	}

	h := minutes / 60
	m := minutes % 60

	if m == 0 {
		return fmt.Sprintf("PT%dH", h), nil
	}

	return fmt.Sprintf("PT%dH%dM", h, m), nil
}

func (r Record) String() string {
	return fmt.Sprintf("%v %q", r.ID, r.Name)
}
