package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "pidimsmart/internal/errors"
	"pidimsmart/internal/reports"
	"pidimsmart/pkg/contracts/domain"
)

// DisbursementQuery is the query string of the disbursement endpoints
type DisbursementQuery struct {
	Month  string `query:"month" validate:"required,yearmonth"`
	Branch string `query:"branch" validate:"omitempty,max=100"`
}

// CSVExportQuery is the query string of the CSV export endpoint
type CSVExportQuery struct {
	Report string `query:"report" validate:"required,report"`
}

// QueryValidator validates decoded query structs with validator tags
type QueryValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewQueryValidator creates a validator with the service's custom tags
func NewQueryValidator(logger *slog.Logger) *QueryValidator {
	v := validator.New()
	v.RegisterValidation("yearmonth", isYearMonth)
	v.RegisterValidation("report", isFixedReport)

	// Report field errors under the query parameter name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryValidator{
		validator: v,
		logger:    logger.With(slog.String("component", "query_validator")),
	}
}

// Validate checks v and returns an *apierrors.APIError listing every
// invalid parameter.
func (q *QueryValidator) Validate(v interface{}) error {
	err := q.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate query: %w", err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	q.logger.Debug("query rejected", slog.Any("errors", out))
	return apierrors.NewValidationErrors(out)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "yearmonth":
		return fmt.Sprintf("%s must be in YYYY-MM format", field)
	case "report":
		names := make([]string, len(domain.FixedReportNames))
		for i, n := range domain.FixedReportNames {
			names[i] = string(n)
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isYearMonth(fl validator.FieldLevel) bool {
	_, err := reports.ParseMonth(fl.Field().String())
	return err == nil
}

func isFixedReport(fl validator.FieldLevel) bool {
	_, ok := domain.ParseReportName(fl.Field().String())
	return ok
}
