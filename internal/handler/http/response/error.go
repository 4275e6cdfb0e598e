package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/batch"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/calendar"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/employee"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/validator"
)

const codeConfiguration = "PAYROLL_CONFIGURATION_ERROR"

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// Lookups
	case errors.Is(err, payroll.ErrPayrollNotFound):
		NotFound(w, "Payroll not found")
	case errors.Is(err, payroll.ErrPayrollDetailNotFound):
		NotFound(w, "Payroll detail not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Lifecycle
	case errors.Is(err, payroll.ErrPayrollNotCalculable):
		Conflict(w, "Payroll status does not allow calculation")
	case errors.Is(err, payroll.ErrPayslipsAlreadyGenerated):
		Conflict(w, "Payroll already has generated payslips")
	case errors.Is(err, payroll.ErrPayrollNotCalculated):
		Conflict(w, "Payroll has not been calculated")
	case errors.Is(err, batch.ErrJobAlreadyRunning):
		Conflict(w, "A job is already running for this payroll")
	case errors.Is(err, payroll.ErrRunCancelled):
		ServiceUnavailable(w, "Payroll run was stopped and can be resumed")

	// Configuration, reported with the detail so it can be fixed
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrCompanySettingsNotFound),
		errors.Is(err, payroll.ErrInvalidCompanySettings),
		errors.Is(err, calendar.ErrCalendarDayMissing),
		errors.Is(err, concept.ErrUnknownCategory),
		errors.Is(err, concept.ErrUnknownRule),
		errors.Is(err, concept.ErrDuplicateConceptCode),
		errors.Is(err, concept.ErrConceptDependencyOrder):
		UnprocessableEntity(w, codeConfiguration, err.Error())

	// Default
	default:
		slog.Error("HTTP: Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
