package http

import (
	"net/http"

	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	Calculate(w http.ResponseWriter, r *http.Request)
	GeneratePayslips(w http.ResponseWriter, r *http.Request)
	ListExecutions(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	payslipService payroll.PayslipService
}

func NewPayrollHandler(payrollService payroll.PayrollService, payslipService payroll.PayslipService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
		payslipService: payslipService,
	}
}

// Calculate runs the calculation job to completion for the payroll in the URL.
func (h *payrollHandlerImpl) Calculate(w http.ResponseWriter, r *http.Request) {
	req := payroll.RunPayrollRequest{PayrollID: chi.URLParam(r, "id")}

	result, err := h.payrollService.Calculate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll calculated", result)
}

func (h *payrollHandlerImpl) GeneratePayslips(w http.ResponseWriter, r *http.Request) {
	req := payroll.RunPayrollRequest{PayrollID: chi.URLParam(r, "id")}

	result, err := h.payslipService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payslips generated", result)
}

func (h *payrollHandlerImpl) ListExecutions(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ListExecutions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}
