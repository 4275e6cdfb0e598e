package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/agro-payroll/internal/config"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/concept"
	"github.com/cmlabs-hris/agro-payroll/internal/domain/payroll"
	"github.com/cmlabs-hris/agro-payroll/internal/handler/http/response"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/jwt"
	"github.com/cmlabs-hris/agro-payroll/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestSecret    = "test-secret-key-for-jwt"
	handlerTestPayrollID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
)

type stubPayrollService struct {
	calcErr error
	calls   int
}

func (s *stubPayrollService) Calculate(ctx context.Context, req payroll.RunPayrollRequest) (payroll.RunPayrollResponse, error) {
	s.calls++
	if err := req.Validate(); err != nil {
		return payroll.RunPayrollResponse{}, err
	}
	if s.calcErr != nil {
		return payroll.RunPayrollResponse{}, s.calcErr
	}
	return payroll.RunPayrollResponse{ExecutionID: "exec-1", PayrollID: req.PayrollID, Status: "COMPLETED", WriteCount: 3}, nil
}

func (s *stubPayrollService) ListExecutions(ctx context.Context, payrollID string) ([]payroll.ExecutionResponse, error) {
	return []payroll.ExecutionResponse{
		{ID: "exec-2", Status: "COMPLETED"},
		{ID: "exec-1", Status: "STOPPED"},
	}, nil
}

type stubPayslipService struct {
	err error
}

func (s *stubPayslipService) Generate(ctx context.Context, req payroll.RunPayrollRequest) (payroll.PayslipRunResponse, error) {
	if s.err != nil {
		return payroll.PayslipRunResponse{}, s.err
	}
	return payroll.PayslipRunResponse{PayrollID: req.PayrollID, Status: "COMPLETED", Generated: 3}, nil
}

func (s *stubPayslipService) GeneratePending(ctx context.Context) error {
	return nil
}

type routerFixture struct {
	jwt      jwt.Service
	payrolls *stubPayrollService
	payslips *stubPayslipService
	router   http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	svc, err := jwt.NewJWTService(handlerTestSecret)
	require.NoError(t, err)

	f := &routerFixture{jwt: svc, payrolls: &stubPayrollService{}, payslips: &stubPayslipService{}}
	f.router = NewRouter(
		RouterOptions{App: config.AppConfig{Env: "test", LogLevel: "error"}, FilesBasePath: t.TempDir()},
		svc,
		NewPayrollHandler(f.payrolls, f.payslips),
	)
	return f
}

func (f *routerFixture) do(t *testing.T, method, path string, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func (f *routerFixture) token(t *testing.T) string {
	t.Helper()
	token, _, err := f.jwt.GenerateTriggerToken("ops", time.Hour)
	require.NoError(t, err)
	return token
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

// ===== AUTH TESTS =====

func TestRouter_RejectsMissingToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/v1/payrolls/"+handlerTestPayrollID+"/calculate", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.payrolls.calls)
}

func TestRouter_RejectsNonTriggerToken(t *testing.T) {
	// Arrange
	f := newRouterFixture(t)
	_, token, err := f.jwt.JWTAuth().Encode(map[string]interface{}{
		"sub":  "someone",
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	// Act
	rec, body := f.do(t, http.MethodPost, "/api/v1/payrolls/"+handlerTestPayrollID+"/calculate", token)

	// Assert
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(body))
	assert.Zero(t, f.payrolls.calls)
}

// ===== PAYROLL HANDLER TESTS =====

func TestPayrollHandler_Calculate_Success(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/payrolls/"+handlerTestPayrollID+"/calculate", f.token(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "exec-1", data["execution_id"])
	assert.Equal(t, handlerTestPayrollID, data["payroll_id"])
}

func TestPayrollHandler_Calculate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", payroll.ErrPayrollNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"not calculable", fmt.Errorf("%w: status APPROVED", payroll.ErrPayrollNotCalculable), http.StatusConflict, "CONFLICT"},
		{"payslips exist", payroll.ErrPayslipsAlreadyGenerated, http.StatusConflict, "CONFLICT"},
		{"bad catalog", fmt.Errorf("%w: HEALTH reads INCOME", concept.ErrConceptDependencyOrder), http.StatusUnprocessableEntity, "PAYROLL_CONFIGURATION_ERROR"},
		{"cancelled", payroll.ErrRunCancelled, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"storage", fmt.Errorf("failed to upsert payroll details: connection reset"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.payrolls.calcErr = tt.err

			rec, body := f.do(t, http.MethodPost, "/api/v1/payrolls/"+handlerTestPayrollID+"/calculate", f.token(t))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, errorCode(body))
		})
	}
}

func TestPayrollHandler_Calculate_InvalidID(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/payrolls/not-a-uuid/calculate", f.token(t))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "must be a valid UUID", details["payroll_id"])
}

func TestPayrollHandler_GeneratePayslips(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/v1/payrolls/"+handlerTestPayrollID+"/payslips", f.token(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(3), body["data"].(map[string]any)["generated"])

	f.payslips.err = payroll.ErrPayrollNotCalculated
	rec, _ = f.do(t, http.MethodPost, "/api/v1/payrolls/"+handlerTestPayrollID+"/payslips", f.token(t))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPayrollHandler_ListExecutions(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/v1/payrolls/"+handlerTestPayrollID+"/executions", f.token(t))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["data"], 2)
	assert.Equal(t, float64(2), body["meta"].(map[string]any)["total_items"])
}

// ===== ROUTER TESTS =====

func TestRouter_HealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = f.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHandleError_ValidationErrors(t *testing.T) {
	rec := httptest.NewRecorder()

	response.HandleError(rec, validator.ValidationErrors{{Field: "payroll_id", Message: "is required"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
