package orchestrator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interop/internal/agents"
	"interop/internal/config"
	"interop/internal/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NopLogger()
	o := New(config.PipelineConfig{TimeoutScenarioDelayMs: 1}, agents.NewPipeline(log), nil, log)

	router := gin.New()
	NewHandler(o, log).RegisterRoutes(router)
	return router
}

func postSimulate(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/hl7/simulate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSimulateValidationFailureReturns200(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{"hl7": sampleADT})
	require.NoError(t, err)

	rec := postSimulate(t, router, string(body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ADT", resp.MessageType)
	assert.Equal(t, "MSG001", resp.MessageControlID)
	assert.False(t, resp.Validation.Valid)
	assert.Contains(t, resp.Validation.Errors, "Missing required segment: EVN")
	assert.Contains(t, resp.Validation.Errors, "Missing required segment: PV1")
}

func TestSimulateSuccess(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{"hl7": completeORU})
	require.NoError(t, err)

	rec := postSimulate(t, router, string(body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ORU", resp["message_type"])

	fhirSummary, ok := resp["fhir"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), fhirSummary["resource_count"])
	assert.Len(t, fhirSummary["resources"], 2)

	security, ok := resp["security"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "PHI", security["classification"])
	// the content hash is internal only
	assert.NotContains(t, security, "content_hash")
}

func TestSimulateMalformedDataFault(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"hl7":        sampleADT,
		"simulation": map[string]any{"scenarios": []string{"malformed_data"}},
	})
	require.NoError(t, err)

	rec := postSimulate(t, router, string(body))

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "SIMULATED_FAULT", resp["error_code"])
	assert.Equal(t, "malformed_data", resp["scenario"])
}

func TestSimulateNetworkFailureFault(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"hl7":        sampleADT,
		"simulation": map[string]any{"scenarios": []string{"network_failure"}},
	})
	require.NoError(t, err)

	rec := postSimulate(t, router, string(body))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "network_failure", resp["scenario"])
}

func TestSimulateTimeoutFault(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"hl7":        sampleADT,
		"simulation": map[string]any{"scenarios": []string{"timeout"}},
	})
	require.NoError(t, err)

	rec := postSimulate(t, router, string(body))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestSimulateReturnFHIROptOut(t *testing.T) {
	router := newTestRouter(t)

	body, err := json.Marshal(map[string]any{
		"hl7":        completeORU,
		"simulation": map[string]any{"returnFhir": false},
	})
	require.NoError(t, err)

	rec := postSimulate(t, router, string(body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	fhirSummary := resp["fhir"].(map[string]any)
	assert.Equal(t, float64(2), fhirSummary["resource_count"])
	assert.NotContains(t, fhirSummary, "resources")
}

func TestSimulateMissingHL7Field(t *testing.T) {
	router := newTestRouter(t)

	rec := postSimulate(t, router, `{"simulation":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSimulateMalformedJSON(t *testing.T) {
	router := newTestRouter(t)

	rec := postSimulate(t, router, `{"hl7": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
