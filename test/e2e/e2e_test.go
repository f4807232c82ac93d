// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-intake/internal/cache"
	"loan-intake/internal/common/config"
	"loan-intake/internal/common/database"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/predictor"
	"loan-intake/internal/server"
	"loan-intake/internal/store"
	"loan-intake/internal/submission"
)

// predictionBackend fakes the remote model service. It approves applications
// with credit history and rejects the rest, mirroring the real service's
// response contract.
func predictionBackend(calls *int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)

		var app map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if app["Credit_History"] == float64(1) {
			fmt.Fprint(w, `{"prediction": 1, "status": "Approved", "confidence_probability": "87.23%"}`)
			return
		}
		fmt.Fprint(w, `{"prediction": 0, "status": "Not Approved", "confidence_probability": "71.02%"}`)
	}
}

func TestFullIntakeFlow(t *testing.T) {
	log := logger.NewTestLogger(t)

	var backendCalls int64
	backend := httptest.NewServer(predictionBackend(&backendCalls))
	defer backend.Close()

	// Redis-backed result cache against an embedded server.
	mr := miniredis.RunT(t)
	redisClient, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	resultCache := cache.New(redisClient, 5*time.Minute, log)

	history := store.NewMemoryStore(50)

	pred := predictor.NewRetryingClient(
		predictor.NewClient(config.PredictorConfig{BaseURL: backend.URL, Timeout: 2000}, log),
		2, 10*time.Millisecond, log,
	)

	svc := submission.NewService(pred, resultCache, history, nil, log)
	srv := server.New(config.ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}}, svc, history, log)

	api := httptest.NewServer(srv.Router())
	defer api.Close()

	application := map[string]string{
		"Gender":            "Male",
		"Married":           "Yes",
		"Dependents":        "2",
		"Education":         "Graduate",
		"Self_Employed":     "No",
		"ApplicantIncome":   "5000",
		"CoapplicantIncome": "2000",
		"LoanAmount":        "120",
		"Loan_Amount_Term":  "360",
		"Credit_History":    "1",
		"Property_Area":     "Urban",
	}

	submit := func(payload map[string]string) (*http.Response, map[string]interface{}) {
		body, err := json.Marshal(payload)
		require.NoError(t, err)

		resp, err := http.Post(api.URL+"/api/v1/applications", "application/json", bytes.NewReader(body))
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		resp.Body.Close()
		return resp, decoded
	}

	// 1. Valid application goes through the whole pipeline.
	resp, decoded := submit(application)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Approved", decoded["status"])
	assert.Equal(t, "87.23%", decoded["confidence_probability"])
	assert.EqualValues(t, 1, backendCalls)

	// 2. Resubmitting the same application is served from the cache.
	resp, decoded = submit(application)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decoded["fromCache"])
	assert.EqualValues(t, 1, backendCalls, "cache hit must not reach the prediction service")

	// 3. Invalid data never leaves the process.
	invalid := map[string]string{}
	for k, v := range application {
		invalid[k] = v
	}
	invalid["Credit_History"] = "2"
	invalid["Dependents"] = "many"

	resp, decoded = submit(invalid)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decoded["code"])
	assert.Len(t, decoded["errors"], 2)
	assert.EqualValues(t, 1, backendCalls)

	// 4. State endpoint reflects the last submission.
	stateResp, err := http.Get(api.URL + "/api/v1/applications/state")
	require.NoError(t, err)
	var snap map[string]interface{}
	require.NoError(t, json.NewDecoder(stateResp.Body).Decode(&snap))
	stateResp.Body.Close()
	assert.Equal(t, "failed", snap["state"])
	assert.Len(t, snap["fieldErrors"], 2)

	// 5. History recorded everything, newest first.
	histResp, err := http.Get(api.URL + "/api/v1/applications/history")
	require.NoError(t, err)
	var page struct {
		Records []struct {
			Outcome   string `json:"outcome"`
			Status    string `json:"status"`
			FromCache bool   `json:"fromCache"`
		} `json:"records"`
	}
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&page))
	histResp.Body.Close()

	require.Len(t, page.Records, 3)
	assert.Equal(t, "validation_failed", page.Records[0].Outcome)
	assert.Equal(t, "succeeded", page.Records[1].Outcome)
	assert.True(t, page.Records[1].FromCache)
	assert.Equal(t, "succeeded", page.Records[2].Outcome)
	assert.Equal(t, "Approved", page.Records[2].Status)
}

func TestFullIntakeFlow_UpstreamDown(t *testing.T) {
	log := logger.NewTestLogger(t)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // connection refused from the start

	history := store.NewMemoryStore(10)
	pred := predictor.NewClient(config.PredictorConfig{BaseURL: backend.URL, Timeout: 500}, log)
	svc := submission.NewService(pred, nil, history, nil, log)
	srv := server.New(config.ServerConfig{}, svc, history, log)

	api := httptest.NewServer(srv.Router())
	defer api.Close()

	body, _ := json.Marshal(map[string]string{
		"Gender":            "Female",
		"Married":           "No",
		"Dependents":        "0",
		"Education":         "Graduate",
		"Self_Employed":     "No",
		"ApplicantIncome":   "4000",
		"CoapplicantIncome": "0",
		"LoanAmount":        "100",
		"Loan_Amount_Term":  "360",
		"Credit_History":    "1",
		"Property_Area":     "Rural",
	})

	resp, err := http.Post(api.URL+"/api/v1/applications", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "TRANSPORT_ERROR", decoded["code"])
}
