package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/johnstarich/tally/consts"
	"github.com/johnstarich/tally/ledger"
	"github.com/johnstarich/tally/payee"
	"github.com/johnstarich/tally/pipeline"
	"github.com/johnstarich/tally/source"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type runnerFunc func(ctx context.Context) (pipeline.Result, error)

func (f runnerFunc) Run(ctx context.Context) (pipeline.Result, error) {
	return f(ctx)
}

func testResult() pipeline.Result {
	shaw, _ := ledger.NewRecord("2013-12-22", "Phone & Internet Expense", "-110.71", "SHAW CABLESYSTEMS CALGARY AB").Transaction(payee.DefaultLocations)
	cabs, _ := ledger.NewRecord("2013-12-21", "Travel Expense, Nonlocal", "-8.1", "BLACK TOP CABS VANCOUVER BC").Transaction(payee.DefaultLocations)
	return pipeline.Result{
		RunID:    "run-1",
		Pages:    1,
		Balance:  decimal.RequireFromString("-118.81"),
		Accepted: []ledger.Transaction{shaw, cabs},
		Rejected: []pipeline.Rejection{
			{Page: 1, Index: 2, Record: ledger.NewRecord("2013-12-20", "", "abc", "X"), Err: errors.New("bad amount")},
		},
	}
}

func newTestServer(t *testing.T, runner Runner) (*syncer, *gin.Engine) {
	logger := zaptest.NewLogger(t)
	s := newSyncer(context.Background(), runner, logger)
	return s, newEngine(s, logger)
}

func do(engine http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestVersion(t *testing.T) {
	_, engine := newTestServer(t, nil)
	w := do(engine, http.MethodGet, "/api/v1/version")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, consts.Version, decode(t, w)["Version"])
}

func TestReportBeforeSync(t *testing.T) {
	_, engine := newTestServer(t, nil)
	for _, path := range []string{"/api/v1/report", "/api/v1/vendors"} {
		t.Run(path, func(t *testing.T) {
			w := do(engine, http.MethodGet, path)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, errNoReport.Error(), decode(t, w)["Error"])
		})
	}
}

func TestSyncAndReport(t *testing.T) {
	s, engine := newTestServer(t, runnerFunc(func(context.Context) (pipeline.Result, error) {
		return testResult(), nil
	}))

	w := do(engine, http.MethodPost, "/api/v1/sync")
	require.Equal(t, http.StatusAccepted, w.Code)
	<-s.done

	w = do(engine, http.MethodGet, "/api/v1/report")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "run-1", body["RunID"])
	assert.Equal(t, "-118.81", body["Balance"])
	assert.Equal(t, []interface{}{"BLACK TOP CABS", "SHAW CABLESYSTEMS"}, body["Vendors"])
	require.Len(t, body["Rejected"], 1)
	assert.Equal(t, "bad amount", body["Rejected"].([]interface{})[0].(map[string]interface{})["Error"])

	w = do(engine, http.MethodGet, "/api/v1/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"Running": false}, decode(t, w))
}

func TestVendorsSearch(t *testing.T) {
	s, engine := newTestServer(t, runnerFunc(func(context.Context) (pipeline.Result, error) {
		return testResult(), nil
	}))
	require.True(t, s.Start())
	<-s.done

	for _, tc := range []struct {
		description string
		search      string
		expect      []interface{}
	}{
		{
			description: "no search",
			expect:      []interface{}{"BLACK TOP CABS", "SHAW CABLESYSTEMS"},
		},
		{
			description: "contains",
			search:      "cable",
			expect:      []interface{}{"SHAW CABLESYSTEMS"},
		},
		{
			description: "initialism",
			search:      "btc",
			expect:      []interface{}{"BLACK TOP CABS"},
		},
		{
			description: "no match",
			search:      "fedex",
			expect:      []interface{}{},
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			w := do(engine, http.MethodGet, "/api/v1/vendors?search="+tc.search)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.expect, decode(t, w)["Vendors"])
		})
	}
}

func TestSyncConflict(t *testing.T) {
	release := make(chan struct{})
	s, engine := newTestServer(t, runnerFunc(func(context.Context) (pipeline.Result, error) {
		<-release
		return testResult(), nil
	}))

	assert.Equal(t, http.StatusAccepted, do(engine, http.MethodPost, "/api/v1/sync").Code)
	w := do(engine, http.MethodPost, "/api/v1/sync")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, map[string]interface{}{"Running": true}, decode(t, do(engine, http.MethodGet, "/api/v1/status")))

	close(release)
	<-s.done
	assert.False(t, s.Running())
	assert.Equal(t, http.StatusAccepted, do(engine, http.MethodPost, "/api/v1/sync").Code)
	<-s.done
}

func TestSyncFailureKeepsPreviousResult(t *testing.T) {
	fail := false
	s, engine := newTestServer(t, runnerFunc(func(context.Context) (pipeline.Result, error) {
		if fail {
			return pipeline.Result{RunID: "partial"}, source.NewUnavailableError(2, errors.New("connection refused"))
		}
		return testResult(), nil
	}))
	require.True(t, s.Start())
	<-s.done

	fail = true
	require.True(t, s.Start())
	<-s.done

	status := decode(t, do(engine, http.MethodGet, "/api/v1/status"))
	assert.Equal(t, "Source unavailable while fetching page #2: connection refused", status["LastError"])

	report := decode(t, do(engine, http.MethodGet, "/api/v1/report"))
	assert.Equal(t, "run-1", report["RunID"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	engine := gin.New()
	engine.Use(recovery(zap.New(core), false))
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := do(engine, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "[Recovery]", entry.Message)
	assert.Equal(t, "/panic", entry.ContextMap()["path"])
}
