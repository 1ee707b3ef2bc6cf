package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type testDeps struct {
	tools       *mockToolRepo
	graph       *mockGraphRepo
	runs        *mockRunRepo
	communities *mockCommunityRepo
	pipeline    *mockPipeline
}

func newTestDeps() *testDeps {
	return &testDeps{
		tools:       &mockToolRepo{},
		graph:       &mockGraphRepo{},
		runs:        &mockRunRepo{},
		communities: &mockCommunityRepo{},
		pipeline:    &mockPipeline{},
	}
}

// testRouter assembles the full router against mocks; the nil pool keeps
// the readiness endpoint out of bounds for these tests.
func testRouter(d *testDeps) http.Handler {
	return NewRouter(context.Background(), &RouterDeps{
		Log:         testLogger(),
		Tools:       d.tools,
		Graph:       d.graph,
		Runs:        d.runs,
		Communities: d.communities,
		Pipeline:    d.pipeline,
		CORSOrigins: []string{"http://localhost:3002"},
		Version:     "test",
	})
}

func doRequest(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
}
