package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"quiz-authoring-service/internal/app"
	"quiz-authoring-service/internal/domain"
	"quiz-authoring-service/internal/infra/memory"
	"quiz-authoring-service/internal/logger"
)

func TestQuizRESTFlow(t *testing.T) {
	router := newTestRouter(app.NewChangeFeed())

	rec := do(router, http.MethodPost, "/quizzes", sampleBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Quiz
	decode(t, rec, &created)
	if created.ID == "" || created.Name != "Capitals" || len(created.Questions) != 1 {
		t.Fatalf("unexpected created quiz %+v", created)
	}

	rec = do(router, http.MethodGet, "/quizzes/"+created.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("find: unexpected status %d", rec.Code)
	}

	rec = do(router, http.MethodPatch, "/quizzes/"+created.ID, `{"name":"World capitals"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch: unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var patched domain.Quiz
	decode(t, rec, &patched)
	if patched.Name != "World capitals" || patched.Questions[0].ID != created.Questions[0].ID {
		t.Fatalf("unexpected patched quiz %+v", patched)
	}

	rec = do(router, http.MethodGet, "/quizzes", "")
	var all []domain.Quiz
	decode(t, rec, &all)
	if len(all) != 1 {
		t.Fatalf("expected one quiz, got %d", len(all))
	}

	rec = do(router, http.MethodDelete, "/quizzes/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: unexpected status %d", rec.Code)
	}
	rec = do(router, http.MethodGet, "/quizzes/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("find after delete: unexpected status %d", rec.Code)
	}
}

func TestQuizRESTErrors(t *testing.T) {
	router := newTestRouter(nil)

	rec := do(router, http.MethodPost, "/quizzes", sampleBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var existing domain.Quiz
	decode(t, rec, &existing)

	cases := []struct {
		name    string
		method  string
		path    string
		body    string
		status  int
		code    string
		message string
	}{
		{"malformed json", http.MethodPost, "/quizzes", `{"name":`, http.StatusBadRequest, "invalid_json", ""},
		{"no questions", http.MethodPost, "/quizzes", `{"name":"X","questions":[]}`, http.StatusBadRequest, "bad_input", "should contain at least one question"},
		{"missing answers", http.MethodPost, "/quizzes", `{"name":"X","questions":[{"statement":"Q"}]}`, http.StatusBadRequest, "bad_input", "should contain exactly 4 answers"},
		{"unknown quiz", http.MethodGet, "/quizzes/nope", "", http.StatusNotFound, "not_found", "no quiz with id nope"},
		{"patch unknown quiz", http.MethodPatch, "/quizzes/nope", sampleBody, http.StatusBadRequest, "bad_request", "doesn't match any existing record"},
		{"delete unknown quiz", http.MethodDelete, "/quizzes/nope", "", http.StatusBadRequest, "bad_request", "can't delete a record which doesn't exist"},
		{"patch null questions", http.MethodPatch, "/quizzes/" + existing.ID, `{"questions":null}`, http.StatusBadRequest, "bad_request", "should contain at least one question"},
		{"patch empty questions", http.MethodPatch, "/quizzes/" + existing.ID, `{"questions":[]}`, http.StatusBadRequest, "bad_request", "should contain at least one question"},
		{"patch null name", http.MethodPatch, "/quizzes/" + existing.ID, `{"name":null}`, http.StatusBadRequest, "bad_request", "quiz name must not be empty"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, tc.method, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			var env errorEnvelope
			decode(t, rec, &env)
			if env.Error.Code != tc.code {
				t.Fatalf("unexpected code: got=%q want=%q", env.Error.Code, tc.code)
			}
			if !strings.Contains(env.Error.Message, tc.message) {
				t.Fatalf("expected message containing %q, got %q", tc.message, env.Error.Message)
			}
		})
	}

	rec = do(router, http.MethodGet, "/quizzes/"+existing.ID, "")
	var stored domain.Quiz
	decode(t, rec, &stored)
	if stored.Name != existing.Name || len(stored.Questions) != len(existing.Questions) {
		t.Fatalf("expected rejected patches to leave the quiz untouched, got %+v", stored)
	}
}

func TestHealthz(t *testing.T) {
	rec := do(newTestRouter(nil), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}

const sampleBody = `{
  "name": "Capitals",
  "questions": [{
    "statement": "Capital of France?",
    "answers": [
      {"statement": "Lyon", "isCorrect": false},
      {"statement": "Paris", "isCorrect": true},
      {"statement": "Nice", "isCorrect": false},
      {"statement": "Lille", "isCorrect": false}
    ]
  }]
}`

func newTestRouter(feed *app.ChangeFeed) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()
	opts := []app.Option{app.WithLogger(log)}
	var ws *WSHandler
	if feed != nil {
		opts = append(opts, app.WithChangeFeed(feed))
		ws = NewWSHandler(feed, log)
	}
	service := app.NewQuizService(memory.NewQuizStore(), opts...)
	return NewRouter(NewQuizHandler(service, log), ws, log)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}
