package api

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/fixtures"
	"github.com/abhisek/quizplay/internal/quiz"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fixtureServer(t *testing.T, opts fixtures.Options) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(fixtures.NewRouter(fixtures.Sample(), opts))
	t.Cleanup(srv.Close)
	return srv
}

func rawServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "://bad"} {
		_, err := New(Config{BaseURL: u})
		assert.Error(t, err, "base url %q", u)
	}
}

func TestFetchTest(t *testing.T) {
	srv := fixtureServer(t, fixtures.Options{})
	c := newClient(t, Config{BaseURL: srv.URL + "/api"})

	test, err := c.FetchTest(context.Background(), "geo-101")
	require.NoError(t, err)
	assert.Equal(t, "geo-101", test.ID)
	assert.Equal(t, "World Geography Basics", test.Name)
	require.Len(t, test.Questions, 4)

	kinds := []quiz.Kind{quiz.KindMultipleChoice, quiz.KindTrueFalse, quiz.KindMatching, quiz.KindFillBlank}
	for i, q := range test.Questions {
		assert.Equal(t, kinds[i], q.Kind(), "question %d", i)
	}
}

func TestFetchTest_NotFound(t *testing.T) {
	srv := fixtureServer(t, fixtures.Options{})
	c := newClient(t, Config{BaseURL: srv.URL + "/api"})

	_, err := c.FetchTest(context.Background(), "missing")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Test not found (HTTP 404)", err.Error())
}

func TestFetchTest_FallbackMessage(t *testing.T) {
	srv := rawServer(t, http.StatusInternalServerError, `<html>oops</html>`)
	c := newClient(t, Config{BaseURL: srv.URL})

	_, err := c.FetchTest(context.Background(), "t1")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Get individual player test failed", apiErr.Message)

	_, err = c.ListTests(context.Background(), SearchQuery{})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Get player tests failed", apiErr.Message)
}

func TestFetchTest_EmptyID(t *testing.T) {
	c := newClient(t, Config{BaseURL: "http://127.0.0.1:1"})
	_, err := c.FetchTest(context.Background(), "  ")
	assert.Error(t, err)
}

func TestFetchTest_SkipsUnknownQuestions(t *testing.T) {
	srv := rawServer(t, http.StatusOK, `{"data":{"test":{"_id":"t1","name":"Mixed","status":1,"questionsId":[
		{"_id":"q1","ask":"Sky is blue?","questionType":1,"answer":true},
		{"_id":"q2","ask":"Essay","questionType":7},
		{"_id":"q3","ask":"Capital of Peru?","questionType":3,"answer":"Lima"}
	]}}}`)

	var logs bytes.Buffer
	c := newClient(t, Config{BaseURL: srv.URL, Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	test, err := c.FetchTest(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, test.Questions, 2)
	assert.Equal(t, "q1", test.Questions[0].ID())
	assert.Equal(t, "q3", test.Questions[1].ID())
	assert.Contains(t, logs.String(), "skipped question")
}

func TestFetchTest_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"missing data", `{"test":{}}`},
		{"questions not array", `{"data":{"test":{"_id":"t1","questionsId":"q1"}}}`},
		{"question type not integer", `{"data":{"test":{"_id":"t1","questionsId":[{"_id":"q","questionType":"mc"}]}}}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := rawServer(t, http.StatusOK, tc.body)
			c := newClient(t, Config{BaseURL: srv.URL})

			_, err := c.FetchTest(context.Background(), "t1")
			var decErr *DecodeError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, "test", decErr.Endpoint)
		})
	}
}

func TestListTests(t *testing.T) {
	srv := fixtureServer(t, fixtures.Options{})
	c := newClient(t, Config{BaseURL: srv.URL + "/api"})

	page, err := c.ListTests(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Tests, 3)
	assert.Equal(t, quiz.TestInfo{ID: "geo-101", Name: "World Geography Basics", Status: 1, QuestionCount: 4}, page.Tests[0])

	published := 1
	page, err = c.ListTests(context.Background(), SearchQuery{Search: "science", Status: &published})
	require.NoError(t, err)
	require.Len(t, page.Tests, 1)
	assert.Equal(t, "sci-201", page.Tests[0].ID)
}

func TestListTests_QueryParams(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Path + "?" + r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":{"tests":[],"totalTests":0}}`))
	}))
	t.Cleanup(srv.Close)

	status := 0
	c := newClient(t, Config{BaseURL: srv.URL + "/api/"})
	_, err := c.ListTests(context.Background(), SearchQuery{Page: 2, PageSize: 5, Search: "a b", Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "/api/tests?page=2&pageSize=5&search=a+b&status=0", got)
}

func TestBearerToken(t *testing.T) {
	secret := []byte("test-secret")
	srv := fixtureServer(t, fixtures.Options{Secret: secret})

	anon := newClient(t, Config{BaseURL: srv.URL + "/api"})
	_, err := anon.FetchTest(context.Background(), "geo-101")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	token, err := fixtures.MintToken(secret, "learner", time.Hour)
	require.NoError(t, err)
	authed := newClient(t, Config{BaseURL: srv.URL + "/api", Token: token})
	_, err = authed.FetchTest(context.Background(), "geo-101")
	assert.NoError(t, err)
}

func TestExpiredTokenIsNotSent(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	t.Cleanup(srv.Close)

	token, err := fixtures.MintToken([]byte("s"), "learner", time.Minute)
	require.NoError(t, err)

	later := func() time.Time { return time.Now().Add(time.Hour) }
	c := newClient(t, Config{BaseURL: srv.URL, Token: token, Now: later})

	_, err = c.FetchTest(context.Background(), "t1")
	assert.True(t, errors.Is(err, ErrTokenExpired))
	assert.Zero(t, calls)
}

func TestOpaqueTokenIsSent(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":{"tests":[]}}`))
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, Config{BaseURL: srv.URL, Token: "opaque-token"})
	_, err := c.ListTests(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer opaque-token", auth)
}

func TestServerVersion(t *testing.T) {
	srv := fixtureServer(t, fixtures.Options{Version: "1.2.0"})

	var logs bytes.Buffer
	c := newClient(t, Config{
		BaseURL:          srv.URL + "/api",
		MinServerVersion: "v2.0.0",
		Logger:           slog.New(slog.NewTextHandler(&logs, nil)),
	})

	assert.Empty(t, c.ServerVersion())
	for range 3 {
		_, err := c.ListTests(context.Background(), SearchQuery{})
		require.NoError(t, err)
	}
	assert.Equal(t, "v1.2.0", c.ServerVersion())
	assert.Equal(t, 1, strings.Count(logs.String(), "server version is older than supported"))
}

func TestServerVersion_MinimumWithoutPrefix(t *testing.T) {
	srv := fixtureServer(t, fixtures.Options{Version: "v1.2.0"})

	var logs bytes.Buffer
	c := newClient(t, Config{
		BaseURL:          srv.URL + "/api",
		MinServerVersion: "2.0.0",
		Logger:           slog.New(slog.NewTextHandler(&logs, nil)),
	})

	_, err := c.ListTests(context.Background(), SearchQuery{})
	require.NoError(t, err)
	assert.Equal(t, "v1.2.0", c.ServerVersion())
	assert.Contains(t, logs.String(), "server version is older than supported")
	assert.Contains(t, logs.String(), "min_version=v2.0.0")
}

func TestNew_InvalidMinServerVersion(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost/api", MinServerVersion: "two"})
	assert.ErrorContains(t, err, "invalid minimum server version")
}
