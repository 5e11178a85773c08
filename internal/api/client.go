package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/mod/semver"

	"github.com/abhisek/quizplay/internal/quiz"
	"github.com/abhisek/quizplay/internal/session"
)

// VersionHeader carries the backend's semantic version.
const VersionHeader = "X-API-Version"

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration

	// MinServerVersion, when set, makes the client warn once about a
	// backend reporting an older version.
	MinServerVersion string

	Logger     *slog.Logger
	HTTPClient *http.Client
	Now        func() time.Time
}

// Client talks to the Test Fetch Service.
type Client struct {
	base       *url.URL
	token      string
	minVersion string
	http       *http.Client
	logger     *slog.Logger
	now        func() time.Time

	mu            sync.Mutex
	serverVersion string
	warnedVersion bool
}

var _ session.Fetcher = (*Client)(nil)

// New creates a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}
	minVersion := cfg.MinServerVersion
	if minVersion != "" && !strings.HasPrefix(minVersion, "v") {
		minVersion = "v" + minVersion
	}
	if minVersion != "" && !semver.IsValid(minVersion) {
		return nil, fmt.Errorf("invalid minimum server version %q", cfg.MinServerVersion)
	}
	c := &Client{
		base:       base,
		token:      cfg.Token,
		minVersion: minVersion,
		http:       cfg.HTTPClient,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// SearchQuery filters the test listing. Zero values are omitted.
type SearchQuery struct {
	Page     int
	PageSize int
	Search   string
	Status   *int
}

func (q SearchQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != nil {
		v.Set("status", strconv.Itoa(*q.Status))
	}
	return v
}

// TestPage is one page of the test listing.
type TestPage struct {
	Tests []quiz.TestInfo
	Total int
}

type testEnvelope struct {
	Data struct {
		Test quiz.TestRecord `json:"test"`
	} `json:"data"`
}

type listEnvelope struct {
	Data struct {
		Tests []struct {
			ID        string            `json:"_id"`
			Name      string            `json:"name"`
			Status    int               `json:"status"`
			Questions []json.RawMessage `json:"questionsId"`
		} `json:"tests"`
		Total int `json:"totalTests"`
	} `json:"data"`
}

// FetchTest implements session.Fetcher: GET /tests/{id}. Questions the
// player cannot represent are skipped and logged.
func (c *Client) FetchTest(ctx context.Context, testID string) (*quiz.Test, error) {
	if strings.TrimSpace(testID) == "" {
		return nil, errors.New("empty test id")
	}
	body, err := c.get(ctx, "/tests/"+url.PathEscape(testID), nil, "Get individual player test failed")
	if err != nil {
		return nil, err
	}

	schema, _, err := compiledSchemas()
	if err != nil {
		return nil, err
	}
	if err := validateBody(schema, bytes.NewReader(body)); err != nil {
		return nil, &DecodeError{Endpoint: "test", Err: err}
	}

	var env testEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Endpoint: "test", Err: err}
	}

	test, skipped := env.Data.Test.Test()
	for _, err := range skipped {
		c.logger.Warn("skipped question", "test_id", test.ID, "error", err)
	}
	c.logger.Info("fetched test", "test_id", test.ID, "questions", len(test.Questions))
	return test, nil
}

// ListTests pages through GET /tests.
func (c *Client) ListTests(ctx context.Context, q SearchQuery) (*TestPage, error) {
	body, err := c.get(ctx, "/tests", q.values(), "Get player tests failed")
	if err != nil {
		return nil, err
	}

	_, schema, err := compiledSchemas()
	if err != nil {
		return nil, err
	}
	if err := validateBody(schema, bytes.NewReader(body)); err != nil {
		return nil, &DecodeError{Endpoint: "tests", Err: err}
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &DecodeError{Endpoint: "tests", Err: err}
	}

	page := &TestPage{Total: env.Data.Total}
	for _, t := range env.Data.Tests {
		page.Tests = append(page.Tests, quiz.TestInfo{
			ID:            t.ID,
			Name:          t.Name,
			Status:        t.Status,
			QuestionCount: len(t.Questions),
		})
	}
	if page.Total < len(page.Tests) {
		page.Total = len(page.Tests)
	}
	return page, nil
}

// ServerVersion returns the version reported by the last response, if any.
func (c *Client) ServerVersion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverVersion
}

// get performs an authenticated GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, path string, query url.Values, fallback string) ([]byte, error) {
	if err := c.checkToken(); err != nil {
		return nil, err
	}

	u := *c.base
	u.Path += path
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.checkVersion(resp.Header.Get(VersionHeader))

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, body, fallback)
	}
	return body, nil
}

func newError(status int, body []byte, fallback string) *Error {
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Message != "" {
		return &Error{Status: status, Message: payload.Message}
	}
	return &Error{Status: status, Message: fallback}
}

// checkToken rejects a JWT whose exp claim has passed. Opaque tokens are
// left to the server.
func (c *Client) checkToken() error {
	if c.token == "" {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(c.token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if !c.now().Before(exp.Time) {
		return ErrTokenExpired
	}
	return nil
}

// checkVersion records the server version and warns once when it is older
// than the configured minimum.
func (c *Client) checkVersion(v string) {
	if v == "" {
		return
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.serverVersion = semver.Canonical(v)
	if c.minVersion != "" && !c.warnedVersion && semver.Compare(v, c.minVersion) < 0 {
		c.warnedVersion = true
		c.logger.Warn("server version is older than supported",
			"server_version", v, "min_version", c.minVersion)
	}
}
