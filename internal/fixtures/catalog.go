package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/quizplay/internal/quiz"
)

//go:embed testdata/sample.json
var sampleJSON []byte

// Catalog is an in-memory, read-only set of tests.
type Catalog struct {
	tests []quiz.TestRecord
	byID  map[string]int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadFile reads a JSON array of test records.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return Parse(data)
}

// Sample returns the built-in demo catalog.
func Sample() *Catalog {
	c, err := Parse(sampleJSON)
	if err != nil {
		panic(fmt.Sprintf("fixtures: bad sample catalog: %v", err))
	}
	return c
}

// Parse decodes and validates a JSON array of test records.
func Parse(data []byte) (*Catalog, error) {
	var tests []quiz.TestRecord
	if err := json.Unmarshal(data, &tests); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return New(tests)
}

// New validates tests and builds a Catalog. Test identifiers must be
// unique.
func New(tests []quiz.TestRecord) (*Catalog, error) {
	c := &Catalog{tests: tests, byID: make(map[string]int, len(tests))}
	for i, t := range tests {
		if err := validate.Struct(t); err != nil {
			return nil, fmt.Errorf("fixture test %d (%q): %w", i, t.ID, err)
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("fixture test %q: duplicate _id", t.ID)
		}
		c.byID[t.ID] = i
	}
	return c, nil
}

// Get returns a test by identifier.
func (c *Catalog) Get(id string) (quiz.TestRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return quiz.TestRecord{}, false
	}
	return c.tests[i], true
}

// Filter selects tests the way GET /tests does.
type Filter struct {
	Page     int
	PageSize int
	Search   string
	Status   *int
}

// List returns one page of matching tests and the total match count.
func (c *Catalog) List(f Filter) ([]quiz.TestRecord, int) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := slices.DeleteFunc(slices.Clone(c.tests), func(t quiz.TestRecord) bool {
		if f.Status != nil && t.Status != *f.Status {
			return true
		}
		return search != "" && !strings.Contains(strings.ToLower(t.Name), search)
	})

	page, size := max(f.Page, 1), f.PageSize
	if size <= 0 {
		size = 10
	}
	start := min((page-1)*size, len(matched))
	end := min(start+size, len(matched))
	return matched[start:end], len(matched)
}

// Len returns the number of tests.
func (c *Catalog) Len() int {
	return len(c.tests)
}
