package api

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// The schemas check the envelope and the fields the player relies on.
// Question types and answer shapes are checked later, per question, so one
// bad question does not reject a whole test.

const questionSchema = `{
	"type": "object",
	"required": ["_id", "questionType"],
	"properties": {
		"_id": {"type": "string"},
		"ask": {"type": "string"},
		"questionType": {"type": "integer"},
		"options": {"type": "array", "items": {"type": "string"}}
	}
}`

const testSchemaJSON = `{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "object",
			"required": ["test"],
			"properties": {
				"test": {
					"type": "object",
					"required": ["_id", "questionsId"],
					"properties": {
						"_id": {"type": "string", "minLength": 1},
						"name": {"type": "string"},
						"status": {"type": "integer"},
						"questionsId": {"type": "array", "items": ` + questionSchema + `}
					}
				}
			}
		}
	}
}`

const testListSchemaJSON = `{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "object",
			"required": ["tests"],
			"properties": {
				"tests": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["_id"],
						"properties": {"_id": {"type": "string"}, "name": {"type": "string"}}
					}
				},
				"totalTests": {"type": "integer", "minimum": 0}
			}
		}
	}
}`

var (
	schemasOnce sync.Once
	schemasErr  error
	testSchema  *jsonschema.Schema
	listSchema  *jsonschema.Schema
)

func compiledSchemas() (test, list *jsonschema.Schema, err error) {
	schemasOnce.Do(func() {
		c := jsonschema.NewCompiler()
		for url, src := range map[string]string{
			"quizplay://test.json":  testSchemaJSON,
			"quizplay://tests.json": testListSchemaJSON,
		} {
			doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
			if err != nil {
				schemasErr = fmt.Errorf("parse %s: %w", url, err)
				return
			}
			if err := c.AddResource(url, doc); err != nil {
				schemasErr = fmt.Errorf("add %s: %w", url, err)
				return
			}
		}
		if testSchema, schemasErr = c.Compile("quizplay://test.json"); schemasErr != nil {
			return
		}
		listSchema, schemasErr = c.Compile("quizplay://tests.json")
	})
	return testSchema, listSchema, schemasErr
}

// validateBody checks body against schema.
func validateBody(schema *jsonschema.Schema, body io.Reader) error {
	doc, err := jsonschema.UnmarshalJSON(body)
	if err != nil {
		return err
	}
	return schema.Validate(doc)
}
