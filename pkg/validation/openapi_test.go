package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/specdocs/pkg/query"
	"github.com/getmockd/specdocs/pkg/spec"
)

const validSpec = `
openapi: "3.0.3"
info:
  title: Test API
  version: "1.0.0"
paths:
  /users:
    get:
      summary: List users
      responses:
        "200":
          description: List of users
          content:
            application/json:
              schema:
                type: array
                items:
                  type: object
                  required: [id, email]
                  properties:
                    id: {type: string, format: uuid}
                    email: {type: string, format: email}
                    age: {type: integer, minimum: 0}
    post:
      summary: Create user
      responses:
        "201":
          description: Created
          content:
            application/json:
              schema:
                type: object
                properties:
                  id: {type: integer}
        "400":
          description: Bad request
  /health:
    get:
      responses:
        "204":
          description: No content
`

func newValidator(t *testing.T, content string) *Validator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return New(query.New(spec.NewStore(spec.NewFileSource(path)), nil))
}

func TestValidate_ValidDocument(t *testing.T) {
	t.Parallel()

	report, err := newValidator(t, validSpec).Validate(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Valid, report.Errors)
	assert.Equal(t, "3.0.3", report.OpenAPI)
	assert.Equal(t, "Test API", report.Title)
	assert.Equal(t, "1.0.0", report.Version)
	assert.Equal(t, 3, report.Operations)
	assert.Zero(t, report.MockFailures())

	require.Len(t, report.Mocks, 3)
	assert.Equal(t, MockCheck{Path: "/health", Method: "GET", Status: 204, Skipped: true}, report.Mocks[0])
	assert.Equal(t, MockCheck{Path: "/users", Method: "GET", Status: 200}, report.Mocks[1])
	assert.Equal(t, MockCheck{Path: "/users", Method: "POST", Status: 201}, report.Mocks[2])
}

func TestValidate_NonConformingMock(t *testing.T) {
	t.Parallel()

	report, err := newValidator(t, `
openapi: "3.0.3"
info: {title: Strict, version: "1"}
paths:
  /codes:
    get:
      responses:
        "200":
          description: Codes
          content:
            application/json:
              schema: {type: integer, minimum: 500}
`).Validate(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Valid)
	assert.Equal(t, 1, report.MockFailures())
	require.Len(t, report.Mocks, 1)
	assert.NotEmpty(t, report.Mocks[0].Error)
}

func TestValidate_StructuralErrors(t *testing.T) {
	t.Parallel()

	report, err := newValidator(t, `
openapi: "3.0.3"
paths:
  /a:
    get:
      responses:
        "200":
          description: ok
`).Validate(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Errors)
	assert.Equal(t, 1, report.Operations)
}

func TestValidate_Unreadable(t *testing.T) {
	t.Parallel()

	missing := New(query.New(spec.NewStore(spec.NewFileSource(filepath.Join(t.TempDir(), "none.yaml"))), nil))
	_, err := missing.Validate(context.Background())
	assert.ErrorIs(t, err, spec.ErrNotFound)

	_, err = newValidator(t, "openapi: [").Validate(context.Background())
	assert.Error(t, err)
}
