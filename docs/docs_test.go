package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	doc, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var parsed struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "/v1", parsed.BasePath)
	assert.Contains(t, parsed.Paths["/clips"], "post")
	assert.Contains(t, parsed.Paths["/clips/{id}/render"], "post")
	assert.Contains(t, parsed.Paths["/subscriptions/webhook"], "post")
	assert.Contains(t, parsed.Paths["/healthz"], "get")
}
