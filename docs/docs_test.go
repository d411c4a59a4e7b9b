package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestSwaggerDocIsValidJSON(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		BasePath string                    `json:"basePath"`
		Paths    map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/admin/subscriptions/{id}/activate")
	assert.Contains(t, doc.Paths["/admin/subscriptions/{id}"], "delete")
}

func TestSwaggerDoc_AdminListStatusFilter(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Paths map[string]map[string]struct {
			Parameters []struct {
				Name string   `json:"name"`
				Enum []string `json:"enum"`
			} `json:"parameters"`
		} `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	var status []string
	for _, p := range doc.Paths["/admin/subscriptions"]["get"].Parameters {
		if p.Name == "status" {
			status = p.Enum
		}
	}
	assert.Equal(t, []string{"all", "pending", "active", "rejected"}, status)
	assert.NotContains(t, status, "expired")
}
