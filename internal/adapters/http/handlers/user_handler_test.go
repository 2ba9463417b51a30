package handlers

import (
	"testing"

	"mfs-service/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActivatePatch(t *testing.T) {
	patch, err := parseActivatePatch([]byte(`{"status":" active ","role":"Agent","name":"Bob"}`))
	require.NoError(t, err)
	require.NotNil(t, patch.Status)
	require.NotNil(t, patch.Role)
	require.NotNil(t, patch.Name)
	assert.Equal(t, domain.StatusActive, *patch.Status)
	assert.Equal(t, domain.RoleAgent, *patch.Role)
	assert.Equal(t, "Bob", *patch.Name)

	patch, err = parseActivatePatch(nil)
	require.NoError(t, err)
	assert.Nil(t, patch.Status)
	assert.Nil(t, patch.Role)
	assert.Nil(t, patch.Name)
}

func TestParseActivatePatchRejects(t *testing.T) {
	bodies := []string{
		`{"balance":100}`,
		`{"status":"active","bonus":false}`,
		`{"pin":"0000"}`,
		`[1,2]`,
		`{"status":`,
		`{"status":42}`,
	}
	for _, body := range bodies {
		_, err := parseActivatePatch([]byte(body))
		assert.Error(t, err, body)
	}
}
