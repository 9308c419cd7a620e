package rabbitmq

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope("order.created", map[string]any{"total": 350})

	_, err := uuid.Parse(env.ID)
	require.NoError(t, err)
	assert.NotEqual(t, env.ID, NewEnvelope("order.created", nil).ID)

	body, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pattern":"order.created","data":{"total":350},"id":"`+env.ID+`"}`, string(body))
}
