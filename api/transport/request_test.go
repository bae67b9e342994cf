package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalStringAbsentVsNull(t *testing.T) {
	t.Parallel()

	var req UpdateTaskRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title": "t"}`), &req))
	assert.False(t, req.AssigneeID.Set, "absent field must not count as set")

	req = UpdateTaskRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"assigneeId": null}`), &req))
	assert.True(t, req.AssigneeID.Set)
	assert.Nil(t, req.AssigneeID.Value)

	req = UpdateTaskRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"assigneeId": "u1"}`), &req))
	assert.True(t, req.AssigneeID.Set)
	require.NotNil(t, req.AssigneeID.Value)
	assert.Equal(t, "u1", *req.AssigneeID.Value)

	assert.Error(t, json.Unmarshal([]byte(`{"assigneeId": 42}`), &req))
}
