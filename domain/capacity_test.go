package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		max         int
		activeCount int
		target      Status
		wantAllowed bool
	}{
		{
			name:        "room available for active target",
			max:         3,
			activeCount: 2,
			target:      StatusOpen,
			wantAllowed: true,
		},
		{
			name:        "at capacity rejects open",
			max:         3,
			activeCount: 3,
			target:      StatusOpen,
			wantAllowed: false,
		},
		{
			name:        "at capacity rejects in progress",
			max:         3,
			activeCount: 3,
			target:      StatusInProgress,
			wantAllowed: false,
		},
		{
			name:        "leaving the active set always allowed",
			max:         1,
			activeCount: 5,
			target:      StatusDone,
			wantAllowed: true,
		},
		{
			name:        "zero count under limit of one",
			max:         1,
			activeCount: 0,
			target:      StatusInProgress,
			wantAllowed: true,
		},
		{
			name:        "over capacity still allowed to finish",
			max:         2,
			activeCount: 4,
			target:      StatusDone,
			wantAllowed: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := Guard{Max: tc.max}.Evaluate(tc.activeCount, tc.target)
			assert.Equal(t, tc.wantAllowed, d.Allowed)
			assert.Equal(t, tc.activeCount, d.ActiveCount)
		})
	}
}

func TestNewGuardDefaultsMax(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultMaxActiveTasks, NewGuard(0).Max)
	assert.Equal(t, DefaultMaxActiveTasks, NewGuard(-3).Max)
	assert.Equal(t, 2, NewGuard(2).Max)
}

func TestStatusActive(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusOpen.Active())
	assert.True(t, StatusInProgress.Active())
	assert.False(t, StatusDone.Active())
	assert.False(t, Status("Archived").Active())
}

func TestStatusValid(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusOpen.Valid())
	assert.True(t, StatusInProgress.Valid())
	assert.True(t, StatusDone.Valid())
	assert.False(t, Status("").Valid())
	assert.False(t, Status("open").Valid())
	assert.False(t, Status("InProgress").Valid())
}
