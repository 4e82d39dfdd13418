package cloud

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()
	sdkErr := errors.New("InvalidGroup.NotFound")

	err := fmt.Errorf("ensure groups: %w", NewError("DescribeSecurityGroups", KindNotFound, sdkErr))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsDuplicate(err))
	assert.False(t, IsDependency(err))
	assert.False(t, IsUnsupported(err))
	assert.ErrorIs(t, err, sdkErr)
	assert.Contains(t, err.Error(), "DescribeSecurityGroups: InvalidGroup.NotFound")
}

func TestNewError_Nil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewError("op", KindOther, nil))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestInstanceState_Active(t *testing.T) {
	t.Parallel()
	tests := []struct {
		state  InstanceState
		active bool
	}{
		{StatePending, true},
		{StateRunning, true},
		{StateStopping, true},
		{StateStopped, true},
		{StateShuttingDown, false},
		{StateTerminated, false},
		{InstanceState("unknown"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.active, tt.state.Active(), string(tt.state))
	}
}
