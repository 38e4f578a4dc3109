package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sideshift/pkg/core"
)

func TestApplyOptions_Defaults(t *testing.T) {
	o := ApplyOptions()

	assert.Equal(t, DefaultRecentShiftsLimit, o.Limit)
	assert.Empty(t, o.UserIP)
	assert.Nil(t, o.Amount)
}

func TestApplyOptions(t *testing.T) {
	o := ApplyOptions(
		WithUserIP("192.0.2.1"),
		WithLimit(50),
		WithAmount(core.MustAmount("0.25")),
	)

	assert.Equal(t, "192.0.2.1", o.UserIP)
	assert.Equal(t, 50, o.Limit)
	require.NotNil(t, o.Amount)
	assert.Equal(t, "0.25", o.Amount.String())
}
