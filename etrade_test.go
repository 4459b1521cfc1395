package etrade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"sandbox", Sandbox, false},
		{"", Sandbox, false},
		{"live", Live, false},
		{"prod", Live, false},
		{"production", Live, false},
		{"staging", Sandbox, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "sandbox", Sandbox.String())
	assert.Equal(t, "live", Live.String())
}

func TestMessagesIsEmpty(t *testing.T) {
	assert.True(t, Messages{}.IsEmpty())
	assert.False(t, Messages{Message: []Message{{Code: 1}}}.IsEmpty())
}
