package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	cmd := NewRootCmd()

	want := []string{"auth", "accounts", "orders", "market", "transactions", "alerts", "config"}
	got := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		got[sub.Name()] = true
	}
	for _, name := range want {
		assert.True(t, got[name], "missing subcommand %s", name)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	cmd := NewRootCmd()
	pf := cmd.PersistentFlags()

	for _, name := range []string{"mode", "data-dir", "json", "verbose"} {
		require.NotNil(t, pf.Lookup(name), "missing flag --%s", name)
	}

	assert.Equal(t, "m", pf.Lookup("mode").Shorthand)
	assert.Equal(t, "j", pf.Lookup("json").Shorthand)
}

func TestRootSilencesCobraNoise(t *testing.T) {
	cmd := NewRootCmd()
	assert.True(t, cmd.SilenceUsage)
	assert.True(t, cmd.SilenceErrors)
}
