package main

import (
	"testing"

	"github.com/AaronDeluna/new-york-times/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritingCommandsNeedHybridStore(t *testing.T) {
	tests := [][]string{
		{"import", "https://example.com/story"},
		{"seed"},
	}
	for _, args := range tests {
		t.Run(args[0], func(t *testing.T) {
			cfg = config.Default()
			rootCmd.SetArgs(args)

			err := rootCmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), args[0]+" needs --store=hybrid")
		})
	}
}

func TestRequireHybrid(t *testing.T) {
	cfg = config.Default()
	assert.Error(t, requireHybrid("import"))

	cfg.Store = config.StoreHybrid
	assert.NoError(t, requireHybrid("import"))
}
