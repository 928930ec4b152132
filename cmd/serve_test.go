package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Command Registration Tests
// =============================================================================

func TestServeCmd_Metadata(t *testing.T) {
	assert.Equal(t, "serve", serveCmd.Use)
	assert.Contains(t, serveCmd.Short, "start http server")
	assert.Contains(t, serveCmd.Long, "http server")
	assert.NotNil(t, serveCmd.Run)
}

func TestServeCmd_IsRegisteredOnRoot(t *testing.T) {
	found := false
	for _, cmd := range RootCmd.Commands() {
		if cmd.Use == "serve" {
			found = true
			break
		}
	}
	assert.True(t, found, "serveCmd should be registered on RootCmd")
}

func TestServeCmd_UsageOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	serveCmd.SetOut(buf)
	serveCmd.SetErr(buf)

	err := serveCmd.Usage()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "serve")
}

// =============================================================================
// Viper Defaults Tests (set in serve.go init())
// =============================================================================

func TestServeCmd_ViperDefaults(t *testing.T) {
	// Reset viper to isolate from dev.env (which initConfig may have loaded)
	viper.Reset()

	// Re-register the defaults that serve.go init() sets
	viper.SetDefault("server_port", "8080")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "json")

	// Verify defaults without any config file influence
	assert.Equal(t, "8080", viper.GetString("server_port"))
	assert.Equal(t, "info", viper.GetString("log_level"))
	assert.Equal(t, "json", viper.GetString("log_format"))
}
