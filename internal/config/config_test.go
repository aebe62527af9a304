// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donelist/donelist/pkg/errutil"
)

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", "127.0.0.1:8080", "")
	flags.String("server.metrics_addr", "", "")
	flags.String("server.session_cookie", "donelist_session", "")
	flags.Bool("server.secure_cookies", false, "")
	flags.String("database.url", "postgres://localhost/donelist", "")
	flags.String("log.format", "json", "")
	return flags
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FlagDefaultsOnly(t *testing.T) {
	cfg, err := Load("", testFlags())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "donelist_session", cfg.Server.SessionCookie)
	assert.Equal(t, "postgres://localhost/donelist", cfg.Database.URL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Server.SecureCookies)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: "0.0.0.0:9090"
  secure_cookies: true
log:
  format: text
`)

	cfg, err := Load(path, testFlags())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, "text", cfg.Log.Format)
	// Untouched keys keep their flag defaults.
	assert.Equal(t, "donelist_session", cfg.Server.SessionCookie)
	assert.Equal(t, "postgres://localhost/donelist", cfg.Database.URL)
}

func TestLoad_ExplicitFlagBeatsFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: "0.0.0.0:9090"
`)

	flags := testFlags()
	require.NoError(t, flags.Set("server.addr", "127.0.0.1:7000"))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml", testFlags())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	path := writeConfigFile(t, "server: [not: valid")

	_, err := Load(path, testFlags())
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   Server{Addr: "127.0.0.1:8080", SessionCookie: "donelist_session"},
			Database: Database{URL: "postgres://localhost/donelist"},
			Log:      Log{Format: "json"},
		}
	}

	t.Run("valid", func(t *testing.T) {
		cfg := valid()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("missing addr", func(t *testing.T) {
		cfg := valid()
		cfg.Server.Addr = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing session cookie", func(t *testing.T) {
		cfg := valid()
		cfg.Server.SessionCookie = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing database url", func(t *testing.T) {
		cfg := valid()
		cfg.Database.URL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log format", func(t *testing.T) {
		cfg := valid()
		cfg.Log.Format = "xml"
		assert.Error(t, cfg.Validate())
	})
}
