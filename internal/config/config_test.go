package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig writes a main.toml into a temp dir and returns the dir
// with a trailing separator, matching how ReadConfig joins the file name.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "main.toml"), []byte(content), 0o600)
	require.NoError(t, err)

	return dir + string(filepath.Separator)
}

const validTOML = `
Title = "SIGA"

[Webserver]
Domain = "localhost"
Port = 8080
URL = "http://localhost:8080"
ShutDownTime = 5

[DB]
Host = "127.0.0.1"
Port = 3306
User = "siga"
Password = "siga"
Name = "siga"
GormEngine = "mysql"
`

func TestReadConfig(t *testing.T) {
	path := writeTestConfig(t, validTOML)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "SIGA", cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Webserver.URL)
	assert.Equal(t, EngineMySQL, cfg.DB.GormEngine)
}

func TestReadConfigMissingFile(t *testing.T) {
	dir := t.TempDir() + string(filepath.Separator)

	_, err := ReadConfig(dir)
	require.Error(t, err)
}

func TestReadConfigEnvOverride(t *testing.T) {
	path := writeTestConfig(t, validTOML)

	t.Setenv(EnvConfigJSON, `{"Title":"SIGA Test","Webserver":{"Port":9090}}`)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "SIGA Test", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	// untouched values survive the merge
	assert.Equal(t, "http://localhost:8080", cfg.Webserver.URL)
}

func TestReadConfigEnvOverrideInvalidJSON(t *testing.T) {
	path := writeTestConfig(t, validTOML)

	t.Setenv(EnvConfigJSON, `{not json`)

	_, err := ReadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Webserver: Webserver{Port: 8080, URL: "http://localhost:8080"},
			DB:        DB{GormEngine: EngineMySQL},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid mysql",
			mutate: func(_ *Config) {},
		},
		{
			name:   "valid postgres",
			mutate: func(c *Config) { c.DB.GormEngine = EnginePostgres },
		},
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Webserver.Port = 0 },
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "empty url",
			mutate:  func(c *Config) { c.Webserver.URL = "" },
			wantErr: ErrEmptyURL,
		},
		{
			name:    "unknown engine",
			mutate:  func(c *Config) { c.DB.GormEngine = "sqlserver" },
			wantErr: ErrUnknownGormEngine,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)

			err := validate(cfg)

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDumpConfigRoundTrip(t *testing.T) {
	path := writeTestConfig(t, validTOML)

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	out, err := DumpConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `Title = "SIGA"`)

	jsonOut, err := DumpConfigJSON(cfg)
	require.NoError(t, err)
	assert.Contains(t, jsonOut, `"Title": "SIGA"`)
}
