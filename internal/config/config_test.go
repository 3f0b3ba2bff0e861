package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jewelctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: admin\n"))
	require.NoError(t, err)

	assert.Equal(t, "admin", cfg.App.Name)
	assert.Equal(t, 15*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Equal(t, "xlsx", cfg.Export.Format)
	assert.Equal(t, 18, cfg.Export.ColumnWidth)
	assert.Equal(t, []string{"telegram"}, cfg.Alerting.Channels)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("JEWELCTL_BACKEND_TOKEN", "from-env")
	path := writeConfig(t, `
backend:
  base_url: https://shop.example.in/api/admin
  request_timeout: 5s
ui:
  page_size: 50
alerting:
  channels: telegram,log
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.in/api/admin", cfg.Backend.BaseURL)
	assert.Equal(t, "from-env", cfg.Backend.Token)
	assert.Equal(t, 5*time.Second, cfg.Backend.RequestTimeout)
	assert.Equal(t, 50, cfg.ResolvePageSize(0))
	assert.Equal(t, 7, cfg.ResolvePageSize(7))
	assert.Equal(t, []string{"telegram", "log"}, cfg.Alerting.Channels)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Backend:   BackendConfig{BaseURL: "http://localhost:8080"},
			Scheduler: SchedulerConfig{Interval: time.Minute},
			Export:    ExportConfig{Format: "csv"},
			UI:        UIConfig{PageSize: 10},
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Backend.BaseURL = "localhost"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Export.Format = "pdf"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Alerting.Telegram.Enabled = true
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Alerting.ThresholdPct = -1
	assert.Error(t, cfg.Validate())
}
