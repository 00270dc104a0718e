package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, dcfg, err := LoadConfig(t.TempDir(), "config.json", "dataconfig.json")
	require.NoError(t, err)

	assert.Equal(t, "booking_logs.csv", cfg.Input.Booking)
	assert.Equal(t, "cancel_logs.csv", cfg.Input.Cancel)
	assert.Equal(t, "cleveland_shifts.csv", cfg.Input.Shift)
	assert.Equal(t, DedupEarliest, cfg.CancelDedup)
	assert.False(t, cfg.Output.AllDimensions)

	assert.Equal(t, "NO_CALL_NO_SHOW", dcfg.GetAction("no_call"))
	assert.Equal(t, "WORKER_CANCEL", dcfg.GetAction("worker_cancel"))
	assert.Equal(t, 4.0, dcfg.GetThreshold("call_off"))
	assert.Equal(t, 24.0, dcfg.GetThreshold("standard"))
}

func TestLoadConfig_JSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"data_dir":"in","output":{"all_dimensions":true,"workbook":"stats.xlsx"},"cancel_dedup":"all"}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.yaml"),
		[]byte("headers:\n  Facility: Facility ID\nthresholds:\n  call_off: 2\n"), 0644))

	cfg, dcfg, err := LoadConfig(dir, "config.json", "data.yaml")
	require.NoError(t, err)

	assert.Equal(t, "in", cfg.DataDir)
	assert.True(t, cfg.Output.AllDimensions)
	assert.Equal(t, "stats.xlsx", cfg.Output.Workbook)
	assert.Equal(t, DedupAll, cfg.CancelDedup)
	// 未覆盖的字段保持默认
	assert.Equal(t, "booking_logs.csv", cfg.Input.Booking)

	assert.Equal(t, "Facility ID", dcfg.GetHeader("Facility"))
	assert.Equal(t, "Charge", dcfg.GetHeader("Charge"))
	assert.Equal(t, 2.0, dcfg.GetThreshold("call_off"))
	assert.Equal(t, 24.0, dcfg.GetThreshold("standard"))
	assert.Equal(t, "WORKER_CANCEL", dcfg.GetAction("worker_cancel"))
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SHIFTINSIGHT_OUT_DIR", "reports")
	t.Setenv("SHIFTINSIGHT_DEDUP", DedupAll)

	cfg, _, err := LoadConfig(t.TempDir(), "config.json", "")
	require.NoError(t, err)
	assert.Equal(t, "reports", cfg.OutDir)
	assert.Equal(t, DedupAll, cfg.CancelDedup)

	t.Setenv("SHIFTINSIGHT_DEDUP", " ALL ")
	cfg, _, err = LoadConfig(t.TempDir(), "config.json", "")
	require.NoError(t, err)
	assert.Equal(t, DedupAll, cfg.CancelDedup)
}

func TestLoadConfig_OverridesBeforeValidate(t *testing.T) {
	t.Setenv("SHIFTINSIGHT_DEDUP", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"cancel_dedup":"bogus"}`), 0644))

	// 文件里的错误值可以被后面的覆盖修正
	cfg, _, err := LoadConfig(dir, "config.json", "", func(c *Config) { c.CancelDedup = "Earliest" })
	require.NoError(t, err)
	assert.Equal(t, DedupEarliest, cfg.CancelDedup)

	// 覆盖本身写错仍然报错
	_, _, err = LoadConfig(t.TempDir(), "config.json", "", func(c *Config) { c.CancelDedup = "latest" })
	require.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("SHIFTINSIGHT_DEDUP", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"cancel_dedup":"latest"}`), 0644))
	_, _, err := LoadConfig(dir, "config.json", "")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte(`{`), 0644))
	_, _, err = LoadConfig(dir, "bad.json", "")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"),
		[]byte(`{"thresholds":{"call_off":30}}`), 0644))
	_, _, err = LoadConfig(dir, "", "data.json")
	require.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("SHIFTINSIGHT_TEST_ENV_KEY=from-dotenv\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("SHIFTINSIGHT_TEST_ENV_KEY") })

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("SHIFTINSIGHT_TEST_ENV_KEY"))
}
