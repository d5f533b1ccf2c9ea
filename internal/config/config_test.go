package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/inferschema/internal/logging"
	"github.com/aretw0/inferschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, schema.DefaultMaxDepth, cfg.Decode.MaxDepth)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "inferschema.yaml", `
log:
  level: debug
decode:
  unknown_fields: reject
  max_depth: 8
store:
  driver: redis
  redis:
    addr: redis:6379
    db: 2
    ttl: 90s
http:
  port: 9000
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, schema.RejectUnknown, cfg.Decode.UnknownFields)
	assert.Equal(t, 8, cfg.Decode.MaxDepth)
	assert.Equal(t, DriverRedis, cfg.Store.Driver)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Store.Redis.TTL)
	assert.Equal(t, "inferschema:definition:", cfg.Store.Redis.Prefix)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, "stdio", cfg.MCP.Transport)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "inferschema.json", `{"store": {"driver": "loam", "loam": {"dir": "defs", "watch": true}}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LoamConfig{Dir: "defs", Watch: true}, cfg.Store.Loam)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "inferschema.yaml", "http:\n  port: 9000\n")
	t.Setenv("INFERSCHEMA_HTTP_PORT", "9100")
	t.Setenv("INFERSCHEMA_DECODE_UNKNOWN_FIELDS", "preserve")
	t.Setenv("INFERSCHEMA_STORE_REDIS_TTL", "5m")
	t.Setenv("INFERSCHEMA_STORE_LOAM_WATCH", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, schema.PreserveUnknown, cfg.Decode.UnknownFields)
	assert.Equal(t, 5*time.Minute, cfg.Store.Redis.TTL)
	assert.True(t, cfg.Store.Loam.Watch)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown driver", "c.yaml", "store:\n  driver: etcd\n"},
		{"unknown policy", "c.yaml", "decode:\n  unknown_fields: maybe\n"},
		{"unknown key", "c.yaml", "htp:\n  port: 1\n"},
		{"bad depth", "c.yaml", "decode:\n  max_depth: 0\n"},
		{"bad transport", "c.yaml", "mcp:\n  transport: grpc\n"},
		{"bad json", "c.json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "INFERSCHEMA_STORE_REDIS_ADDR", EnvName("store.redis.addr"))
	assert.Equal(t, "INFERSCHEMA_DECODE_MAX_DEPTH", EnvName("decode.max_depth"))
}

func TestHolder_Reload(t *testing.T) {
	path := writeFile(t, "inferschema.yaml", "decode:\n  max_depth: 8\n")
	h, err := NewHolder(path, logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 8, h.Get().Decode.MaxDepth)

	var seen atomic.Int64
	h.OnChange(func(c *Config) { seen.Store(int64(c.Decode.MaxDepth)) })

	require.NoError(t, os.WriteFile(path, []byte("decode:\n  max_depth: 4\n"), 0o644))
	require.NoError(t, h.Reload())
	assert.Equal(t, 4, h.Get().Decode.MaxDepth)
	assert.Equal(t, int64(4), seen.Load())

	// a broken file keeps the previous config
	require.NoError(t, os.WriteFile(path, []byte("decode:\n  max_depth: nope\n"), 0o644))
	assert.Error(t, h.Reload())
	assert.Equal(t, 4, h.Get().Decode.MaxDepth)
}

func TestHolder_WatchFile(t *testing.T) {
	path := writeFile(t, "inferschema.yaml", "decode:\n  unknown_fields: drop\n")
	h, err := NewHolder(path, logging.NewNop())
	require.NoError(t, err)
	require.NoError(t, h.WatchFile())
	defer h.Stop()

	require.NoError(t, os.WriteFile(path, []byte("decode:\n  unknown_fields: reject\n"), 0o644))

	assert.Eventually(t, func() bool {
		return h.Get().Decode.UnknownFields == schema.RejectUnknown
	}, 2*time.Second, 20*time.Millisecond)

	h.Stop()
	h.Stop()
}

func TestHolder_NoFile(t *testing.T) {
	h, err := NewHolder("", logging.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "", h.Path())
	assert.Error(t, h.WatchFile())
}
