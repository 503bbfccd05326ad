package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/cndevent/api"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cnd.yaml")
	writeFile(t, path, "max_events: 8\nwaiter: epoll\nlog_level: debug\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MaxEvents)
	assert.Equal(t, WaiterEpoll, cfg.Waiter)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, DefaultConfig().Socket, cfg.Socket, "unset keys keep defaults")
	assert.Equal(t, -1, cfg.CPU)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "max_events: [\n")
	_, err = LoadConfig(bad)
	assert.Error(t, err)

	zero := filepath.Join(dir, "zero.yaml")
	writeFile(t, zero, "max_events: 0\n")
	_, err = LoadConfig(zero)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
	assert.Equal(t, api.ErrCodeInvalidArgument, api.CodeOf(err))

	poll := filepath.Join(dir, "poll.yaml")
	writeFile(t, poll, "waiter: kqueue\n")
	_, err = LoadConfig(poll)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)

	cpu := filepath.Join(dir, "cpu.yaml")
	writeFile(t, cpu, "cpu: -2\n")
	_, err = LoadConfig(cpu)
	assert.ErrorIs(t, err, api.ErrInvalidArgument)
}

func TestConfigStore_Listeners(t *testing.T) {
	cs := NewConfigStore(DefaultConfig())
	var seen []string
	cs.OnReload(func(c Config) { seen = append(seen, c.LogLevel) })

	next := DefaultConfig()
	next.LogLevel = "debug"
	cs.SetConfig(next)

	assert.Equal(t, []string{"debug"}, seen)
	assert.Equal(t, "debug", cs.GetSnapshot().LogLevel)
}

func TestConfigStore_ListenerMayRegisterListener(t *testing.T) {
	cs := NewConfigStore(DefaultConfig())
	late := 0
	cs.OnReload(func(Config) {
		cs.OnReload(func(Config) { late++ })
	})

	cs.SetConfig(DefaultConfig())
	assert.Equal(t, 0, late, "listeners added during dispatch run from the next change")

	cs.SetConfig(DefaultConfig())
	assert.Equal(t, 1, late)
}
