package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "zmq", config.Transport)
	assert.Equal(t, 5*time.Minute, config.IdleTimeout)
	assert.Equal(t, 10000, config.QueueCapacity)
	assert.Equal(t, "QBUZZ", config.CommercialExemptOperator)
	assert.Equal(t, "CXX", config.DayRolloverOperator)
	assert.Equal(t, 7, config.DayRolloverCutoffHour)

	fromDate, err := config.FromDateIn(time.UTC)
	require.NoError(t, err)
	assert.Nil(t, fromDate)
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := writeConfig(t, `
transport: stomp
stomp:
  address: localhost:61613
  destination: /topic/bison
workers: 4
gc_interval: 30s
from_date: "2024-03-01"
`)
	t.Setenv("BISON_WORKERS", "8")
	t.Setenv("BISON_TOPICS", "/GOVI/KV6posinfo, /GOVI/KV15messages")

	config, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "stomp", config.Transport)
	assert.Equal(t, "/topic/bison", config.Stomp.Destination)
	assert.Equal(t, 8, config.Workers)
	assert.Equal(t, 30*time.Second, config.GCInterval)
	assert.Equal(t, []string{"/GOVI/KV6posinfo", "/GOVI/KV15messages"}, config.Topics)

	location, err := config.Location()
	require.NoError(t, err)
	fromDate, err := config.FromDateIn(location)
	require.NoError(t, err)
	require.NotNil(t, fromDate)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, location), *fromDate)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("unbounded queue", func(t *testing.T) {
		_, err := Load(writeConfig(t, "queue_capacity: 0\n"))
		assert.Error(t, err)
	})

	t.Run("unknown transport", func(t *testing.T) {
		_, err := Load(writeConfig(t, "transport: amqp\n"))
		assert.Error(t, err)
	})

	t.Run("stomp without destination", func(t *testing.T) {
		_, err := Load(writeConfig(t, "transport: stomp\nstomp:\n  address: localhost:61613\n"))
		assert.Error(t, err)
	})

	t.Run("invalid environment duration", func(t *testing.T) {
		t.Setenv("BISON_GC_INTERVAL", "soon")
		_, err := Load("")
		assert.Error(t, err)
	})
}
