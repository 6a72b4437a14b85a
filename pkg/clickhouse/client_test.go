package clickhouse

import (
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptions(t *testing.T) {
	opts := buildOptions(ClientConfig{
		Hosts:        []string{"ch-1", "ch-2:9440"},
		Port:         9000,
		Database:     "upgraderisk",
		User:         "default",
		Password:     "secret",
		DialTimeout:  5 * time.Second,
		MaxExecTime:  30 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	})

	assert.Equal(t, []string{"ch-1:9000", "ch-2:9440"}, opts.Addr)
	assert.Equal(t, "default", opts.Auth.Database)
	assert.Equal(t, "secret", opts.Auth.Password)
	assert.Equal(t, clickhouse.Native, opts.Protocol)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	require.NotNil(t, opts.Compression)
	assert.Equal(t, clickhouse.CompressionLZ4, opts.Compression.Method)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
	assert.Equal(t, 1, opts.Settings["async_insert"])
	assert.Equal(t, 1, opts.Settings["wait_for_async_insert"])
}

func TestBuildOptionsOverHTTP(t *testing.T) {
	opts := buildOptions(ClientConfig{Hosts: []string{"ch"}, Port: 8123, UseHTTP: true})
	assert.Equal(t, clickhouse.HTTP, opts.Protocol)
	assert.Equal(t, []string{"ch:8123"}, opts.Addr)
	assert.NotContains(t, opts.Settings, "async_insert")
	assert.NotContains(t, opts.Settings, "max_execution_time")
}

func TestWithAddrSplitsHosts(t *testing.T) {
	var cfg ClientConfig
	WithAddr(" ch-1, ,ch-2 ", 9000)(&cfg)
	assert.Equal(t, []string{"ch-1", "ch-2"}, cfg.Hosts)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
