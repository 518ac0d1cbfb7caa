package config

import (
	"testing"
	"time"

	"github.com/abgdnv/storefront/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.HTTPServer.Port = 8080
	c.HTTPServer.Timeout.Read = time.Second
	c.HTTPServer.Timeout.Write = time.Second
	c.HTTPServer.Timeout.Idle = time.Second
	c.HTTPServer.Timeout.ReadHeader = time.Second
	c.Database = config.DatabaseConfig{Driver: config.DriverMemory}
	c.GRPC.Port = "9090"
	c.Shutdown.Timeout = time.Second
	c.Images.BaseURL = "http://localhost:8080/images"
	return c
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name     string
		mutate   func(c *Config)
		expected []string
	}{
		{
			name:   "Success - minimal memory configuration",
			mutate: func(*Config) {},
		},
		{
			name: "Error - redis backend without redis",
			mutate: func(c *Config) {
				c.Recent.Backend = RecentBackendRedis
			},
			expected: []string{"requires redis.addr"},
		},
		{
			name: "Error - unknown recent backend",
			mutate: func(c *Config) {
				c.Recent.Backend = "disk"
			},
			expected: []string{"unsupported recent backend: disk"},
		},
		{
			name: "Error - all problems reported",
			mutate: func(c *Config) {
				c.Shutdown.Timeout = 0
				c.GRPC.Port = ""
				c.Images.BaseURL = ""
			},
			expected: []string{"shutdown timeout", "gRPC port", "images base URL"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			c := validConfig()
			tc.mutate(c)

			// when
			err := c.Validate()

			// then
			if len(tc.expected) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, msg := range tc.expected {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestConfig_ValidateDefaultsRecentBackend(t *testing.T) {
	c := validConfig()

	require.NoError(t, c.Validate())
	assert.Equal(t, RecentBackendMemory, c.Recent.Backend)
}

func TestConfig_StringMasksDatabaseURL(t *testing.T) {
	c := validConfig()
	c.Database.URL = "postgres://user:secret@db:5432/storefront"

	s := c.String()

	assert.NotContains(t, s, "secret")
	assert.Contains(t, s, "****@db:5432/storefront")
	assert.Contains(t, s, "images.baseurl: http://localhost:8080/images")
}
