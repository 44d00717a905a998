package server_test

import (
	"testing"
	"time"

	"marketplace/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_IsValidEnvironment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"Development", server.EnvDevelopment, true},
		{"Staging", server.EnvStaging, true},
		{"Production", server.EnvProduction, true},
		{"Invalid", "qa", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Environment: tt.env}
			assert.Equal(t, tt.want, c.IsValidEnvironment())
		})
	}
}

func TestConfig_ReadTimeout(t *testing.T) {
	assert.Equal(t, 15*time.Second, server.Config{}.ReadTimeout())
	assert.Equal(t, 3*time.Second, server.Config{ReadTimeoutSeconds: 3}.ReadTimeout())
}
