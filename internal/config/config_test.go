package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payment.yaml")
	content := `
service:
  jwt_secret: "test-secret"
  commission_rate: "0.05"
  paystack:
    secret_key: "sk_test"
    webhook_secret: "whsec_test"
    use_mock: true
    mock:
      auto_approve: true
      failure_rate: 0
      delay: 300ms
database:
  host: localhost
  port: 5432
  user: payments
  password: payments
  name: payments
  max_open_conns: 10
  max_idle_conns: 5
  conn_max_lifetime: 30m
server:
  http:
    host: 0.0.0.0
    port: 8080
log:
  level: info
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()

	assert.NoError(t, err)
	assert.Equal(t, "0.05", cfg.Service.CommissionRate)
	assert.True(t, cfg.Service.Paystack.UseMock)
	assert.True(t, cfg.Service.Paystack.Mock.AutoApprove)
	assert.Equal(t, 300*time.Millisecond, cfg.Service.Paystack.Mock.Delay.Std())
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime.Std())
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected time.Duration
		wantErr  bool
	}{
		{"milliseconds", `d: 300ms`, 300 * time.Millisecond, false},
		{"minutes", `d: 30m`, 30 * time.Minute, false},
		{"compound", `d: 1h30m`, 90 * time.Minute, false},
		{"bare number", `d: 30`, 0, true},
		{"garbage", `d: soon`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				D Duration `yaml:"d"`
			}
			err := yaml.Unmarshal([]byte(tt.yaml), &out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, out.D.Std())
		})
	}
}
