package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func()
		cleanupEnv  func()
		wantError   bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "正常系: デフォルト値で設定を読み込む",
			setupEnv: func() {
				os.Setenv("JWT_SECRET", "test-secret")
			},
			cleanupEnv: func() {
				os.Unsetenv("JWT_SECRET")
			},
			wantError: false,
			checkConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "test-secret", cfg.JWT.Secret)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "http://localhost:8000", cfg.API.BaseURL)
				assert.Equal(t, 10*time.Second, cfg.API.Timeout)
				assert.Equal(t, "accessToken", cfg.Session.CookieName)
				assert.Equal(t, 10*time.Minute, cfg.Page.TTL)
				assert.Equal(t, 30*time.Second, cfg.Page.OrderStaleTime)
			},
		},
		{
			name: "正常系: 環境変数から設定を読み込む",
			setupEnv: func() {
				os.Setenv("ENVIRONMENT", "production")
				os.Setenv("SERVER_PORT", "9000")
				os.Setenv("API_BASE_URL", "https://api.example.com/")
				os.Setenv("API_TIMEOUT", "3s")
				os.Setenv("JWT_SECRET", "prod-secret")
				os.Setenv("PAGE_TTL", "2m")
			},
			cleanupEnv: func() {
				os.Unsetenv("ENVIRONMENT")
				os.Unsetenv("SERVER_PORT")
				os.Unsetenv("API_BASE_URL")
				os.Unsetenv("API_TIMEOUT")
				os.Unsetenv("JWT_SECRET")
				os.Unsetenv("PAGE_TTL")
			},
			wantError: false,
			checkConfig: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "production", cfg.Environment)
				assert.Equal(t, 9000, cfg.Server.Port)
				// 末尾のスラッシュは取り除かれる
				assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
				assert.Equal(t, 3*time.Second, cfg.API.Timeout)
				assert.Equal(t, 2*time.Minute, cfg.Page.TTL)
			},
		},
		{
			name: "異常系: JWT_SECRETが空",
			setupEnv: func() {
				os.Unsetenv("JWT_SECRET")
			},
			cleanupEnv: func() {},
			wantError:  true,
		},
		{
			name: "異常系: PAGE_TTLが0",
			setupEnv: func() {
				os.Setenv("JWT_SECRET", "test-secret")
				os.Setenv("PAGE_TTL", "0s")
			},
			cleanupEnv: func() {
				os.Unsetenv("JWT_SECRET")
				os.Unsetenv("PAGE_TTL")
			},
			wantError: true,
		},
		{
			name: "異常系: PAGE_SWEEP_INTERVALが負",
			setupEnv: func() {
				os.Setenv("JWT_SECRET", "test-secret")
				os.Setenv("PAGE_SWEEP_INTERVAL", "-1s")
			},
			cleanupEnv: func() {
				os.Unsetenv("JWT_SECRET")
				os.Unsetenv("PAGE_SWEEP_INTERVAL")
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()
			defer tt.cleanupEnv()

			cfg, err := Load()

			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, cfg)
				if tt.checkConfig != nil {
					tt.checkConfig(t, cfg)
				}
			}
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("JWT_SECRET=file-secret\nSESSION_COOKIE_NAME=sid\n"), 0o600))
	defer os.Unsetenv("JWT_SECRET")
	defer os.Unsetenv("SESSION_COOKIE_NAME")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, "sid", cfg.Session.CookieName)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{Port: 8080}

	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, 8081, cfg.GRPCPort())
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		want         int
	}{
		{
			name:         "環境変数が設定されている",
			envValue:     "123",
			defaultValue: 0,
			want:         123,
		},
		{
			name:         "環境変数が空",
			envValue:     "",
			defaultValue: 456,
			want:         456,
		},
		{
			name:         "環境変数が無効な値",
			envValue:     "invalid",
			defaultValue: 789,
			want:         789,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_INT", tt.envValue)
			defer os.Unsetenv("TEST_INT")

			got := getEnvAsInt("TEST_INT", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
	}{
		{
			name:         "環境変数がtrue",
			envValue:     "true",
			defaultValue: false,
			want:         true,
		},
		{
			name:         "環境変数が空",
			envValue:     "",
			defaultValue: true,
			want:         true,
		},
		{
			name:         "環境変数が無効な値",
			envValue:     "invalid",
			defaultValue: false,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_BOOL", tt.envValue)
			defer os.Unsetenv("TEST_BOOL")

			got := getEnvAsBool("TEST_BOOL", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
	}{
		{
			name:         "環境変数が有効な時間",
			envValue:     "1h",
			defaultValue: time.Minute,
			want:         time.Hour,
		},
		{
			name:         "環境変数が無効な値",
			envValue:     "invalid",
			defaultValue: time.Hour,
			want:         time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("TEST_DURATION", tt.envValue)
			defer os.Unsetenv("TEST_DURATION")

			got := getEnvAsDuration("TEST_DURATION", tt.defaultValue)
			assert.Equal(t, tt.want, got)
		})
	}
}
