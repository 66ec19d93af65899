package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calbridge/internal/apierror"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "client-secret")
	t.Setenv("GOOGLE_REDIRECT_URL", "http://localhost:5000/api/auth/google/callback")
	t.Setenv("FRONTEND_URL", "http://localhost:3000")

	// Run from a directory without a .env file
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "client-id", cfg.GoogleClientID)
	assert.Equal(t, "client-secret", cfg.GoogleClientSecret)
	assert.Equal(t, "http://localhost:5000/api/auth/google/callback", cfg.GoogleRedirectURL)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "calbridge.db", cfg.DBPath)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
}

func TestValidateOAuth(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "complete",
			cfg: Config{
				GoogleClientID:     "id",
				GoogleClientSecret: "secret",
				GoogleRedirectURL:  "http://localhost:5000/cb",
			},
			wantErr: false,
		},
		{
			name:    "missing client id",
			cfg:     Config{GoogleClientSecret: "secret", GoogleRedirectURL: "http://localhost:5000/cb"},
			wantErr: true,
		},
		{
			name:    "missing client secret",
			cfg:     Config{GoogleClientID: "id", GoogleRedirectURL: "http://localhost:5000/cb"},
			wantErr: true,
		},
		{
			name:    "missing redirect url",
			cfg:     Config{GoogleClientID: "id", GoogleClientSecret: "secret"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateOAuth()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apierror.KindConfiguration, apierror.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
