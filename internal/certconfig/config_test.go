package certconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:           DefaultPort,
		BaseURL:        "https://certs.example.edu",
		PrivateKeyPath: DefaultPrivateKeyPath,
		IssuerName:     DefaultIssuerName,
		AdminPassword:  "s3cret",
		JWTSecret:      "0123456789abcdef",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no admin password", func(c *Config) { c.AdminPassword = "" }, "admin password"},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "JWT secret"},
		{"blank issuer", func(c *Config) { c.IssuerName = "  " }, "issuer name"},
		{"no base url", func(c *Config) { c.BaseURL = "" }, "base URL is required"},
		{"relative base url", func(c *Config) { c.BaseURL = "/certs" }, "invalid base URL"},
		{"no key", func(c *Config) { c.PrivateKeyPath = "" }, "private key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestOrigins(t *testing.T) {
	cfg := Config{}
	require.Equal(t, "*", cfg.Origins())

	cfg.AllowedOrigins = " https://a.example.edu,https://b.example.edu "
	require.Equal(t, "https://a.example.edu,https://b.example.edu", cfg.Origins())
}
