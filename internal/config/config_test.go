package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSiteFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

const validSite = `
name = "testsite"
https = true
domain = "i.example.com"
upload_token = "super-secret-token"

[[users]]
username = "alice"
password = "secret"

[[users]]
username = "bob"
password = "hunter2"
`

func TestLoad(t *testing.T) {
	sitePath := writeSiteFile(t, validSite)

	type want struct {
		serverAddress string
		databaseDSN   string
		shouldError   bool
	}

	tests := []struct {
		name    string
		envVars map[string]string
		flags   []string
		want    want
	}{
		{
			name:    "default values",
			envVars: map[string]string{},
			flags:   []string{"-c", sitePath},
			want: want{
				serverAddress: "localhost:8080",
				databaseDSN:   "",
			},
		},
		{
			name: "environment variables only",
			envVars: map[string]string{
				"SERVER_ADDRESS": "localhost:8888",
				"DATABASE_DSN":   "postgres://env/db",
			},
			flags: []string{"-c", sitePath},
			want: want{
				serverAddress: "localhost:8888",
				databaseDSN:   "postgres://env/db",
			},
		},
		{
			name:    "flags only",
			envVars: map[string]string{},
			flags:   []string{"-a", "localhost:9999", "-d", "postgres://flag/db", "-c", sitePath},
			want: want{
				serverAddress: "localhost:9999",
				databaseDSN:   "postgres://flag/db",
			},
		},
		{
			name: "environment variables override flags",
			envVars: map[string]string{
				"SERVER_ADDRESS": "localhost:7777",
			},
			flags: []string{"-a", "localhost:9999", "-c", sitePath},
			want: want{
				serverAddress: "localhost:7777",
			},
		},
		{
			name:    "unparseable flags",
			envVars: map[string]string{},
			flags:   []string{"-bogus"},
			want:    want{shouldError: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := Load(tt.flags)
			if tt.want.shouldError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.want.serverAddress, cfg.ServerAddress)
			assert.Equal(t, tt.want.databaseDSN, cfg.DatabaseDSN)
			assert.Equal(t, "testsite", cfg.Site.Name)
			assert.Equal(t, "super-secret-token", cfg.Site.UploadToken)
			assert.Len(t, cfg.Site.Users, 2)
		})
	}
}

func TestLoadSiteCreatesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "config.toml")

	site, err := LoadSite(path)
	require.NoError(t, err)

	assert.FileExists(t, path)
	assert.Equal(t, "sxfs", site.Name)
	assert.NotEmpty(t, site.UploadToken)
	require.Len(t, site.Users, 1)
	assert.Equal(t, "admin", site.Users[0].Username)
	assert.NotEmpty(t, site.Users[0].Password)

	// The generated file must parse back to the same secrets.
	again, err := LoadSite(path)
	require.NoError(t, err)
	assert.Equal(t, site.UploadToken, again.UploadToken)
}

func TestLoadSiteInvalidTOML(t *testing.T) {
	path := writeSiteFile(t, "name = [broken")

	_, err := LoadSite(path)
	assert.Error(t, err)
}

func TestSiteURLs(t *testing.T) {
	site := &Site{HTTPS: false, Domain: "i.example.com"}
	assert.Equal(t, "http://i.example.com", site.BaseURL())
	assert.Equal(t, "http://i.example.com", site.UploadBaseURL())

	site.HTTPS = true
	site.UploadDomain = "up.example.com"
	assert.Equal(t, "https://i.example.com", site.BaseURL())
	assert.Equal(t, "https://up.example.com", site.UploadBaseURL())
}

func TestFindUser(t *testing.T) {
	site := &Site{Users: []User{
		{Username: "alice", Password: "secret"},
	}}

	u, ok := site.FindUser("alice", "secret")
	assert.True(t, ok)
	assert.Equal(t, "alice", u.Username)

	_, ok = site.FindUser("alice", "wrong")
	assert.False(t, ok)

	_, ok = site.FindUser("Alice", "secret")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ServerAddress: "localhost:8080",
		Site: Site{
			Name:        "testsite",
			Domain:      "example.com",
			UploadToken: "tok",
		},
	}
	assert.NoError(t, cfg.Validate())

	cfg.Site.UploadToken = ""
	assert.Error(t, cfg.Validate())
}

func TestRandomBase64(t *testing.T) {
	a := RandomBase64(100)
	b := RandomBase64(100)
	assert.Len(t, a, 100)
	assert.NotEqual(t, a, b)

	// Lengths that are not a multiple of 4 must still come back exact and
	// unpadded.
	for _, chars := range []int{1, 2, 3, 25, 33} {
		s := RandomBase64(chars)
		assert.Len(t, s, chars)
		assert.NotContains(t, s, "=")
	}
}
