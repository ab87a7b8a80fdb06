// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "ads-api-token", "  tok_abc123  \n")
				writeFile(t, dir, "openweather-api-key", "owm_xyz789")
				writeFile(t, dir, "github-token", "ghp_aaa\n")
				return dir
			},
			want: map[string]string{
				"ads-api-token":       "tok_abc123",
				"openweather-api-key": "owm_xyz789",
				"github-token":        "ghp_aaa",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files and dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "ads-api-token", "valid")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, ".gitignore", "*")
				return dir
			},
			want: map[string]string{"ads-api-token": "valid"},
		},
		{
			name: "expands environment references",
			setup: func(t *testing.T) string {
				t.Setenv("MR_TEST_TOKEN", "from-env")
				dir := t.TempDir()
				writeFile(t, dir, "ads-api-token", "${MR_TEST_TOKEN}\n")
				return dir
			},
			want: map[string]string{"ads-api-token": "from-env"},
		},
		{
			name: "drops unset environment references",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "ads-api-token", "${MR_DEFINITELY_UNSET_VAR}")
				return dir
			},
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpand(t *testing.T) {
	t.Setenv("MR_EXPAND_TEST", "value")

	assert.Equal(t, "plain", Expand("plain"))
	assert.Equal(t, "value", Expand("${MR_EXPAND_TEST}"))
	assert.Equal(t, "", Expand("${MR_EXPAND_UNSET}"))
}
