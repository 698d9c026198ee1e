package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandPresence(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"serve", "migrate", "reindex"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
	assert.NotNil(t, cmd.RunE, "root runs serve by default")
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9999\"\n"), 0o600))

	opts := &rootOptions{configPath: path}
	cfg, err := opts.load()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)

	flag := newRootCommand().PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestReindexRequiresMeili(t *testing.T) {
	t.Setenv("MEILI_URL", "")
	path := filepath.Join(t.TempDir(), "inkwell.yaml")
	require.NoError(t, os.WriteFile(path, []byte("meili_url: \"\"\n"), 0o600))

	cmd := newRootCommand()
	cmd.SetArgs([]string{"reindex", "--config", path})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEILI_URL")
}
