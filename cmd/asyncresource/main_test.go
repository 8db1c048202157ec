package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/asyncresource/internal/config"
	"github.com/aretw0/asyncresource/internal/demo"
	"github.com/aretw0/asyncresource/internal/logging"
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Demo.Users = 30
	cfg.Demo.PageSize = 5
	cfg.Demo.Latency = 0
	return cfg
}

func TestApp_RunScenario(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(), logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	res, err := a.manager.GetOrCreate(ctx, "demo")
	require.NoError(t, err)

	require.NoError(t, runScenario(ctx, res, 2))

	state := res.State()
	require.Equal(t, domain.StatusResolved, state.Status)
	require.Len(t, state.Data, 11)
	assert.Equal(t, demo.User{ID: 30, Name: "John", Location: "Sydney"}, state.Data[10])
	assert.Equal(t, 31, a.directory.Len())
}

func TestApp_MetricsRecordActions(t *testing.T) {
	ctx := context.Background()
	a, err := newApp(ctx, testConfig(), logging.NewNop())
	require.NoError(t, err)
	defer a.Close()

	res, err := a.manager.GetOrCreate(ctx, "m1")
	require.NoError(t, err)
	require.NoError(t, await(ctx, res, demo.ActionGet, 1))

	families, err := a.registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "asyncresource_dispatch_total")
	assert.Contains(t, names, "go_goroutines")
}

func TestApp_UnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := newApp(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "failed to reach redis")
}

func TestCommands(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ASYNCRES_DEMO_USERS", "20")
	t.Setenv("ASYNCRES_DEMO_LATENCY", "0s")

	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{"version", []string{"version"}, []string{"asyncresource version"}},
		{"diagram", []string{"diagram"}, []string{"stateDiagram-v2", "NotAsked --> Running : dispatch"}},
		{"demo", []string{"demo", "--plain", "--pages", "1", "--diagram"}, []string{
			"v1 not_asked -> running (0 users)",
			"v2 running -> resolved (10 users)",
			"-> rerunning (11 users)",
			"rerunning -> resolved (11 users)",
			"class Resolved current",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			rootCmd.SetOut(&out)
			rootCmd.SetArgs(tt.args)
			require.NoError(t, rootCmd.Execute())
			for _, want := range tt.contains {
				assert.True(t, strings.Contains(out.String(), want), "missing %q in:\n%s", want, out.String())
			}
		})
	}
}

func TestApp_FileStoreSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Store.Dir = t.TempDir()
	cfg.Store.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))
	cfg.Store.RedactKeys = []string{"^location$"}

	a, err := newApp(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	res, err := a.manager.GetOrCreate(ctx, "persisted")
	require.NoError(t, err)
	require.NoError(t, await(ctx, res, demo.ActionGet, 1))
	a.Close()

	raw, err := os.ReadFile(filepath.Join(cfg.Store.Dir, "persisted.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "__encrypted__")

	b, err := newApp(ctx, cfg, logging.NewNop())
	require.NoError(t, err)
	defer b.Close()
	restored, err := b.manager.GetOrCreate(ctx, "persisted")
	require.NoError(t, err)

	state := restored.State()
	require.Equal(t, domain.StatusResolved, state.Status)
	require.Len(t, state.Data, 5)
	assert.Equal(t, "***", state.Data[0].Location)
}
