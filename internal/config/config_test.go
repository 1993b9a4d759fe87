package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearMappingEnv blanks the first few mapping indices so ambient environment
// variables cannot leak into a test. Empty counts as unset for the scanner.
func clearMappingEnv(t *testing.T) {
	t.Helper()
	for i := 1; i <= 8; i++ {
		t.Setenv(fmt.Sprintf("AUTONET_%d_KEY", i), "")
		t.Setenv(fmt.Sprintf("AUTONET_%d_NET", i), "")
	}
}

func TestConfig_Load_NoMappings(t *testing.T) {
	clearMappingEnv(t)

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "AUTONET_")
}

func TestConfig_Load_Defaults(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	require.Len(t, cfg.Mappings, 1)
	assert.Equal(t, 1, cfg.Mappings[0].Index)
	assert.Equal(t, "com.example.proxy", cfg.Mappings[0].LabelKey)
	assert.Equal(t, "proxy-net", cfg.Mappings[0].Network)

	assert.Equal(t, DefaultAliasLabel, cfg.AliasLabel)
	assert.True(t, cfg.InitialAttach)
	assert.False(t, cfg.InitialRunningOnly)
	assert.True(t, cfg.AutoDisconnect)
	assert.Equal(t, DefaultRescanSeconds, cfg.RescanSeconds)
	assert.Equal(t, float64(0), cfg.SweepRPS)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.LogFile)
}

func TestConfig_Load_MultipleMappings(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")
	t.Setenv("AUTONET_2_KEY", "com.example.metrics")
	t.Setenv("AUTONET_2_NET", "metrics-net")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Mappings, 2)
	assert.Equal(t, "proxy-net", cfg.Mappings[0].Network)
	assert.Equal(t, 2, cfg.Mappings[1].Index)
	assert.Equal(t, "metrics-net", cfg.Mappings[1].Network)
}

func TestConfig_Load_StopsAtFirstMissingIndex(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")
	// Index 2 left unset: index 3 must not be reached.
	t.Setenv("AUTONET_3_KEY", "com.example.orphan")
	t.Setenv("AUTONET_3_NET", "orphan-net")

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Mappings, 1)
	assert.Equal(t, "proxy-net", cfg.Mappings[0].Network)
}

func TestConfig_Load_SkipsIncompletePair(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")
	t.Setenv("AUTONET_2_KEY", "com.example.halfset")
	t.Setenv("AUTONET_3_KEY", "com.example.metrics")
	t.Setenv("AUTONET_3_NET", "metrics-net")

	cfg, err := Load()
	require.NoError(t, err)

	// Index 2 has no NET half: skipped, but the scan continues to 3.
	require.Len(t, cfg.Mappings, 2)
	assert.Equal(t, 1, cfg.Mappings[0].Index)
	assert.Equal(t, 3, cfg.Mappings[1].Index)
	assert.Equal(t, "metrics-net", cfg.Mappings[1].Network)
}

func TestConfig_Load_TrimsMappingValues(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "  com.example.proxy  ")
	t.Setenv("AUTONET_1_NET", " proxy-net ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "com.example.proxy", cfg.Mappings[0].LabelKey)
	assert.Equal(t, "proxy-net", cfg.Mappings[0].Network)
}

func TestConfig_Load_RescanSeconds(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  int
	}{
		{"custom", "120", 120},
		{"zero disables", "0", 0},
		{"negative falls back", "-5", DefaultRescanSeconds},
		{"garbage falls back", "soon", DefaultRescanSeconds},
		{"padded", " 45 ", 45},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearMappingEnv(t)
			t.Setenv("AUTONET_1_KEY", "com.example.proxy")
			t.Setenv("AUTONET_1_NET", "proxy-net")
			t.Setenv("AUTONET_RESCAN_SECONDS", tc.value)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg.RescanSeconds)
		})
	}
}

func TestConfig_Load_BoolOverrides(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")
	t.Setenv("INITIAL_ATTACH", "no")
	t.Setenv("INITIAL_RUNNING_ONLY", "Yes")
	t.Setenv("AUTO_DISCONNECT", "0")
	t.Setenv("AUTONET_DEBUG", "ON")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.InitialAttach)
	assert.True(t, cfg.InitialRunningOnly)
	assert.False(t, cfg.AutoDisconnect)
	assert.True(t, cfg.Debug)
}

func TestConfig_Load_UnrecognizedBoolKeepsDefault(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")
	t.Setenv("INITIAL_ATTACH", "banana")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.InitialAttach)
}

func TestConfig_Load_AliasLabelOverride(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")
	t.Setenv("LABEL_ALIAS_KEY", "org.acme.hostname")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "org.acme.hostname", cfg.AliasLabel)
}

func TestConfig_Load_SweepRPS(t *testing.T) {
	clearMappingEnv(t)
	t.Setenv("AUTONET_1_KEY", "com.example.proxy")
	t.Setenv("AUTONET_1_NET", "proxy-net")
	t.Setenv("AUTONET_SWEEP_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.SweepRPS)
}

func TestConfig_RescanInterval(t *testing.T) {
	cfg := &Config{RescanSeconds: 30}
	assert.Equal(t, 30*time.Second, cfg.RescanInterval())

	cfg.RescanSeconds = 0
	assert.Equal(t, time.Duration(0), cfg.RescanInterval())
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"1", false, true},
		{"true", false, true},
		{"YES", false, true},
		{"y", false, true},
		{"on", false, true},
		{"0", true, false},
		{"false", true, false},
		{"No", true, false},
		{"n", true, false},
		{"OFF", true, false},
		{" true ", false, true},
		{"maybe", true, true},
		{"maybe", false, false},
	}
	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("AUTONET_TEST_BOOL", tc.value)
			assert.Equal(t, tc.want, EnvBool("AUTONET_TEST_BOOL", tc.def))
		})
	}

	t.Run("unset returns default", func(t *testing.T) {
		assert.True(t, EnvBool("AUTONET_TEST_BOOL_UNSET", true))
		assert.False(t, EnvBool("AUTONET_TEST_BOOL_UNSET", false))
	})
}
