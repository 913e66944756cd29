package serdex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		wantErr   bool
		wantDepth int
	}{
		{
			name:      "empty config gets defaults",
			config:    Config{},
			wantDepth: DefaultMaxDepth,
		},
		{
			name:      "valid policies",
			config:    Config{FieldRename: LowerCamel, EnumRename: ScreamingSnake, MaxDepth: 64},
			wantDepth: 64,
		},
		{
			name:    "unknown field policy",
			config:  Config{FieldRename: "sPoNgE"},
			wantErr: true,
		},
		{
			name:    "unknown enum policy",
			config:  Config{EnumRename: "title"},
			wantErr: true,
		},
		{
			name:    "negative depth",
			config:  Config{MaxDepth: -1},
			wantErr: true,
		},
		{
			name:    "depth above cap",
			config:  Config{MaxDepth: MaxAllowedDepth + 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.config
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDepth, cfg.MaxDepth)
		})
	}
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvFieldRename, "")
		t.Setenv(EnvEnumRename, "")
		t.Setenv(EnvMaxDepth, "")

		cfg, err := LoadConfigFromEnvironment()
		require.NoError(t, err)
		assert.Equal(t, Config{MaxDepth: DefaultMaxDepth}, cfg)
	})

	t.Run("aliases are accepted", func(t *testing.T) {
		t.Setenv(EnvFieldRename, "camel")
		t.Setenv(EnvEnumRename, "SCREAMING-SNAKE")
		t.Setenv(EnvMaxDepth, "100")

		cfg, err := LoadConfigFromEnvironment()
		require.NoError(t, err)
		assert.Equal(t, LowerCamel, cfg.FieldRename)
		assert.Equal(t, ScreamingSnake, cfg.EnumRename)
		assert.Equal(t, 100, cfg.MaxDepth)
	})

	t.Run("bad depth", func(t *testing.T) {
		t.Setenv(EnvMaxDepth, "deep")

		_, err := LoadConfigFromEnvironment()
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("bad policy", func(t *testing.T) {
		t.Setenv(EnvFieldRename, "yelling")

		_, err := LoadConfigFromEnvironment()
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestConfigFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "serdex.yaml")
	want := Config{FieldRename: Kebab, EnumRename: Identity, MaxDepth: 256}

	require.NoError(t, SaveConfigFile(path, want))

	got, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadConfigFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("field_rename: [oops"), 0o644))
	_, err = LoadConfigFile(bad)
	assert.Error(t, err)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("enum_rename: shouting\n"), 0o644))
	_, err = LoadConfigFile(unknown)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	assert.ErrorContains(t, err, "enum_rename")

	typo := filepath.Join(dir, "typo.yaml")
	require.NoError(t, os.WriteFile(typo, []byte("field_renames: snake\n"), 0o644))
	_, err = LoadConfigFile(typo)
	assert.ErrorContains(t, err, "field_renames")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	cfg, err := LoadConfigFile(empty)
	require.NoError(t, err)
	assert.Equal(t, Config{MaxDepth: DefaultMaxDepth}, cfg)
}

func TestConfig_Apply(t *testing.T) {
	t.Cleanup(func() {
		ResetNaming()
		defaultMaxDepth.Store(DefaultMaxDepth)
	})

	Config{FieldRename: Snake, MaxDepth: 32}.Apply()

	assert.Equal(t, "user_name", CurrentNaming().ApplyField(true, "UserName"))
	assert.Equal(t, int64(32), defaultMaxDepth.Load())

	e, err := newEngine(nil)
	require.NoError(t, err)
	assert.Equal(t, "user_name", e.Naming().ApplyField(true, "userName"))
}

func TestNewEngine_NamingPrecedence(t *testing.T) {
	t.Cleanup(ResetNaming)
	SetFieldRename(Kebab)

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"process-wide", nil, "user-name"},
		{"context", []Option{WithContext(ContextWithNaming(t.Context(), Policies(Snake, "")))}, "user_name"},
		{"explicit config", []Option{WithNaming(Policies(UpperCamel, ""))}, "UserName"},
		{
			"field override beats config",
			[]Option{WithNaming(Policies(UpperCamel, "")), WithFieldRename(ScreamingSnake)},
			"USER_NAME",
		},
		{"identity override", []Option{WithFieldRename(Identity)}, "user_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := newEngine(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Naming().ApplyField(true, "user_name"))
		})
	}
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"field policy", WithFieldRename("loud")},
		{"enum policy", WithEnumRename("quiet")},
		{"nil context", WithContext(nil)},
		{"zero depth", WithMaxDepth(0)},
		{"huge depth", WithMaxDepth(MaxAllowedDepth + 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEngine([]Option{tt.opt})
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.True(t, IsConfigurationError(err))
		})
	}
}
