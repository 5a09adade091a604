package loader

import (
	"testing"
)

func envLoader(vars ...string) *EnvLoader {
	l := NewEnvLoader(DefaultEnvPrefix)
	l.environ = func() []string { return vars }
	return l
}

func TestEnvLoader_Load(t *testing.T) {
	l := envLoader(
		"ROPECORE_LOG_LEVEL=debug",
		"ROPECORE_HASH=xxhash",
		"ROPECORE_ROPE_CHUNK_SIZE=4KiB",
		"ROPECORE_ROPE_MAX_DEPTH=32",
		"ROPECORE_LOGGING_COMPRESS=true",
		"OTHER_VAR=ignored",
	)
	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	tests := []struct {
		path string
		want any
	}{
		{"logging.level", "debug"},
		{"hash.algorithm", "xxhash"},
		{"rope.chunkSize", "4KiB"},
		{"rope.maxDepth", int64(32)},
		{"logging.compress", true},
	}
	for _, tt := range tests {
		if val, ok := GetPath(config, tt.path); !ok || val != tt.want {
			t.Errorf("%s = %v (%T), want %v", tt.path, val, val, tt.want)
		}
	}
	if _, ok := config["other"]; ok {
		t.Error("unprefixed variables should be ignored")
	}
}

func TestEnvLoader_CustomMapping(t *testing.T) {
	l := envLoader("ROPECORE_SEED=99")
	l.AddMapping("ROPECORE_SEED", "hash.seed")

	config, _ := l.Load()
	if val, ok := GetPath(config, "hash.seed"); !ok || val != int64(99) {
		t.Errorf("hash.seed = %v, want 99", val)
	}
}

func TestEnvToPath(t *testing.T) {
	l := NewEnvLoader(DefaultEnvPrefix)
	tests := map[string]string{
		"ROPECORE_ROPE_CHUNK_SIZE":     "rope.chunkSize",
		"ROPECORE_NATIVE_RELEASE":      "native.release",
		"ROPECORE_LOGGING_MAX_BACKUPS": "logging.maxBackups",
		"ROPECORE_SINGLE":              "",
	}
	for env, want := range tests {
		if got := l.envToPath(env); got != want {
			t.Errorf("envToPath(%q) = %q, want %q", env, got, want)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"", ""},
		{"true", true},
		{"off", false},
		{"1", int64(1)},
		{"-42", int64(-42)},
		{"1.5", 1.5},
		{"64KiB", "64KiB"},
		{"hello", "hello"},
	}
	for _, tt := range tests {
		if got := parseValue(tt.input); got != tt.want {
			t.Errorf("parseValue(%q) = %v (%T), want %v", tt.input, got, got, tt.want)
		}
	}

	arr, ok := parseValue(`["a","b"]`).([]any)
	if !ok || len(arr) != 2 {
		t.Errorf("JSON array not parsed: %v", arr)
	}
}
