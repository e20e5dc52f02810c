package host

import (
	"reflect"
	"testing"
)

const defaultDir = "/documents/ndless"

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		argv     []string
		wantMode Mode
		wantArgs []string
		wantPath []string
	}{
		{
			name:     "script with args",
			argv:     []string{"prog", "/a/b/c.script", "x", "y"},
			wantMode: Script,
			wantArgs: []string{"/a/b/c.script", "x", "y"},
			wantPath: []string{"/a/b", defaultDir},
		},
		{
			name:     "script without separator",
			argv:     []string{"prog", "c.lua"},
			wantMode: Script,
			wantArgs: []string{"c.lua"},
			wantPath: []string{"", defaultDir},
		},
		{
			name:     "script at root",
			argv:     []string{"prog", "/c.lua", "-v"},
			wantMode: Script,
			wantArgs: []string{"/c.lua", "-v"},
			wantPath: []string{"", defaultDir},
		},
		{
			name:     "interactive",
			argv:     []string{"prog"},
			wantMode: Interactive,
			wantArgs: []string{},
			wantPath: []string{"", defaultDir},
		},
		{
			name:     "empty argv",
			argv:     nil,
			wantMode: Interactive,
			wantArgs: []string{},
			wantPath: []string{"", defaultDir},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, cfg := Resolve(tt.argv, defaultDir)
			if mode != tt.wantMode {
				t.Errorf("mode = %v, want %v", mode, tt.wantMode)
			}
			if !reflect.DeepEqual(cfg.Args, tt.wantArgs) {
				t.Errorf("Args = %q, want %q", cfg.Args, tt.wantArgs)
			}
			if !reflect.DeepEqual(cfg.Path, tt.wantPath) {
				t.Errorf("Path = %q, want %q", cfg.Path, tt.wantPath)
			}
		})
	}
}

func TestResolve_DoesNotAliasArgv(t *testing.T) {
	argv := []string{"prog", "a.lua", "x"}
	_, cfg := Resolve(argv, defaultDir)
	argv[1] = "changed"
	if cfg.Args[0] != "a.lua" {
		t.Errorf("Args[0] = %q after argv mutation, want a.lua", cfg.Args[0])
	}
	if cfg.Script != "a.lua" {
		t.Errorf("Script = %q, want a.lua", cfg.Script)
	}
}

func TestScriptDir(t *testing.T) {
	tests := map[string]string{
		"/a/b/c.lua": "/a/b",
		"b/c.lua":    "b",
		"c.lua":      "",
		"/c.lua":     "",
		"":           "",
		"dir/":       "dir",
	}
	for in, want := range tests {
		if got := ScriptDir(in); got != want {
			t.Errorf("ScriptDir(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfig_PackagePath(t *testing.T) {
	cfg := Config{Path: []string{"", "/documents/ndless/"}}
	if got, want := cfg.PackagePath(), "?.lua;/documents/ndless/?.lua"; got != want {
		t.Errorf("PackagePath() = %q, want %q", got, want)
	}

	cfg = Config{Path: []string{"/a/b", defaultDir}}
	if got, want := cfg.PackagePath(), "/a/b/?.lua;/documents/ndless/?.lua"; got != want {
		t.Errorf("PackagePath() = %q, want %q", got, want)
	}
}
