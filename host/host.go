// Package host translates process invocation arguments into the guest
// engine's argument list and module search path.
package host

import "strings"

// Mode is the execution mode selected by the invocation.
type Mode int

const (
	// Interactive runs the read-evaluate-print loop.
	Interactive Mode = iota
	// Script runs one file.
	Script
)

func (m Mode) String() string {
	if m == Script {
		return "script"
	}
	return "interactive"
}

// Config is what the guest sees of the host: its argument list and the two
// entry module search path. Built once, before any script runs.
type Config struct {
	// Script is the path of the script to run, empty in interactive mode.
	Script string
	// Args is the guest argument list, starting with the script path.
	Args []string
	// Path is the module search path: the script directory, then the
	// device default directory.
	Path []string
}

// Resolve decides the execution mode from argv (argv[0] is the program
// name) and builds the guest view of it.
func Resolve(argv []string, defaultDir string) (Mode, Config) {
	if len(argv) < 2 {
		return Interactive, Config{
			Args: []string{},
			Path: []string{"", defaultDir},
		}
	}

	script := argv[1]
	args := make([]string, len(argv)-1)
	copy(args, argv[1:])
	return Script, Config{
		Script: script,
		Args:   args,
		Path:   []string{ScriptDir(script), defaultDir},
	}
}

// ScriptDir returns the part of path before its last '/', or "" when path
// has no separator.
func ScriptDir(path string) string {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return ""
	}
	return path[:i]
}

// PackagePath renders the module search path as a Lua package.path
// template. The empty entry means the current directory.
func (c Config) PackagePath() string {
	templates := make([]string, 0, len(c.Path))
	for _, dir := range c.Path {
		if dir == "" {
			templates = append(templates, "?.lua")
			continue
		}
		templates = append(templates, strings.TrimSuffix(dir, "/")+"/?.lua")
	}
	return strings.Join(templates, ";")
}
