// Package launcher maintains the device launcher's file extension registry,
// a YAML file associating script extensions with the program that opens
// them.
package launcher

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/nsplua/errors"
)

// Registry is the contents of the launcher file.
type Registry struct {
	// Extensions maps a file extension (without the dot) to a program name.
	Extensions map[string]string `yaml:"extensions"`
}

// Load reads the registry at path. A missing file is an empty registry.
func Load(path string) (*Registry, error) {
	reg := &Registry{Extensions: map[string]string{}}

	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return reg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindUnreadable, err, "read "+path)
	}
	if err := yaml.Unmarshal(data, reg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "parse "+path)
	}
	if reg.Extensions == nil {
		reg.Extensions = map[string]string{}
	}
	return reg, nil
}

// Save writes the registry to path, creating its directory.
func (r *Registry) Save(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "encode registry")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindUnreadable, err, "create "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindUnreadable, err, "write "+path)
	}
	return nil
}

// Register associates ext with program in the registry at path. It reports
// whether the file changed; registering an existing association is a no-op.
// Other entries are preserved.
func Register(path, ext, program string) (bool, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" || program == "" {
		return false, errors.InvalidInput(errors.PhaseConfig, "extension and program are required")
	}

	reg, err := Load(path)
	if err != nil {
		return false, err
	}
	if reg.Extensions[ext] == program {
		return false, nil
	}
	reg.Extensions[ext] = program
	if err := reg.Save(path); err != nil {
		return false, err
	}
	return true, nil
}
