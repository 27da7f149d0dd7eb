package setting

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/KirkDiggler/yze-core/internal/entities"
	yzeerr "github.com/KirkDiggler/yze-core/internal/errors"
	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a YAML setting definition
func Parse(data []byte) (*entities.Setting, error) {
	var s entities.Setting
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, yzeerr.WrapWithCode(err, yzeerr.CodeInvalidArgument, "failed to decode setting")
	}
	Normalize(&s)

	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadFile reads one setting from a YAML file
func LoadFile(path string) (*entities.Setting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, yzeerr.Wrapf(err, "failed to read setting file %s", path)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, yzeerr.Wrapf(err, "failed to load %s", path).
			WithMeta("path", path)
	}
	return s, nil
}

// LoadDir reads every *.yaml and *.yml file in dir, sorted by file name
func LoadDir(dir string) ([]*entities.Setting, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, yzeerr.Wrapf(err, "failed to read settings directory %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	out := make([]*entities.Setting, 0, len(names))
	for _, name := range names {
		s, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadInto loads every setting in dir into the registry
func LoadInto(r *Registry, dir string) ([]*entities.Setting, error) {
	settings, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, s := range settings {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return settings, nil
}
