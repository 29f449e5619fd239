package dictionary

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFS builds a dictionary from every JSON/YAML document in fsys.
func LoadFS(fsys fs.FS) (Dictionary, error) {
	return Dictionary{}.Extend(fsys)
}

// Extend applies every JSON/YAML document in fsys on top of d, in lexical
// path order. A nil fsys returns d unchanged.
func (d Dictionary) Extend(fsys fs.FS) (Dictionary, error) {
	if fsys == nil {
		return d, nil
	}

	current := d
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDictionaryFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("dictionary: read %s: %w", path, err)
		}
		spec, err := parseDocument(data, path)
		if err != nil {
			return err
		}
		next, err := current.Apply(spec, path)
		if err != nil {
			return err
		}
		current = next
		return nil
	})
	if err != nil {
		return Dictionary{}, err
	}
	return current, nil
}

func parseDocument(data []byte, source string) (Spec, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Spec{}, fmt.Errorf("dictionary: file %s is empty", source)
	}

	var spec Spec
	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &spec); err != nil {
			return Spec{}, fmt.Errorf("dictionary: parse %s: %w", source, err)
		}
		return spec, nil
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("dictionary: parse %s: %w", source, err)
	}
	return spec, nil
}

func isDictionaryFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
