// Package registry discovers GGUF model files on disk and builds the model
// list served to clients and consumed by the manager.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaser0004/AndroGPT/pkg/types"
)

// LoadDir scans a directory for *.gguf files and builds a registry from
// filenames. ID is the filename without extension; Path is absolute. Quant
// and Family are best-effort guesses from the filename.
func LoadDir(dir string) ([]types.Model, error) {
	base, err := expandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		id := strings.TrimSuffix(name, filepath.Ext(name))
		models = append(models, types.Model{
			ID:     id,
			Name:   id,
			Path:   filepath.Join(abs, name),
			Quant:  guessQuant(id),
			Family: guessFamily(id),
		})
	}
	return models, nil
}

// guessQuant extracts a llama.cpp-style quantization suffix (Q4_K_M, Q8_0...)
// from a model filename, if present.
func guessQuant(id string) string {
	up := strings.ToUpper(id)
	for _, p := range strings.FieldsFunc(up, func(r rune) bool { return r == '.' || r == '-' }) {
		if len(p) >= 2 && p[0] == 'Q' && p[1] >= '0' && p[1] <= '9' {
			return p
		}
	}
	return ""
}

func guessFamily(id string) string {
	low := strings.ToLower(id)
	for _, fam := range []string{"phi", "llama", "mistral", "qwen", "gemma"} {
		if strings.Contains(low, fam) {
			return fam
		}
	}
	return ""
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
