package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed *.json
var LevelsFS embed.FS

// SampleName is the embedded demo document.
const SampleName = "sample.json"

// LoadFromFS decodes an embedded document by name.
func LoadFromFS(name string) (State, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return State{}, fmt.Errorf("read level: %w", err)
	}
	return Decode(data)
}

func ReadFile(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("read level %q: %w", path, err)
	}
	return Decode(data)
}

// WriteFile saves doc to path, creating parent directories as needed.
func WriteFile(path string, doc Document) error {
	data, err := Marshal(doc)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create level dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write level %q: %w", path, err)
	}
	return nil
}
