package application

import (
	"os"
	"path/filepath"

	"examphoto/internal/presets"
	"examphoto/internal/services"
)

// OutputPathIn places the default output name for source inside dir. An empty
// dir keeps the output next to the source.
func OutputPathIn(dir, source string, preset presets.Preset) string {
	path := services.DefaultOutputPath(source, preset)
	if dir == "" {
		return path
	}
	return filepath.Join(dir, filepath.Base(path))
}

// ExpandSources replaces each directory in paths with the image files directly
// inside it, sorted by name. Plain file paths are kept as given.
func ExpandSources(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !IsImageFile(e.Name()) {
				continue
			}
			files = append(files, filepath.Join(p, e.Name()))
		}
	}
	return files, nil
}
