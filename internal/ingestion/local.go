package ingestion

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// LoadLocalFiles lists every supported file under root in lexical walk
// order. Hidden files and directories are skipped.
func LoadLocalFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := path != root && strings.HasPrefix(d.Name(), ".")
		switch {
		case d.IsDir() && hidden:
			return filepath.SkipDir
		case d.IsDir(), hidden, !Supported(path):
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}
