package cli

import (
	"os"
	"path/filepath"

	"github.com/subframe7536/yaak/pkg"
)

// baseConfig is the base name of the YAML configuration file and the key
// holding flag values inside it.
const baseConfig = "config"

// configExt is the extension of the YAML configuration file.
const configExt = ".yaml"

var defaultDirMode os.FileMode = 0o700

// configPath returns the path formed by joining the configuration
// directory with elem.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

func cacheDir() string { return pkg.CacheDir() }

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{pkg.ConfigDir(), pkg.CacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
