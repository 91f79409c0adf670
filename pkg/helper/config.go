package helper

import (
	"os"
	"path/filepath"
)

// SystemConfigDir is the last place a relative config file is looked up in
const SystemConfigDir = "/etc/distributor"

// GetCfgPath returns the path to the configuration file.
//
// Absolute paths are returned untouched. Relative names are looked up in the
// working directory, then in ./configs, then under SystemConfigDir.
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}

	if filepath.IsAbs(filename) {
		return filename
	}

	if found := lookupWorkdir(filename, ".", "configs"); found != "" {
		return found
	}

	return filepath.Join(SystemConfigDir, filename)
}

// lookupWorkdir returns the absolute path of the first existing dir/filename under the working directory
func lookupWorkdir(filename string, dirs ...string) string {
	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return ""
	}

	for _, dir := range dirs {
		candidate := filepath.Join(wd, dir, filename)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		if abs, err := filepath.Abs(candidate); err == nil {
			return abs
		}
	}
	return ""
}
