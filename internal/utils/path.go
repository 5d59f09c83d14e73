package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver locates the logclust config file across platforms, with
// fallbacks for read-only or unusual environments.
type PathResolver struct {
	executableDir string
	homeDir       string
	configDir     string
}

// NewPathResolver determines the executable location and the platform's
// config directory.
func NewPathResolver() (*PathResolver, error) {
	execDir, err := GetExecutableDir()
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = "/tmp"
	}

	configDir := getConfigDir(homeDir)

	pr := &PathResolver{
		executableDir: execDir,
		homeDir:       homeDir,
		configDir:     configDir,
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", execDir, configDir)
	return pr, nil
}

// getConfigDir returns the appropriate config directory for the platform.
func getConfigDir(homeDir string) string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir, ".config", "logclust")
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, "logclust")
		}
		return filepath.Join(homeDir, ".config", "logclust")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "logclust")
		}
		return filepath.Join(homeDir, "AppData", "Roaming", "logclust")
	default:
		return filepath.Join(homeDir, ".logclust")
	}
}

// GetConfigPath returns the full path for a config file, preferring the
// platform config directory and falling back to $HOME, then the temp dir,
// then the executable's own directory, if earlier locations are unwritable.
func (pr *PathResolver) GetConfigPath(filename string) (string, error) {
	configPath := filepath.Join(pr.configDir, filename)
	if pr.ensureConfigDir(pr.configDir) {
		return configPath, nil
	}

	fallbackDirs := []string{
		filepath.Join(pr.homeDir, ".logclust"),
		filepath.Join(os.TempDir(), "logclust"),
		pr.executableDir,
	}
	for _, dir := range fallbackDirs {
		if pr.ensureConfigDir(dir) {
			path := filepath.Join(dir, filename)
			log.Warnf("Using fallback config location: %s", path)
			return path, nil
		}
	}

	tempPath := filepath.Join(os.TempDir(), filename)
	log.Warnf("Using temporary config file: %s", tempPath)
	return tempPath, nil
}

// ensureConfigDir creates the directory if it doesn't exist and tests
// writability, via fs.go's CheckDirStatus.
func (pr *PathResolver) ensureConfigDir(dir string) bool {
	result := CheckDirStatus(dir)
	if result.Error != nil {
		log.Debugf("Cannot create config directory %s: %v", dir, result.Error)
	}
	return result.Exists && result.Writable
}

// GetConfigDir returns the resolved config directory.
func (pr *PathResolver) GetConfigDir() string {
	return pr.configDir
}
