package transcription

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

// ExecutableFinder locates a whisper executable
type ExecutableFinder interface {
	FindExecutable() (string, error)
}

// executableNames are tried in order in every search location
var executableNames = []string{"whisper-cli", "whisper-cpp", "whisper.cpp", "whisper", "main"}

// DefaultExecutableFinder looks at an explicit path first, then PATH, then
// common install locations
type DefaultExecutableFinder struct {
	ExecutablePath string
}

// FindExecutable returns the path of a usable whisper executable
func (f *DefaultExecutableFinder) FindExecutable() (string, error) {
	if f.ExecutablePath != "" {
		if stat, err := os.Stat(f.ExecutablePath); err == nil && !stat.IsDir() {
			if err := checkExecutablePermissions(f.ExecutablePath); err == nil {
				return f.ExecutablePath, nil
			}
		}
		return "", fmt.Errorf("%w: provided executable path does not exist or is not executable: %s",
			ErrInvalidExecutablePath, f.ExecutablePath)
	}

	if executable, err := f.findInPath(); err == nil {
		logger.Debug(logger.CategorySystem, "Found whisper executable in PATH: %s", executable)
		return executable, nil
	}

	if executable, err := findExecutableInPaths(commonInstallLocations()); err == nil {
		logger.Debug(logger.CategorySystem, "Found whisper executable in common location: %s", executable)
		return executable, nil
	}

	if executable, err := findExecutableInPaths(userInstallLocations()); err == nil {
		logger.Debug(logger.CategorySystem, "Found whisper executable in user directory: %s", executable)
		return executable, nil
	}

	return "", ErrExecutableNotFound
}

// findInPath checks the system PATH. "main" is too generic to look up there.
func (f *DefaultExecutableFinder) findInPath() (string, error) {
	for _, name := range executableNames {
		if name == "main" {
			continue
		}
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("whisper executable not found in PATH")
}

// commonInstallLocations lists system-wide and package manager directories
func commonInstallLocations() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files\Whisper`,
			`C:\Program Files (x86)\Whisper`,
			`C:\Whisper`,
		}
	case "darwin":
		return []string{
			"/opt/homebrew/bin",
			"/usr/local/bin",
			"/opt/local/bin", // MacPorts
			"/opt/whisper.cpp",
		}
	default:
		return []string{
			"/usr/bin",
			"/usr/local/bin",
			"/opt/whisper",
			"/opt/whisper.cpp",
			"/snap/bin",
			"/var/lib/flatpak/exports/bin",
			"/home/linuxbrew/.linuxbrew/bin",
		}
	}
}

// userInstallLocations lists per-user directories, including whisper.cpp
// source checkouts with a build/bin directory
func userInstallLocations() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	if runtime.GOOS == "windows" {
		return []string{
			filepath.Join(home, "AppData", "Local", "Whisper"),
			filepath.Join(home, "AppData", "Local", "Programs", "Whisper"),
			filepath.Join(home, "Whisper"),
		}
	}

	return []string{
		filepath.Join(home, ".local", "bin"),
		filepath.Join(home, "bin"),
		filepath.Join(home, ".transkript", "bin"),
		filepath.Join(home, "whisper.cpp", "build", "bin"),
		filepath.Join(home, "git", "whisper.cpp", "build", "bin"),
		filepath.Join(home, "github", "whisper.cpp", "build", "bin"),
		filepath.Join(home, "whisper.cpp"),
	}
}

// findExecutableInPaths checks multiple directories for whisper executables
func findExecutableInPaths(paths []string) (string, error) {
	names := executableNames
	if runtime.GOOS == "windows" {
		names = make([]string, 0, len(executableNames))
		for _, name := range executableNames {
			names = append(names, name+".exe")
		}
	}

	for _, dir := range paths {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		for _, name := range names {
			execPath := filepath.Join(dir, name)
			// A bare "main" only counts inside a whisper.cpp checkout
			if strings.TrimSuffix(name, ".exe") == "main" && !strings.Contains(dir, "whisper.cpp") {
				continue
			}
			if stat, err := os.Stat(execPath); err == nil && !stat.IsDir() {
				if err := checkExecutablePermissions(execPath); err == nil {
					return execPath, nil
				}
			}
		}
	}

	return "", fmt.Errorf("whisper executable not found in common paths")
}

// checkExecutablePermissions verifies the file can be executed
func checkExecutablePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	// Windows has a different permission model
	if runtime.GOOS == "windows" {
		return nil
	}

	if info.Mode()&0111 == 0 {
		return fmt.Errorf("file exists but is not executable")
	}
	return nil
}
