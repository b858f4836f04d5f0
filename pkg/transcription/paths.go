package transcription

import (
	"os"
	"path/filepath"
	"runtime"
)

// ModelSize selects a whisper model
type ModelSize string

const (
	ModelTiny    ModelSize = "tiny"
	ModelBase    ModelSize = "base"
	ModelSmall   ModelSize = "small"
	ModelMedium  ModelSize = "medium"
	ModelLargeV3 ModelSize = "large-v3"
)

// resolveModelFile returns the model file for size. configPath may name the
// model file itself or a directory holding it. When the model is not found
// anywhere the path inside the preferred directory is returned, so a
// download can be placed there.
func resolveModelFile(configPath string, size ModelSize) string {
	filename := modelFilename(size)

	if configPath != "" {
		if stat, err := os.Stat(configPath); err == nil && !stat.IsDir() {
			return configPath
		}
		candidate := filepath.Join(configPath, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	for _, dir := range defaultModelDirs() {
		candidate := filepath.Join(dir, filename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if configPath != "" {
		return filepath.Join(configPath, filename)
	}
	if dirs := defaultModelDirs(); len(dirs) > 0 {
		return filepath.Join(dirs[0], filename)
	}
	return filepath.Join("models", filename)
}

// defaultModelDirs returns standard locations that may hold ggml models
func defaultModelDirs() []string {
	var dirs []string

	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, ".transkript", "models"))
		switch runtime.GOOS {
		case "windows":
			dirs = append(dirs, filepath.Join(homeDir, "AppData", "Local", "Transkript", "models"))
		case "darwin":
			dirs = append(dirs, filepath.Join(homeDir, "Library", "Application Support", "Transkript", "models"))
		default:
			dirs = append(dirs, filepath.Join(homeDir, ".local", "share", "transkript", "models"))
		}
		// Models fetched with whisper.cpp's download script
		dirs = append(dirs, filepath.Join(homeDir, "whisper.cpp", "models"))
	}

	if runtime.GOOS != "windows" {
		dirs = append(dirs, "/usr/local/share/whisper.cpp/models", "/usr/share/whisper.cpp/models")
	}
	return dirs
}
