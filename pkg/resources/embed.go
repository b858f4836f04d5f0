// Package resources holds assets embedded into the binary
package resources

import (
	"embed"

	"fyne.io/fyne/v2"

	"github.com/jeff-barlow-spady/transkript/pkg/logger"
)

//go:embed icons
var embeddedFiles embed.FS

const iconPath = "icons/transkript.svg"

// IconData returns the raw application icon
func IconData() ([]byte, error) {
	return embeddedFiles.ReadFile(iconPath)
}

// LoadAppIcon loads the application icon as a Fyne resource
func LoadAppIcon() fyne.Resource {
	data, err := IconData()
	if err != nil {
		logger.Warning(logger.CategoryUI, "Could not load app icon: %v", err)
		return nil
	}
	return fyne.NewStaticResource("transkript.svg", data)
}
