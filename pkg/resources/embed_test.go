package resources

import (
	"bytes"
	"testing"
)

func TestLoadAppIcon(t *testing.T) {
	icon := LoadAppIcon()
	if icon == nil {
		t.Fatal("Expected embedded icon")
	}
	if icon.Name() != "transkript.svg" {
		t.Errorf("Expected transkript.svg, got %s", icon.Name())
	}
	if !bytes.Contains(icon.Content(), []byte("<svg")) {
		t.Error("Expected SVG content")
	}
}
