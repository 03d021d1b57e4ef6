package extviewer_test

import (
	"path/filepath"
	"testing"

	"polereview/internal/extviewer"
)

func TestOpenMissingFile(t *testing.T) {
	err := extviewer.Open(filepath.Join(t.TempDir(), "nope.jpg"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
