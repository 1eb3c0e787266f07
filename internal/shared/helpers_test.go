package shared

import (
	"os"
	"strings"
	"testing"
)

func AssertLogContains(t *testing.T, path, want string) {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file %s: %v", path, err)
	}
	if !strings.Contains(string(content), want) {
		t.Errorf("log file %s missing %q", path, want)
	}
}
