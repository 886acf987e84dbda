package misc

import (
	"strings"
	"testing"
)

func TestGetAppName(t *testing.T) {
	if GetAppName() != "atmerge" {
		t.Errorf("unexpected name %q", GetAppName())
	}
}

func TestGetVersion_Override(t *testing.T) {
	old := version
	defer func() { version = old }()

	version = "1.2.3"
	if got := GetVersion(); got != "1.2.3" {
		t.Errorf("GetVersion() = %q, want 1.2.3", got)
	}
	version = ""
	if got := GetVersion(); len(got) == 0 || strings.HasPrefix(got, "v") {
		t.Errorf("unexpected fallback version %q", got)
	}
}

func TestGetGitHash(t *testing.T) {
	old := gitHash
	defer func() { gitHash = old }()

	gitHash = "abcdef0"
	if GetGitHash() != "abcdef0" {
		t.Errorf("unexpected hash %q", GetGitHash())
	}
	gitHash = ""
	if len(GetGitHash()) == 0 {
		t.Error("expected non empty hash")
	}
}

func TestGetDefaultName(t *testing.T) {
	if got := GetDefaultName("-report.zip"); got != "atmerge-report.zip" {
		t.Errorf("unexpected name %q", got)
	}
}
