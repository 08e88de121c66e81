package htmlsanitize_test

import (
	"testing"

	"github.com/mmu-rhsf/fellowhub/internal/app/system/htmlsanitize"
)

func TestPlain_StripsTags(t *testing.T) {
	if got := htmlsanitize.Plain("<b>Jane</b> Doe"); got != "Jane Doe" {
		t.Errorf("Plain = %q, want %q", got, "Jane Doe")
	}
}

func TestPlain_DropsScriptContent(t *testing.T) {
	got := htmlsanitize.Plain("<script>alert('xss')</script>Praise team")
	if got != "Praise team" {
		t.Errorf("Plain = %q, want %q", got, "Praise team")
	}
}

func TestPlain_KeepsAmpersand(t *testing.T) {
	if got := htmlsanitize.Plain("Ushering & Protocol"); got != "Ushering & Protocol" {
		t.Errorf("Plain = %q, want %q", got, "Ushering & Protocol")
	}
}

func TestPlain_Empty(t *testing.T) {
	if got := htmlsanitize.Plain(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
