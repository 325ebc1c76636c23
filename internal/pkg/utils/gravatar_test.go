package utils

import (
	"strings"
	"testing"
)

func TestGetGravatarURLNormalizesEmail(t *testing.T) {
	a := GetGravatarURL("  Golfer@Example.COM ", 0)
	b := GetGravatarURL("golfer@example.com", 200)
	if a != b {
		t.Fatalf("expected normalized emails to produce the same URL:\n%s\n%s", a, b)
	}
	if !strings.Contains(a, "s=200") {
		t.Fatalf("expected default size 200 in %s", a)
	}
}

func TestAvatarOrGravatar(t *testing.T) {
	if got := AvatarOrGravatar("https://cdn.example.com/me.png", "x@example.com"); got != "https://cdn.example.com/me.png" {
		t.Fatalf("stored avatar should win, got %s", got)
	}
	if got := AvatarOrGravatar("  ", "x@example.com"); !strings.HasPrefix(got, "https://www.gravatar.com/avatar/") {
		t.Fatalf("expected gravatar fallback, got %s", got)
	}
}
