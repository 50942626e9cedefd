package storage

import (
	"strings"
	"testing"
)

func TestSafeBaseName(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
		want  string
	}{
		{"plain", []string{"maya99", "Blue Horizon"}, "maya99_-_Blue_Horizon"},
		{"strips specials", []string{"a/b\\c:d*e"}, "abcde"},
		{"collapses spaces", []string{"a   b"}, "a_b"},
		{"skips blank parts", []string{"  ", "track"}, "track"},
		{"all blank", []string{" ", ""}, "untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeBaseName(tt.parts...); got != tt.want {
				t.Fatalf("SafeBaseName(%v) = %q, want %q", tt.parts, got, tt.want)
			}
		})
	}
}

func TestSafeBaseNameCapsLength(t *testing.T) {
	long := strings.Repeat("x", 300)
	if got := SafeBaseName(long); len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey(AudioPrefix, "maya99_-_Blue_Horizon", "track.mp3")
	if !strings.HasPrefix(key, "audio/maya99_-_Blue_Horizon-") {
		t.Fatalf("key = %q", key)
	}
	if !strings.HasSuffix(key, ".mp3") {
		t.Fatalf("extension not preserved: %q", key)
	}
}

func TestObjectKeyDefaultsExtension(t *testing.T) {
	key := ObjectKey(CoverPrefix, "cover", "noextension")
	if !strings.HasSuffix(key, ".dat") {
		t.Fatalf("key = %q, want .dat suffix", key)
	}
}

func TestObjectKeyUnique(t *testing.T) {
	a := ObjectKey(AudioPrefix, "same", "track.mp3")
	b := ObjectKey(AudioPrefix, "same", "track.mp3")
	if a == b {
		t.Fatalf("identical inputs produced identical keys: %q", a)
	}
}
