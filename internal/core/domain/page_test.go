package domain

import (
	"errors"
	"testing"
)

func TestPageKey(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		isValid  bool
	}{
		{"https://example.com/pricing", "example.com/pricing", true},
		{"http://Example.com:8080/pricing?plan=pro#top", "example.com/pricing", true},
		{"https://example.com", "example.com/", true},
		{"example.com/docs/intro", "example.com/docs/intro", true},
		{"localhost:3000/app", "localhost/app", true},
		{"file:///tmp/mock.html", "/tmp/mock.html", true},
		{"", "", false},
		{"   ", "", false},
		{"https:///nohost", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := PageKey(tt.raw)
			if (err == nil) != tt.isValid {
				t.Fatalf("PageKey(%q) valid = %v, want %v (err=%v)", tt.raw, err == nil, tt.isValid, err)
			}
			if !tt.isValid {
				if !errors.Is(err, ErrInvalidPage) {
					t.Errorf("PageKey(%q) error = %v, want ErrInvalidPage", tt.raw, err)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("PageKey(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestStorageKey(t *testing.T) {
	if got := StorageKey("example.com/"); got != "pixelOverlayState_example.com/" {
		t.Errorf("StorageKey = %q", got)
	}
}
