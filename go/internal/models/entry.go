package models

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Entry is one named participant on a wheel roster.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Hidden    bool      `json:"hidden"`
	CreatedAt time.Time `json:"created_at"`
}

// HasImage reports whether the entry renders with a picture instead of its initial.
func (e Entry) HasImage() bool {
	return strings.TrimSpace(e.ImageRef) != ""
}

// Initial returns the upper-cased first letter of the name.
func (e Entry) Initial() string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(e.Name))
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// SeedEntry describes an entry loaded from configuration.
type SeedEntry struct {
	Name     string `json:"name" yaml:"name"`
	ImageRef string `json:"image_ref,omitempty" yaml:"image_ref"`
}
