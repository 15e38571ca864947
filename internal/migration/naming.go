package migration

import (
	"strings"

	"github.com/GabKongroo/NothingSpecial/pkg/validation"
)

// Role is the part an asset plays for a beat.
type Role int

const (
	RoleMaster Role = iota
	RolePreview
	RoleImage
)

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RolePreview:
		return "preview"
	case RoleImage:
		return "image"
	}
	return "unknown"
}

// Suffix maps a filename ending to an asset role.
type Suffix struct {
	Value string
	Role  Role
}

var suffixes = []Suffix{
	{Value: "_spoiler.wav", Role: RolePreview},
	{Value: "_full.wav", Role: RoleMaster},
	{Value: "_pic.jpg", Role: RoleImage},
	{Value: "_pic.jpeg", Role: RoleImage},
}

// MatchSuffix returns the recognized suffix name ends with, ignoring case.
func MatchSuffix(name string) (Suffix, bool) {
	for _, s := range suffixes {
		if len(name) >= len(s.Value) && strings.EqualFold(name[len(name)-len(s.Value):], s.Value) {
			return s, true
		}
	}
	return Suffix{}, false
}

// ExtractTitle derives the beat title from the first file carrying a
// recognized suffix. ok is false when no file matches or the sanitized
// title is empty.
func ExtractTitle(files []Entry) (string, bool) {
	for _, f := range files {
		if f.IsFolder {
			continue
		}
		s, matched := MatchSuffix(f.Name)
		if !matched {
			continue
		}
		raw := strings.TrimSpace(f.Name[:len(f.Name)-len(s.Value)])
		title := validation.SanitizeTitle(raw)
		return title, title != ""
	}
	return "", false
}

// expectedName is the only filename accepted for a suffix once the title
// is known.
func expectedName(title string, s Suffix) string {
	return title + s.Value
}
