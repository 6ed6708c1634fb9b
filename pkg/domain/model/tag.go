package model

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// TagRefPrefix is stripped from a git reference to obtain the tag name
	TagRefPrefix = "refs/tags/"

	// RehearsalTag stands in for a tag when a run is dispatched manually without one
	RehearsalTag Tag = "v0.0.0"
)

var tagPattern = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)

// Tag is a release tag in the form v<major>.<minor>.<patch>
type Tag string

// ParseTag validates a bare tag name
func ParseTag(name string) (Tag, error) {
	if !tagPattern.MatchString(name) {
		return "", goerr.New("tag does not match v<major>.<minor>.<patch>",
			goerr.V("tag", name),
			goerr.T(types.ErrTagInvalidTag),
		)
	}
	return Tag(name), nil
}

// TagFromRef derives the tag from a full git reference such as refs/tags/v1.2.3
func TagFromRef(ref string) (Tag, error) {
	name, ok := strings.CutPrefix(ref, TagRefPrefix)
	if !ok {
		return "", goerr.New("reference is not a tag",
			goerr.V("ref", ref),
			goerr.T(types.ErrTagInvalidTag),
		)
	}
	return ParseTag(name)
}

// Ref returns the full git reference of the tag
func (t Tag) Ref() string {
	return TagRefPrefix + string(t)
}

func (t Tag) String() string {
	return string(t)
}

// Version returns the package version published for the tag, e.g. v1.2.3 -> 1.2.3
func (t Tag) Version() string {
	v, err := semver.NewVersion(string(t))
	if err != nil {
		return strings.TrimPrefix(string(t), "v")
	}
	return v.String()
}

// NotesPath returns the path of the release notes file relative to the repository root
func (t Tag) NotesPath(dir, ext string) string {
	return filepath.Join(dir, string(t)+"."+strings.TrimPrefix(ext, "."))
}
