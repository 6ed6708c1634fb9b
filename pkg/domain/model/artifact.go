package model

import "strings"

// Artifact is a distributable file produced by the build step
type Artifact struct {
	Path   string `json:"path" firestore:"path"`
	Name   string `json:"name" firestore:"name"`
	Size   int64  `json:"size" firestore:"size"`
	SHA256 string `json:"sha256" firestore:"sha256"`
	MD5    string `json:"md5" firestore:"md5"`
}

// PublishRequest carries one artifact to a publisher
type PublishRequest struct {
	Repo     Repository
	Tag      Tag
	Artifact *Artifact
	Release  *Release
}

// Version is the package version the artifact is published under
func (r *PublishRequest) Version() string {
	return r.Tag.Version()
}

// PublishResult reports the outcome of one upload
type PublishResult struct {
	Location      string
	AlreadyExists bool
}

// versionSuffixes may follow the version in an artifact file name
var versionSuffixes = []string{"-", "_", ".tar", ".zip", ".whl", ".tgz", ".gem", ".jar", ".deb", ".rpm"}

// MatchesVersion reports whether the file name carries version as a whole
// token: it starts the name or follows "-" or "_", and ends the name or is
// followed by a separator or a package extension. "widget-1.2.30.tar.gz"
// does not match 1.2.3.
func MatchesVersion(name, version string) bool {
	if version == "" {
		return false
	}
	for i := 0; ; {
		idx := strings.Index(name[i:], version)
		if idx < 0 {
			return false
		}
		start := i + idx
		end := start + len(version)
		if versionBoundaryBefore(name, start) && versionBoundaryAfter(name[end:]) {
			return true
		}
		i = start + 1
	}
}

func versionBoundaryBefore(name string, start int) bool {
	return start == 0 || name[start-1] == '-' || name[start-1] == '_'
}

func versionBoundaryAfter(rest string) bool {
	if rest == "" {
		return true
	}
	for _, suffix := range versionSuffixes {
		if strings.HasPrefix(rest, suffix) {
			return true
		}
	}
	return false
}
