package pypi

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

type distribution struct {
	name      string
	fileType  string
	pyVersion string
}

var sdistSuffixes = []string{".tar.gz", ".zip", ".tar.bz2"}

// parseDistribution reads the project name and upload metadata from a
// distribution file name: name-1.2.3.tar.gz or name-1.2.3-py3-none-any.whl
func parseDistribution(filename, version string) (*distribution, error) {
	if stem, ok := strings.CutSuffix(filename, ".whl"); ok {
		parts := strings.Split(stem, "-")
		if len(parts) < 5 || parts[1] != version {
			return nil, goerr.New("unrecognized wheel file name",
				goerr.V("file", filename),
				goerr.V("version", version),
			)
		}
		return &distribution{
			name:      parts[0],
			fileType:  "bdist_wheel",
			pyVersion: parts[len(parts)-3],
		}, nil
	}

	for _, suffix := range sdistSuffixes {
		stem, ok := strings.CutSuffix(filename, suffix)
		if !ok {
			continue
		}
		name, ok := strings.CutSuffix(stem, "-"+version)
		if !ok || name == "" {
			break
		}
		return &distribution{
			name:      name,
			fileType:  "sdist",
			pyVersion: "source",
		}, nil
	}

	return nil, goerr.New("file is not a source or wheel distribution of the version",
		goerr.V("file", filename),
		goerr.V("version", version),
	)
}
