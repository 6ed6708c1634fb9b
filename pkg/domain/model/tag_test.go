package model_test

import (
	"path/filepath"
	"testing"

	"github.com/m-mizutani/drover/pkg/domain/model"
	"github.com/m-mizutani/drover/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestTagFromRef(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    model.Tag
		wantErr bool
	}{
		{name: "simple tag", ref: "refs/tags/v1.2.3", want: "v1.2.3"},
		{name: "multi digit parts", ref: "refs/tags/v10.20.300", want: "v10.20.300"},
		{name: "zero version", ref: "refs/tags/v0.0.0", want: "v0.0.0"},
		{name: "branch ref", ref: "refs/heads/v1.2.3", wantErr: true},
		{name: "bare tag without prefix", ref: "v1.2.3", wantErr: true},
		{name: "missing v", ref: "refs/tags/1.2.3", wantErr: true},
		{name: "two parts", ref: "refs/tags/v1.2", wantErr: true},
		{name: "pre-release suffix", ref: "refs/tags/v1.2.3-beta", wantErr: true},
		{name: "empty", ref: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := model.TagFromRef(tt.ref)
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, types.ErrTagInvalidTag))
				return
			}
			gt.NoError(t, err)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestTagFromRef_StripsPrefixOnly(t *testing.T) {
	for _, name := range []string{"v0.0.1", "v1.0.0", "v2.13.7", "v99.99.99"} {
		tag, err := model.TagFromRef(model.TagRefPrefix + name)
		gt.NoError(t, err)
		gt.Value(t, tag.String()).Equal(name)
		gt.Value(t, tag.Ref()).Equal(model.TagRefPrefix + name)
	}
}

func TestTag_Version(t *testing.T) {
	gt.Value(t, model.Tag("v1.2.3").Version()).Equal("1.2.3")
	gt.Value(t, model.Tag("v0.10.0").Version()).Equal("0.10.0")
	gt.Value(t, model.RehearsalTag.Version()).Equal("0.0.0")
}

func TestTag_NotesPath(t *testing.T) {
	tag := model.Tag("v1.2.3")
	gt.Value(t, tag.NotesPath("docs/release_notes", "rst")).Equal(filepath.Join("docs", "release_notes", "v1.2.3.rst"))
	gt.Value(t, tag.NotesPath("notes", ".md")).Equal(filepath.Join("notes", "v1.2.3.md"))
}

func TestParseRepository(t *testing.T) {
	repo, err := model.ParseRepository("owner/repo")
	gt.NoError(t, err)
	gt.Value(t, repo.FullName()).Equal("owner/repo")

	for _, invalid := range []string{"", "owner", "/repo", "owner/", "a/b/c"} {
		_, err := model.ParseRepository(invalid)
		gt.Error(t, err)
	}
}
