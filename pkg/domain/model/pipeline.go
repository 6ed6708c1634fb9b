package model

// PipelineConfig holds the settings of the release pipeline steps
type PipelineConfig struct {
	// Repo overrides the repository taken from the trigger when set
	Repo Repository

	NotesDir   string
	NotesExt   string
	Draft      bool
	Prerelease bool

	SetupCommands []string
	Tools         []string

	BuildCommand string
	BuildEnv     []string
	ArtifactDir  string
	ArtifactGlob string
}

// DefaultPipelineConfig returns the conventional layout: notes under
// docs/release_notes/<tag>.rst and artifacts under dist/
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		NotesDir:     "docs/release_notes",
		NotesExt:     "rst",
		ArtifactDir:  "dist",
		ArtifactGlob: "*",
	}
}
