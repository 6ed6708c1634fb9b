package model

// Workspace is the checked out repository contents a run builds from
type Workspace struct {
	Root      string   // Directory to remove when the run ends (temporary checkouts only)
	Dir       string   // Repository root
	Files     []string // Extracted files, empty for local checkouts
	Size      int64    // Total extracted size in bytes
	Temporary bool
}
