package core

// RepoConfigPath is the per-repository settings file read from the default branch.
const RepoConfigPath = ".repo-pilot.yml"

// Default triage labels.
const (
	LabelNeedsInfo      = "needs-more-info"
	LabelTriageComplete = "triage-complete"
)

// RepoConfig represents the structure of the .repo-pilot.yml file.
type RepoConfig struct {
	// Extra instructions appended to every analysis prompt.
	CustomInstructions []string `yaml:"custom_instructions"`

	// Directories left out of the structure listing sent to the model.
	// Example: ["dist", "vendor", "node_modules"]
	ExcludeDirs []string `yaml:"exclude_dirs"`

	Triage TriageConfig `yaml:"triage"`
}

type TriageConfig struct {
	NeedsInfoLabel string `yaml:"needs_info_label"`
	CompleteLabel  string `yaml:"complete_label"`
}

// DefaultRepoConfig returns a config with default values.
func DefaultRepoConfig() *RepoConfig {
	return &RepoConfig{
		CustomInstructions: []string{},
		ExcludeDirs:        []string{},
		Triage: TriageConfig{
			NeedsInfoLabel: LabelNeedsInfo,
			CompleteLabel:  LabelTriageComplete,
		},
	}
}

// Normalize fills labels left empty by a partial file.
func (c *RepoConfig) Normalize() {
	if c.Triage.NeedsInfoLabel == "" {
		c.Triage.NeedsInfoLabel = LabelNeedsInfo
	}
	if c.Triage.CompleteLabel == "" {
		c.Triage.CompleteLabel = LabelTriageComplete
	}
}
