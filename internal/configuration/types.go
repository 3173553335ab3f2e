package configuration

// FileConfig mirrors the [DEFAULT] section of the configuration file.
type FileConfig struct {
	// Path to the abinit executable. May be a bare name looked up in $PATH.
	AbinitPath string `mapstructure:"abinit_path"`
	// Directory searched for pseudopotentials not found at the given path, or "none".
	DefaultPseudosDir string `mapstructure:"default_pseudos_dir"`
	// Whether calculations are submitted with qsub instead of run directly.
	Qsub bool `mapstructure:"qsub"`
}

// LauncherConfig is the process-wide configuration handed to the launchers. It is loaded once at startup
// and never modified afterwards.
type LauncherConfig struct {
	ExecutablePath string
	// Absolute path, or "" if the fallback lookup is disabled.
	DefaultPseudosDir string
	SubmitViaQueue    bool
}
