package abilaunch

import (
	"fmt"
	"text/tabwriter"

	"github.com/armadaproject/abilaunch/internal/configuration"
	"github.com/armadaproject/abilaunch/internal/pseudos"
)

func (a *App) configPath() (string, error) {
	if a.Params.ConfigPath != "" {
		return a.Params.ConfigPath, nil
	}
	return configuration.DefaultPath()
}

func (a *App) config() (configuration.LauncherConfig, error) {
	path, err := a.configPath()
	if err != nil {
		return configuration.LauncherConfig{}, err
	}
	return configuration.Load(path)
}

// ConfigInit writes a default configuration file unless one already exists.
func (a *App) ConfigInit() error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	written, err := configuration.WriteDefault(path)
	if err != nil {
		return err
	}
	if written {
		fmt.Fprintf(a.Out, "Wrote default configuration to %s\n", path)
	} else {
		fmt.Fprintf(a.Out, "Configuration %s already exists, leaving it unchanged\n", path)
	}
	return nil
}

// ConfigShow prints the effective configuration.
func (a *App) ConfigShow() error {
	path, err := a.configPath()
	if err != nil {
		return err
	}
	config, err := configuration.Load(path)
	if err != nil {
		return err
	}
	pseudosDir := pseudos.NewResolver(config.DefaultPseudosDir).DefaultDir()
	if pseudosDir == "" {
		pseudosDir = pseudos.NoDefaultDir
	}
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	fmt.Fprintf(w, "Config file:\t%s\n", path)
	fmt.Fprintf(w, "Executable:\t%s\n", config.ExecutablePath)
	fmt.Fprintf(w, "Default pseudos dir:\t%s\n", pseudosDir)
	fmt.Fprintf(w, "Submit via queue:\t%t\n", config.SubmitViaQueue)
	return w.Flush()
}
