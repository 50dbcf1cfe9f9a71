package commands

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/tempo"
	"github.com/urfave/cli/v3"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string

	// Config is loaded in the Before hook and available to all commands
	Config *config.Config

	// App is wired in the Before hook
	App *tempo.App
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "tempo", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "tempo")
}

// signedIn maps the missing identity error to a hint for the user.
func signedIn(err error) error {
	if errors.Is(err, tempo.ErrNoIdentity) {
		return cli.Exit("not signed in; run 'tempo login <email>' first", 1)
	}
	return err
}
