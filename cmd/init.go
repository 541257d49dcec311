package cmd

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/cpacia/dashlink/core"
	"github.com/cpacia/dashlink/models"
	"github.com/cpacia/dashlink/repo"
	"gopkg.in/yaml.v3"
)

// Init initializes a new data directory, optionally seeding the
// notification preferences from a YAML file.
type Init struct {
	DataDir     string `short:"d" long:"datadir" description:"Directory to store data"`
	Preferences string `short:"p" long:"preferences" description:"A YAML file of notification preferences to start with"`
	Force       bool   `short:"f" long:"force" description:"Force overwrite existing repo (dangerous!)"`
}

// Execute initializes the data directory.
func (x *Init) Execute(args []string) error {
	if x.DataDir == "" {
		x.DataDir = repo.DefaultHomeDir
	}

	if repo.IsInitialized(x.DataDir) && !x.Force {
		return errors.New("node is already initialized")
	}

	var (
		prefs = models.DefaultPreferences()
		err   error
	)
	if x.Preferences != "" {
		prefs, err = loadPreferencesFile(x.Preferences)
		if err != nil {
			return err
		}
	}

	if x.Force {
		if err := os.RemoveAll(x.DataDir); err != nil {
			return err
		}
	}

	r, err := repo.NewRepo(x.DataDir)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := r.Settings().PutSettings(core.PreferenceSettings(prefs)); err != nil {
		return err
	}
	fmt.Printf("Initialized data directory at %s\n", x.DataDir)
	return nil
}

// loadPreferencesFile reads preferences over the defaults so a file only
// needs the fields it changes.
func loadPreferencesFile(path string) (models.Preferences, error) {
	prefs := models.DefaultPreferences()
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return prefs, err
	}
	if err := yaml.Unmarshal(raw, &prefs); err != nil {
		return prefs, fmt.Errorf("parse %s: %w", path, err)
	}
	if prefs.AutoDismissAfterSeconds < 0 {
		return prefs, fmt.Errorf("parse %s: autoDismissAfterSeconds must not be negative", path)
	}
	return prefs, nil
}
