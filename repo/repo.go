package repo

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cpacia/dashlink/database"
	"github.com/cpacia/dashlink/database/sqlitedb"
	"github.com/cpacia/dashlink/models"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

const (
	// defaultRepoVersion is the current repo version used for migrations.
	defaultRepoVersion = 0

	// versionFileName is the name of the version file.
	versionFileName = "version"
)

var log = logging.MustGetLogger("REPO")

// Repo is a representation of a dashlink data directory. In it we store
// the config file, the logs and the sqlite database holding the settings
// and the activity log.
type Repo struct {
	db       database.Database
	dataDir  string
	settings *SettingsStore
}

// NewRepo returns a new Repo for the given data directory. It will
// be initialized if it is not already.
func NewRepo(dataDir string) (*Repo, error) {
	return newRepo(dataDir, false)
}

// DB returns the database implementation.
func (r *Repo) DB() database.Database {
	return r.db
}

// Settings returns the persisted key/value settings store.
func (r *Repo) Settings() *SettingsStore {
	return r.settings
}

// DataDir returns the data directory associated with this repo.
func (r *Repo) DataDir() string {
	return r.dataDir
}

// Close will close the repo and associated databases.
func (r *Repo) Close() error {
	return r.db.Close()
}

// DestroyRepo deletes the entire directory. Do NOT use this unless you are
// positive you want to wipe all data.
func (r *Repo) DestroyRepo() error {
	if err := r.db.Close(); err != nil {
		return err
	}
	return os.RemoveAll(r.dataDir)
}

// writeVersion writes the version number to file.
func (r *Repo) writeVersion(version int) error {
	return ioutil.WriteFile(filepath.Join(r.dataDir, versionFileName), []byte(strconv.Itoa(version)), 0600)
}

// IsInitialized reports whether the data directory already holds a repo.
func IsInitialized(dataDir string) bool {
	_, err := os.Stat(filepath.Join(dataDir, versionFileName))
	return err == nil
}

func newRepo(dataDir string, inMemoryDB bool) (*Repo, error) {
	if err := checkWriteable(dataDir); err != nil {
		return nil, err
	}

	var (
		db  database.Database
		err error
	)
	if inMemoryDB {
		db, err = sqlitedb.NewMemoryDB()
	} else {
		db, err = sqlitedb.NewSqliteDB(dataDir)
	}
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	if err := autoMigrateDatabase(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate database")
	}

	r := &Repo{
		db:       db,
		dataDir:  dataDir,
		settings: NewSettingsStore(db),
	}
	if !IsInitialized(dataDir) {
		log.Infof("Initializing new repo at %s", dataDir)
		if err := r.writeVersion(defaultRepoVersion); err != nil {
			db.Close()
			return nil, err
		}
	}
	return r, nil
}

func checkWriteable(dir string) error {
	_, err := os.Stat(dir)
	if err == nil {
		// Directory exists, make sure we can write to it
		testfile := filepath.Join(dir, "test")
		fi, err := os.Create(testfile)
		if err != nil {
			if os.IsPermission(err) {
				return fmt.Errorf("%s is not writeable by the current user", dir)
			}
			return fmt.Errorf("unexpected error while checking writeablility of repo root: %s", err)
		}
		fi.Close()
		return os.Remove(testfile)
	}

	if os.IsNotExist(err) {
		// Directory does not exist, check that we can create it
		return os.MkdirAll(dir, 0775)
	}

	if os.IsPermission(err) {
		return fmt.Errorf("cannot write to %s, incorrect permissions", err)
	}

	return err
}

func autoMigrateDatabase(db database.Database) error {
	dbModels := []interface{}{
		&models.Setting{},
		&models.NotificationLog{},
	}

	return db.Update(func(tx database.Tx) error {
		for _, m := range dbModels {
			if err := tx.Migrate(m); err != nil {
				return err
			}
		}
		return nil
	})
}
