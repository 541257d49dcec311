// Package sqlitedb implements the database interface on top of a single
// sqlite file using gorm.
package sqlitedb

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/cpacia/dashlink/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const dbName = "dashlink.db"

// ErrReadOnly is returned when a write is attempted in a View.
var ErrReadOnly = errors.New("tx is read only")

// DB is an implementation of the Database interface using a sqlite database.
type DB struct {
	db  *gorm.DB
	mtx sync.Mutex
}

// NewSqliteDB opens or creates the database in the data directory.
func NewSqliteDB(dataDir string) (database.Database, error) {
	return open(filepath.Join(dataDir, dbName))
}

// NewMemoryDB returns a database held entirely in memory.
func NewMemoryDB() (database.Database, error) {
	return open(":memory:")
}

func open(dsn string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	// An in-memory database lives only as long as its connection so pin
	// the pool to a single connection.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return &DB{db: db}, nil
}

// View invokes the passed function in the context of a managed
// read-only transaction.
func (sdb *DB) View(fn func(tx database.Tx) error) error {
	sdb.mtx.Lock()
	defer sdb.mtx.Unlock()

	t := readTx(sdb.db)
	if err := fn(t); err != nil {
		t.Rollback()
		return err
	}
	return t.Commit()
}

// Update invokes the passed function in the context of a managed
// read-write transaction.
func (sdb *DB) Update(fn func(tx database.Tx) error) error {
	sdb.mtx.Lock()
	defer sdb.mtx.Unlock()

	t := writeTx(sdb.db)
	if err := fn(t); err != nil {
		t.Rollback()
		return err
	}
	return t.Commit()
}

// Close cleanly shuts down the database.
func (sdb *DB) Close() error {
	sdb.mtx.Lock()
	defer sdb.mtx.Unlock()

	sqlDB, err := sdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type tx struct {
	dbtx        *gorm.DB
	commitHooks []func()
	closed      bool
	isForWrites bool
}

func writeTx(db *gorm.DB) *tx {
	return &tx{dbtx: db.Begin(), isForWrites: true}
}

func readTx(db *gorm.DB) *tx {
	return &tx{dbtx: db}
}

func (t *tx) Commit() error {
	if t.closed {
		panic("tx already closed")
	}
	defer func() { t.closed = true }()

	if !t.isForWrites {
		return nil
	}
	if err := t.dbtx.Commit().Error; err != nil {
		t.dbtx.Rollback()
		return err
	}
	for _, fn := range t.commitHooks {
		fn()
	}
	return nil
}

func (t *tx) Rollback() error {
	if t.closed {
		panic("tx already closed")
	}
	defer func() { t.closed = true }()

	if !t.isForWrites {
		return nil
	}
	return t.dbtx.Rollback().Error
}

func (t *tx) Read() *gorm.DB {
	return t.dbtx
}

func (t *tx) Save(model interface{}) error {
	if !t.isForWrites {
		return ErrReadOnly
	}
	return t.dbtx.Save(model).Error
}

func (t *tx) Update(key string, value interface{}, where map[string]interface{}, model interface{}) error {
	if !t.isForWrites {
		return ErrReadOnly
	}
	db := t.dbtx.Model(model)
	for k, v := range where {
		db = db.Where(k, v)
	}
	return db.UpdateColumn(key, value).Error
}

func (t *tx) Delete(key string, value interface{}, model interface{}) error {
	if !t.isForWrites {
		return ErrReadOnly
	}
	return t.dbtx.Where(fmt.Sprintf("%s = ?", key), value).Delete(model).Error
}

func (t *tx) Migrate(model interface{}) error {
	if !t.isForWrites {
		return ErrReadOnly
	}
	return t.dbtx.AutoMigrate(model)
}

func (t *tx) RegisterCommitHook(fn func()) {
	t.commitHooks = append(t.commitHooks, fn)
}
