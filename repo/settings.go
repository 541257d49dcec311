package repo

import (
	"encoding/json"
	"errors"

	"github.com/cpacia/dashlink/database"
	"github.com/cpacia/dashlink/models"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// SettingsStore persists JSON encoded values by key in the database.
type SettingsStore struct {
	db database.Database
}

// NewSettingsStore returns a settings store backed by the database. The
// Setting model must already be migrated.
func NewSettingsStore(db database.Database) *SettingsStore {
	return &SettingsStore{db: db}
}

// GetSetting decodes the value stored under key into out. It returns
// false if the key has never been set.
func (s *SettingsStore) GetSetting(key string, out interface{}) (bool, error) {
	var setting models.Setting
	err := s.db.View(func(tx database.Tx) error {
		return tx.Read().Where("key = ?", key).First(&setting).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	} else if err != nil {
		return false, pkgerrors.Wrapf(err, "load setting %s", key)
	}
	if err := json.Unmarshal(setting.Value, out); err != nil {
		return false, pkgerrors.Wrapf(err, "decode setting %s", key)
	}
	return true, nil
}

// PutSetting JSON encodes the value and stores it under key.
func (s *SettingsStore) PutSetting(key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrapf(err, "encode setting %s", key)
	}
	return s.db.Update(func(tx database.Tx) error {
		return tx.Save(&models.Setting{Key: key, Value: b})
	})
}

// PutSettings stores several values in a single transaction.
func (s *SettingsStore) PutSettings(values map[string]interface{}) error {
	encoded := make([]*models.Setting, 0, len(values))
	for key, value := range values {
		b, err := json.Marshal(value)
		if err != nil {
			return pkgerrors.Wrapf(err, "encode setting %s", key)
		}
		encoded = append(encoded, &models.Setting{Key: key, Value: b})
	}
	return s.db.Update(func(tx database.Tx) error {
		for _, setting := range encoded {
			if err := tx.Save(setting); err != nil {
				return err
			}
		}
		return nil
	})
}
