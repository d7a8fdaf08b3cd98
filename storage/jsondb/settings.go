package jsondb

import "github.com/trezcool/certquiz/core/settings"

const (
	settingsCollection = "settings"
	userSettingsDir    = "user_settings"
)

type settingsRepository struct {
	db *DB
}

var _ settings.Repository = (*settingsRepository)(nil)

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db}
}

// LoadSettings returns the singleton document, falling back to full defaults
// when it is absent or corrupt.
func (r *settingsRepository) LoadSettings() (settings.Settings, error) {
	s := settings.Defaults()
	r.db.Read(settingsCollection, &s)
	return s, nil
}

func (r *settingsRepository) SaveSettings(s settings.Settings) error {
	return r.db.Write(settingsCollection, s)
}

func (r *settingsRepository) LoadUserSettings(username string) (map[string]interface{}, error) {
	s := make(map[string]interface{})
	r.db.Read(userSettingsDir+"/"+username, &s)
	return s, nil
}

func (r *settingsRepository) SaveUserSettings(username string, s map[string]interface{}) error {
	return r.db.Write(userSettingsDir+"/"+username, s)
}
