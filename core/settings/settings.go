package settings

import (
	"time"

	"github.com/trezcool/certquiz/core"
)

// Settings is the singleton application configuration document, editable at
// runtime by administrators. One writer at a time is expected; there is no
// versioning.
type Settings struct {
	CompanyName             string  `json:"company_name"`
	PassingScore            float64 `json:"passing_score"`
	CertificateValidityDays int     `json:"certificate_validity_days"`
	EnableSelfRegistration  bool    `json:"enable_self_registration"`
	DefaultQuizTimeLimit    int     `json:"default_quiz_time_limit"` // seconds; 0 means no time limit
	DefaultQuizQuestions    int     `json:"default_quiz_questions"`
	TrackCategories         bool    `json:"track_categories"`
	RequireResetPassword    bool    `json:"require_reset_password"`
	PasswordExpiryDays      int     `json:"password_expiry_days"`
	LastUpdated             string  `json:"last_updated"`
}

// Defaults are used whenever the settings document is absent or corrupt.
func Defaults() Settings {
	return Settings{
		CompanyName:             "Your Company",
		PassingScore:            80,
		CertificateValidityDays: 365,
		EnableSelfRegistration:  true,
		DefaultQuizTimeLimit:    0,
		DefaultQuizQuestions:    10,
		TrackCategories:         true,
		RequireResetPassword:    true,
		PasswordExpiryDays:      90,
	}
}

// UpdateSettings defines what administrators may change.
type UpdateSettings struct {
	CompanyName             string  `json:"company_name" validate:"required"`
	PassingScore            float64 `json:"passing_score" validate:"min=0,max=100"`
	CertificateValidityDays int     `json:"certificate_validity_days" validate:"min=0"`
	EnableSelfRegistration  bool    `json:"enable_self_registration"`
	DefaultQuizTimeLimit    int     `json:"default_quiz_time_limit" validate:"min=0"`
	DefaultQuizQuestions    int     `json:"default_quiz_questions" validate:"min=1"`
	TrackCategories         bool    `json:"track_categories"`
	RequireResetPassword    bool    `json:"require_reset_password"`
	PasswordExpiryDays      int     `json:"password_expiry_days" validate:"min=0"`
}

func (us *UpdateSettings) Validate() error {
	us.CompanyName = core.CleanString(us.CompanyName)
	return core.Validate.Struct(us)
}

var nowFunc = time.Now // mockable

type (
	Repository interface {
		LoadSettings() (Settings, error)
		SaveSettings(s Settings) error
		LoadUserSettings(username string) (map[string]interface{}, error)
		SaveUserSettings(username string, s map[string]interface{}) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get() (Settings, error) {
	return svc.repo.LoadSettings()
}

func (svc *Service) Set(us UpdateSettings) (Settings, error) {
	s := Settings{
		CompanyName:             us.CompanyName,
		PassingScore:            us.PassingScore,
		CertificateValidityDays: us.CertificateValidityDays,
		EnableSelfRegistration:  us.EnableSelfRegistration,
		DefaultQuizTimeLimit:    us.DefaultQuizTimeLimit,
		DefaultQuizQuestions:    us.DefaultQuizQuestions,
		TrackCategories:         us.TrackCategories,
		RequireResetPassword:    us.RequireResetPassword,
		PasswordExpiryDays:      us.PasswordExpiryDays,
		LastUpdated:             core.FormatTimestamp(nowFunc()),
	}
	if err := svc.repo.SaveSettings(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// GetForUser returns the sparse per-user preferences document; empty map when
// the user has none.
func (svc *Service) GetForUser(username string) (map[string]interface{}, error) {
	return svc.repo.LoadUserSettings(core.CleanString(username, true /* lower */))
}

func (svc *Service) SetForUser(username string, s map[string]interface{}) error {
	return svc.repo.SaveUserSettings(core.CleanString(username, true /* lower */), s)
}
