package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Conf holds the process configuration. It is populated once at import time
// from defaults, an optional .env file and environment variables (prefixed
// with the current ENV name). Application-domain settings (passing score,
// certificate validity, ...) do NOT live here; they belong to the settings
// store and are editable at runtime.
var Conf Config

type Config struct {
	Env      string
	Debug    bool
	TestMode bool
	AppName  string

	SecretKey []byte

	// ServerAddr is the API bind address.
	ServerAddr string
	ServerHost string
	Build      string

	// DataDir is the root of all persisted JSON collections.
	// Backups of overwritten/corrupted documents go to DataDir/backups.
	DataDir string

	FrontendBaseURL  string
	DefaultFromEmail string
	SendgridAPIKey   string
	RollbarToken     string

	JWTExpirationDelta        time.Duration
	PasswordResetTimeoutDelta time.Duration
}

func init() {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "CertQuiz")
	v.SetDefault("secretKey", "w3m$2y8(h!x)#*c2poq5-wer)enb$+57=dz&uoxh4h^$ce")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverHost", "localhost")
	v.SetDefault("dataDir", "data")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	Conf = Config{
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  env == "TEST",
		AppName:                   v.GetString("appName"),
		SecretKey:                 []byte(v.GetString("secretKey")),
		ServerAddr:                v.GetString("serverAddr"),
		ServerHost:                v.GetString("serverHost"),
		Build:                     v.GetString("build"),
		DataDir:                   v.GetString("dataDir"),
		FrontendBaseURL:           v.GetString("frontendBaseUrl"),
		DefaultFromEmail:          v.GetString("defaultFromEmail"),
		SendgridAPIKey:            v.GetString("sendgridApiKey"),
		RollbarToken:              v.GetString("rollbarToken"),
		JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
	}
}
