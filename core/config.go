package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Port                      string
		DebugPort                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		// Path is the bolt file holding the whole store. One profile per file.
		Path string
	}

	NotificationConfig struct {
		// Retention caps the in-memory notification list; oldest entries are
		// dropped first.
		Retention int
	}

	Config struct {
		Debug    bool
		TestMode bool
		Env      string
		Build    string

		AppName          string
		SecretKey        string
		DefaultFromEmail mail.Address
		FrontendBaseURL  string

		SendgridAPIKey string
		RollbarToken   string

		Server       ServerConfig
		Database     DatabaseConfig
		Notification NotificationConfig
	}
)

func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c ServerConfig) DebugAddress() string {
	return c.Host + ":" + c.DebugPort
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Registro Académico")
	conf.SetDefault("secretKey", "k7dm-pos)wnb$+02=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("serverHost", "")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("serverDebugPort", "8001")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("databasePath", filepath.Join("data", "registro.db"))
	conf.SetDefault("notificationRetention", 200)
	conf.SetDefault("sendgridApiKey", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("build", "dev")

	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		DefaultFromEmail: mail.Address{Name: conf.GetString("appName"), Address: conf.GetString("defaultFromEmail")},
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),

		SendgridAPIKey: conf.GetString("sendgridApiKey"),
		RollbarToken:   conf.GetString("rollbarToken"),

		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Port:                      conf.GetString("serverPort"),
			DebugPort:                 conf.GetString("serverDebugPort"),
			ShutdownTimeout:           conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database:     DatabaseConfig{Path: conf.GetString("databasePath")},
		Notification: NotificationConfig{Retention: conf.GetInt("notificationRetention")},
	}
}
