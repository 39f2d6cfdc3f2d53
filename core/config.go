package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Debug            bool
	TestMode         bool
	Env              string // DEV (default), TEST, QA, PROD
	Build            string
	AppName          string
	SecretKey        string
	FrontendBaseURL  string
	CORSOrigin       string
	WorkDir          string
	DefaultFromEmail mail.Address

	SendgridAPIKey string
	KickboxAPIKey  string
	RollbarToken   string

	VerificationCodeTTL time.Duration

	Server struct {
		Host                 string
		Addr                 string
		DebugHost            string
		AdminTokenExpiration time.Duration
		ShutdownTimeout      time.Duration
	}

	Database struct {
		Engine        string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Host          string
		Port          string
		DisableTLS    bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.Database.Host, c.Database.Port)
}

func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Kilimo")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "w3p9-klm)agr$+41=tz&fshm7(c!b)#*k9(#vu2d^$imbw5qui")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")
	v.SetDefault("corsOrigin", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("verificationCodeTtl", 10*time.Minute)
	v.SetDefault("port", "8000")
	v.SetDefault("host", "localhost")
	v.SetDefault("debugHost", "localhost:4000")
	v.SetDefault("adminTokenExpiration", 24*time.Hour)
	v.SetDefault("shutdownTimeout", 5*time.Second)
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseName", "kilimo")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseDisableTls", true)
	v.SetDefault("redisAddr", "localhost:6379")
	v.SetDefault("redisDb", 0)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	// AutomaticEnv upcases the key verbatim (corsOrigin -> CORSORIGIN);
	// bind the underscore-separated names the deployments set.
	for key, envVar := range map[string]string{
		"testMode":              "TEST_MODE",
		"appName":               "APP_NAME",
		"secretKey":             "SECRET_KEY",
		"frontendBaseUrl":       "FRONTEND_BASE_URL",
		"corsOrigin":            "CORS_ORIGIN",
		"defaultFromEmail":      "DEFAULT_FROM_EMAIL",
		"verificationCodeTtl":   "VERIFICATION_CODE_TTL",
		"sendgridApiKey":        "SENDGRID_API_KEY",
		"kickboxApiKey":         "KICKBOX_API_KEY",
		"rollbarToken":          "ROLLBAR_TOKEN",
		"debugHost":             "DEBUG_HOST",
		"adminTokenExpiration":  "ADMIN_TOKEN_EXPIRATION",
		"shutdownTimeout":       "SHUTDOWN_TIMEOUT",
		"databaseEngine":        "DATABASE_ENGINE",
		"databaseName":          "DATABASE_NAME",
		"databaseUser":          "DATABASE_USER",
		"databasePassword":      "DATABASE_PASSWORD",
		"databaseAdminUser":     "DATABASE_ADMIN_USER",
		"databaseAdminPassword": "DATABASE_ADMIN_PASSWORD",
		"databaseHost":          "DATABASE_HOST",
		"databasePort":          "DATABASE_PORT",
		"databaseDisableTls":    "DATABASE_DISABLE_TLS",
		"redisAddr":             "REDIS_ADDR",
		"redisPassword":         "REDIS_PASSWORD",
		"redisDb":               "REDIS_DB",
	} {
		_ = v.BindEnv(key, envVar)
	}

	conf := &Config{
		Debug:               v.GetBool("debug"),
		TestMode:            v.GetBool("testMode"),
		Env:                 env,
		Build:               v.GetString("build"),
		AppName:             v.GetString("appName"),
		SecretKey:           v.GetString("secretKey"),
		FrontendBaseURL:     v.GetString("frontendBaseUrl"),
		CORSOrigin:          v.GetString("corsOrigin"),
		WorkDir:             Getwd(),
		DefaultFromEmail:    mail.Address{Address: v.GetString("defaultFromEmail")},
		SendgridAPIKey:      v.GetString("sendgridApiKey"),
		KickboxAPIKey:       v.GetString("kickboxApiKey"),
		RollbarToken:        v.GetString("rollbarToken"),
		VerificationCodeTTL: v.GetDuration("verificationCodeTtl"),
	}
	conf.Server.Host = v.GetString("host")
	conf.Server.Addr = ":" + v.GetString("port")
	conf.Server.DebugHost = v.GetString("debugHost")
	conf.Server.AdminTokenExpiration = v.GetDuration("adminTokenExpiration")
	conf.Server.ShutdownTimeout = v.GetDuration("shutdownTimeout")
	conf.Database.Engine = v.GetString("databaseEngine")
	conf.Database.Name = v.GetString("databaseName")
	conf.Database.User = v.GetString("databaseUser")
	conf.Database.Password = v.GetString("databasePassword")
	conf.Database.AdminUser = v.GetString("databaseAdminUser")
	conf.Database.AdminPassword = v.GetString("databaseAdminPassword")
	conf.Database.Host = v.GetString("databaseHost")
	conf.Database.Port = v.GetString("databasePort")
	conf.Database.DisableTLS = v.GetBool("databaseDisableTls")
	conf.Redis.Addr = v.GetString("redisAddr")
	conf.Redis.Password = v.GetString("redisPassword")
	conf.Redis.DB = v.GetInt("redisDb")
	return conf
}
