package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every configuration environment variable.
const EnvPrefix = "LEARNSCRIPTURE"

// defaults lists every key with its default value. Keys without a sensible
// default are registered with a zero value so viper binds them to the
// environment during Unmarshal.
var defaults = map[string]any{
	"server.port":                         8080,
	"server.log_level":                    "info",
	"server.base_url":                     "http://localhost:8080",
	"server.shutdown_timeout_seconds":     15,
	"database.url":                        "",
	"database.max_open_conns":             25,
	"database.max_idle_conns":             25,
	"auth.jwt_secret":                     "",
	"auth.token_lifetime_minutes":         60,
	"auth.refresh_token_lifetime_minutes": 10080,
	"auth.bcrypt_cost":                    10,
	"task.worker_count":                   2,
	"task.queue_size":                     100,
	"task.stuck_task_age_minutes":         30,
	"email.provider":                      "console",
	"email.from_address":                  "contact@learnscripture.net",
	"email.from_name":                     "LearnScripture.net",
	"email.sendgrid_api_key":              "",
	"email.mailgun_signing_key":           "",
	"payments.paypal_receiver_email":      "",
	"payments.paypal_verify_url":          "https://ipnpb.paypal.com/cgi-bin/webscr",
	"reminders.enabled":                   true,
	"reminders.check_interval_minutes":    60,
	"error_tracking.rollbar_token":        "",
	"error_tracking.environment":          "development",
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded first; existing environment
// variables take precedence over it. Environment variables take precedence
// over values from config.yaml.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newValidator reports fields by their config key and translates failures
// into English sentences.
func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]; name != "" {
			return name
		}
		return fld.Name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(v, trans)
	return v, trans
}

// Validate checks cfg against its struct tags. The error lists every failing
// key, e.g. "server.port: port is a required field".
func Validate(cfg *Config) error {
	v, trans := newValidator()
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation failed: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, strings.TrimPrefix(fe.Namespace(), "Config.")+": "+fe.Translate(trans))
	}
	return fmt.Errorf("config validation failed: %s: %w", strings.Join(msgs, "; "), err)
}
