package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server        ServerConfig        `mapstructure:"server" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Auth          AuthConfig          `mapstructure:"auth" validate:"required"`
	Task          TaskConfig          `mapstructure:"task" validate:"required"`
	Email         EmailConfig         `mapstructure:"email" validate:"required"`
	Payments      PaymentsConfig      `mapstructure:"payments"`
	Reminders     RemindersConfig     `mapstructure:"reminders" validate:"required"`
	ErrorTracking ErrorTrackingConfig `mapstructure:"error_tracking"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	// BaseURL is the public site address used in email links.
	BaseURL                string `mapstructure:"base_url" validate:"required,url"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0,lt=525600,gtfield=TokenLifetimeMinutes"`
	BCryptCost                  int    `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// EmailConfig contains email delivery and bounce webhook settings.
type EmailConfig struct {
	Provider          string `mapstructure:"provider" validate:"required,oneof=console sendgrid"`
	FromAddress       string `mapstructure:"from_address" validate:"required,email"`
	FromName          string `mapstructure:"from_name"`
	SendGridAPIKey    string `mapstructure:"sendgrid_api_key" validate:"required_if=Provider sendgrid"`
	MailgunSigningKey string `mapstructure:"mailgun_signing_key"`
}

// PaymentsConfig contains PayPal IPN settings.
type PaymentsConfig struct {
	PayPalReceiverEmail string `mapstructure:"paypal_receiver_email" validate:"omitempty,email"`
	PayPalVerifyURL     string `mapstructure:"paypal_verify_url" validate:"required,url"`
}

// RemindersConfig controls the reminder email scheduler.
type RemindersConfig struct {
	Enabled              bool `mapstructure:"enabled"`
	CheckIntervalMinutes int  `mapstructure:"check_interval_minutes" validate:"required,gt=0"`
}

// ErrorTrackingConfig configures Rollbar. An empty token disables reporting.
type ErrorTrackingConfig struct {
	RollbarToken string `mapstructure:"rollbar_token"`
	Environment  string `mapstructure:"environment"`
}
