package config

import "time"

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12222"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
}

type DatabaseConfig struct {
	Host            string `env:"MAILSORTER_POSTGRES_HOST,required"`
	Port            string `env:"MAILSORTER_POSTGRES_PORT,required"`
	User            string `env:"MAILSORTER_POSTGRES_USER,required"`
	DBName          string `env:"MAILSORTER_POSTGRES_DB_NAME,required"`
	Password        string `env:"MAILSORTER_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"MAILSORTER_POSTGRES_DB_MAX_CONN" envDefault:"25"`
	MaxIdleConn     int    `env:"MAILSORTER_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"MAILSORTER_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"MAILSORTER_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"MAILSORTER_POSTGRES_SSL_MODE" envDefault:"require"`
}

type MailboxConfig struct {
	Host           string        `env:"IMAP_HOST" envDefault:"imap.gmail.com"`
	Port           int           `env:"IMAP_PORT" envDefault:"993"`
	TLS            bool          `env:"IMAP_TLS" envDefault:"true"`
	Username       string        `env:"IMAP_USERNAME,required"`
	Password       string        `env:"IMAP_PASSWORD,required"`
	Folder         string        `env:"IMAP_FOLDER" envDefault:"INBOX"`
	ConnectTimeout time.Duration `env:"IMAP_CONNECT_TIMEOUT" envDefault:"30s"`
}

type ClassifierConfig struct {
	Url          string        `env:"CLASSIFIER_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"`
	ApiKey       string        `env:"CLASSIFIER_API_KEY"`
	RequestDelay time.Duration `env:"CLASSIFIER_REQUEST_DELAY" envDefault:"4s"`
	Timeout      time.Duration `env:"CLASSIFIER_TIMEOUT" envDefault:"30s"`
	BodyLimit    int           `env:"CLASSIFIER_BODY_LIMIT" envDefault:"500"`
}

type PipelineConfig struct {
	IntervalMinutes int `env:"PIPELINE_INTERVAL_MINUTES" envDefault:"5"`
	WindowDays      int `env:"PIPELINE_WINDOW_DAYS" envDefault:"1"`
}

func (c *PipelineConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

type R2StorageConfig struct {
	AccountID       string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET"`
	RawEmailBucket  string `env:"BUCKET_NAME_RAW_EMAIL" envDefault:"raw-emails"`
}

// Enabled is false unless every credential is set; archiving is optional.
func (c *R2StorageConfig) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != ""
}
