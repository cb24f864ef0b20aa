package config

import (
	"time"
)

type AppConfig struct {
	APIPort         string `env:"PORT,required" envDefault:"12222"`
	APIKey          string `env:"API_KEY,required"`
	RabbitMQURL     string `env:"RABBITMQ_URL"`
	ResumeURLPrefix string `env:"RESUME_URL_PREFIX" envDefault:"/resumes"`
}

type DatabaseConfig struct {
	Host            string `env:"RECRUITSTACK_POSTGRES_HOST,required"`
	Port            string `env:"RECRUITSTACK_POSTGRES_PORT,required"`
	User            string `env:"RECRUITSTACK_POSTGRES_USER,required"`
	DBName          string `env:"RECRUITSTACK_POSTGRES_DB_NAME,required"`
	Password        string `env:"RECRUITSTACK_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"RECRUITSTACK_POSTGRES_DB_MAX_CONN" envDefault:"25"`
	MaxIdleConn     int    `env:"RECRUITSTACK_POSTGRES_DB_MAX_IDLE_CONN" envDefault:"10"`
	ConnMaxLifetime int    `env:"RECRUITSTACK_POSTGRES_DB_CONN_MAX_LIFETIME" envDefault:"60"`
	LogLevel        string `env:"RECRUITSTACK_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"RECRUITSTACK_POSTGRES_SSL_MODE" envDefault:"disable"`
}

type ImapConfig struct {
	Mailbox               string        `env:"IMAP_MAILBOX" envDefault:"INBOX"`
	ProbeTimeout          time.Duration `env:"IMAP_PROBE_TIMEOUT" envDefault:"30s"`
	ConnectTimeout        time.Duration `env:"IMAP_CONNECT_TIMEOUT" envDefault:"60s"`
	AuthTimeout           time.Duration `env:"IMAP_AUTH_TIMEOUT" envDefault:"30s"`
	TLSInsecureSkipVerify bool          `env:"IMAP_TLS_INSECURE_SKIP_VERIFY" envDefault:"false"`
}

type ProcessingConfig struct {
	Concurrency        int `env:"PROCESSING_CONCURRENCY" envDefault:"1"`
	MaxAttachmentBytes int `env:"PROCESSING_MAX_ATTACHMENT_BYTES" envDefault:"20971520"`
	MaxTextChars       int `env:"PROCESSING_MAX_TEXT_CHARS" envDefault:"30000"`
}

type AnalysisConfig struct {
	// vertex or http
	Provider           string `env:"ANALYSIS_PROVIDER" envDefault:"vertex"`
	GoogleCloudProject string `env:"GOOGLE_CLOUD_PROJECT"`
	GoogleCloudRegion  string `env:"GOOGLE_CLOUD_REGION" envDefault:"us-central1"`
	// empty uses application default credentials
	GoogleCredentialsFile string        `env:"GOOGLE_CREDENTIALS_FILE"`
	Model                 string        `env:"ANALYSIS_MODEL" envDefault:"gemini-1.5-flash"`
	Temperature           float32       `env:"ANALYSIS_TEMPERATURE" envDefault:"0.2"`
	MaxOutputTokens       int32         `env:"ANALYSIS_MAX_OUTPUT_TOKENS" envDefault:"2048"`
	HTTPEndpoint          string        `env:"ANALYSIS_HTTP_ENDPOINT"`
	HTTPAPIKey            string        `env:"ANALYSIS_HTTP_API_KEY"`
	Timeout               time.Duration `env:"ANALYSIS_TIMEOUT" envDefault:"60s"`
}

type R2StorageConfig struct {
	Enabled         bool   `env:"RESUME_ARCHIVE_ENABLED" envDefault:"false"`
	AccountID       string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET"`
	ResumeBucket    string `env:"BUCKET_NAME_RESUMES" envDefault:"resumes"`
	PublicDomain    string `env:"RESUME_ARCHIVE_PUBLIC_DOMAIN"`
}

type KubernetesConfig struct {
	PodName   string `env:"POD_NAME" envDefault:"local"`
	Namespace string `env:"POD_NAMESPACE" envDefault:"default"`
	LocalDev  bool   `env:"LOCAL_DEV" envDefault:"false"`
}
