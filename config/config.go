package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost         string `envconfig:"DB_HOST" required:"true"`
	DBPort         int    `envconfig:"DB_PORT" default:"5432"`
	DBUser         string `envconfig:"DB_USER" required:"true"`
	DBPassword     string `envconfig:"DB_PASSWORD"`
	DBName         string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBMaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"2"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"8000"`
	Debug    bool   `envconfig:"APP_DEBUG" default:"false"`

	// Zeitzone, in der Zeitstempel an das Dashboard ausgeliefert werden
	DisplayTimezone string `envconfig:"DISPLAY_TIMEZONE" default:"Asia/Tokyo"`

	// Operations-Log (Löschen/Wiederherstellen)
	LogDir         string `envconfig:"LOG_DIR" default:"logs"`
	LogMaxSizeMB   int    `envconfig:"LOG_MAX_SIZE_MB" default:"10"`
	LogBackupCount int    `envconfig:"LOG_BACKUP_COUNT" default:"2"`

	// Kommagetrennt; leer bedeutet alle Origins erlaubt
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS"`

	// Duplikat-Report; leerer Schedule deaktiviert den Job
	ReportCronSchedule string `envconfig:"REPORT_CRON_SCHEDULE"`
	ReportS3URL        string `envconfig:"REPORT_S3_URL"`
	ReportS3Region     string `envconfig:"REPORT_S3_REGION" default:"us-east-1"`
	ReportS3Key        string `envconfig:"REPORT_S3_KEY"`
	ReportS3Secret     string `envconfig:"REPORT_S3_SECRET"`
	ReportS3Bucket     string `envconfig:"REPORT_S3_BUCKET"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// Location löst die Anzeige-Zeitzone auf.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

// AllowedOrigins zerlegt CORS_ALLOWED_ORIGINS in eine Liste.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ReportUploadEnabled meldet, ob Reports nach S3 hochgeladen werden.
func (c *Config) ReportUploadEnabled() bool {
	return c.ReportS3Bucket != "" && c.ReportS3URL != ""
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}
