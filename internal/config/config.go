package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/lead-triage/")
	v.AddConfigPath("$HOME/.lead-triage")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("LEAD_TRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mail source defaults
	v.SetDefault("source.type", "imap")
	v.SetDefault("source.subject_filters", []string{
		"Pre-MQL ready for review",
		"Pre-MQL ready for validation",
	})

	// IMAP source defaults
	v.SetDefault("imap.address", "localhost:993")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.password", "")
	v.SetDefault("imap.folder", "INBOX")
	v.SetDefault("imap.tls", true)
	v.SetDefault("imap.since_days", 7)

	// SMTP ingest defaults
	v.SetDefault("smtp_ingest.listen_address", "0.0.0.0:10025")
	v.SetDefault("smtp_ingest.max_message_bytes", 10*1024*1024)

	// Directory source defaults
	v.SetDefault("dir_source.path", "./inbox")

	// Rule defaults
	v.SetDefault("rules.dir", "")
	v.SetDefault("rules.academic_suffixes", []string{".edu", ".ac.uk", ".edu.au"})
	v.SetDefault("rules.academic_keywords", []string{
		"university", "universitat", "universitaet", "universite",
		"universita", "universidad", "universidade", "hochschule",
		"fachhochschule", "college", "polytechnic", "politecnico",
	})
	v.SetDefault("rules.commercial_markers", []string{
		"gmbh", "ag", "ltd", "limited", "inc", "corp", "corporation",
		"llc", "consulting", "consultancy", "solutions", "services",
		"systems", "technologies", "group", "holding", "holdings",
	})
	v.SetDefault("rules.direct_accounts", []string{})
	v.SetDefault("rules.excluded_addresses", []string{})
	v.SetDefault("rules.blacklisted_countries", []string{})
	v.SetDefault("rules.freemail_domains", []string{
		"gmail.com", "yahoo.com", "outlook.com", "hotmail.com",
		"live.com", "aol.com", "icloud.com", "mail.com", "proton.me",
		"protonmail.com", "gmx.com", "gmx.de", "web.de", "yandex.com",
		"zoho.com", "qq.com", "mail.ru", "163.com", "126.com",
	})

	// Dedup defaults
	v.SetDefault("dedup.type", "memory")
	v.SetDefault("dedup.cross_run", false)
	v.SetDefault("dedup.ttl", "720h")
	v.SetDefault("dedup.cleanup_frequency", "1h")
	v.SetDefault("dedup.sqlite_path", "/data/lead_dedup.db")
	v.SetDefault("dedup.mysql_dsn", "user:password@tcp(localhost:3306)/lead_triage")
	v.SetDefault("dedup.redis_address", "localhost:6379")
	v.SetDefault("dedup.redis_password", "")
	v.SetDefault("dedup.redis_db", 0)

	// Country lookup defaults
	v.SetDefault("country.type", "static")
	v.SetDefault("country.static_table", map[string]string{})
	v.SetDefault("country.cctld_fallback", true)
	v.SetDefault("country.geoip_db_path", "/data/GeoLite2-Country.mmdb")
	v.SetDefault("country.dns_timeout", "5s")

	// Report defaults
	v.SetDefault("report.enabled", true)
	v.SetDefault("report.output_dir", "./output")
	v.SetDefault("report.file_prefix", "PreMQL")

	// Form submission defaults
	v.SetDefault("form.enabled", false)
	v.SetDefault("form.headless", true)
	v.SetDefault("form.page_timeout", "30s")
	v.SetDefault("form.action_selector", "select[name=action]")
	v.SetDefault("form.action_value", "validate")
	v.SetDefault("form.submit_selector", "button[type=submit]")

	// Mail mover defaults
	v.SetDefault("mover.enabled", false)
	v.SetDefault("mover.folders.valid", "MQL/Validated")
	v.SetDefault("mover.folders.review", "MQL/Review")
	v.SetDefault("mover.folders.rejected", "MQL/Rejected")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapString gets a string map value from the configuration
func (c *Config) GetStringMapString(key string) map[string]string {
	return c.v.GetStringMapString(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
