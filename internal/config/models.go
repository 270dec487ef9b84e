package config

// SourceConfig selects and filters the mail source
type SourceConfig struct {
	Type           string
	SubjectFilters []string
}

// IMAPConfig represents the configuration for the IMAP mail source
type IMAPConfig struct {
	Address   string
	Username  string
	Password  string
	Folder    string
	TLS       bool
	SinceDays int
}

// SMTPIngestConfig represents the configuration for the SMTP ingest source
type SMTPIngestConfig struct {
	ListenAddress   string
	MaxMessageBytes int
}

// ReportConfig represents the configuration for the report sink
type ReportConfig struct {
	Enabled    bool
	OutputDir  string
	FilePrefix string
}

// FormConfig represents the configuration for the form submitter
type FormConfig struct {
	Enabled        bool
	Headless       bool
	ActionSelector string
	ActionValue    string
	SubmitSelector string
}

// GetSource returns the mail source configuration
func (c *Config) GetSource() SourceConfig {
	return SourceConfig{
		Type:           c.GetString("source.type"),
		SubjectFilters: c.GetStringSlice("source.subject_filters"),
	}
}

// GetIMAP returns the IMAP configuration
func (c *Config) GetIMAP() IMAPConfig {
	return IMAPConfig{
		Address:   c.GetString("imap.address"),
		Username:  c.GetString("imap.username"),
		Password:  c.GetString("imap.password"),
		Folder:    c.GetString("imap.folder"),
		TLS:       c.GetBool("imap.tls"),
		SinceDays: c.GetInt("imap.since_days"),
	}
}

// GetSMTPIngest returns the SMTP ingest configuration
func (c *Config) GetSMTPIngest() SMTPIngestConfig {
	return SMTPIngestConfig{
		ListenAddress:   c.GetString("smtp_ingest.listen_address"),
		MaxMessageBytes: c.GetInt("smtp_ingest.max_message_bytes"),
	}
}

// GetReport returns the report sink configuration
func (c *Config) GetReport() ReportConfig {
	return ReportConfig{
		Enabled:    c.GetBool("report.enabled"),
		OutputDir:  c.GetString("report.output_dir"),
		FilePrefix: c.GetString("report.file_prefix"),
	}
}

// GetForm returns the form submitter configuration
func (c *Config) GetForm() FormConfig {
	return FormConfig{
		Enabled:        c.GetBool("form.enabled"),
		Headless:       c.GetBool("form.headless"),
		ActionSelector: c.GetString("form.action_selector"),
		ActionValue:    c.GetString("form.action_value"),
		SubmitSelector: c.GetString("form.submit_selector"),
	}
}
