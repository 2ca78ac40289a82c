package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Environment variable names.
const (
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvModel          = "RECEIPTS_MODEL"
	EnvOutputDir      = "RECEIPTS_OUTPUT_DIR"
	EnvReportBucket   = "RECEIPTS_REPORT_BUCKET"
	EnvReportPrefix   = "RECEIPTS_REPORT_PREFIX"
	EnvProject        = "GOOGLE_CLOUD_PROJECT"
	EnvDataset        = "RECEIPTS_BQ_DATASET"
	EnvCredentials    = "GOOGLE_APPLICATION_CREDENTIALS"
	EnvNotionToken    = "NOTION_TOKEN"
	EnvNotionDatabase = "NOTION_DATABASE_ID"
	EnvReportTitle    = "RECEIPTS_REPORT_TITLE"
	EnvApprover       = "RECEIPTS_APPROVER"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvMetricsFile    = "RECEIPTS_METRICS_FILE"
	EnvTimeout        = "RECEIPTS_TIMEOUT"
)

// Config holds runtime settings for the receipt CLI.
type Config struct {
	GeminiAPIKey string
	Model        string

	OutputDir    string
	ReportBucket string
	ReportPrefix string

	ProjectID       string
	Dataset         string
	CredentialsFile string

	NotionToken      string
	NotionDatabaseID string

	ReportTitle string
	Approver    string

	LogLevel    string
	LogFormat   string
	MetricsFile string
	Timeout     time.Duration
}

// Load reads the configuration from the environment. Call godotenv.Load
// beforehand to pick up a local .env file.
func Load() *Config {
	return LoadFrom(viper.New())
}

// LoadFrom reads the configuration through the given viper instance.
func LoadFrom(v *viper.Viper) *Config {
	v.AutomaticEnv()

	v.SetDefault(EnvModel, "gemini-2.5-flash")
	v.SetDefault(EnvOutputDir, "results")
	v.SetDefault(EnvDataset, "receipts")
	v.SetDefault(EnvReportTitle, "CLUB EXPENSE SUMMARY REPORT")
	v.SetDefault(EnvApprover, "treasurer/advisor")
	v.SetDefault(EnvLogLevel, "info")
	v.SetDefault(EnvLogFormat, "console")
	v.SetDefault(EnvTimeout, "10m")

	return &Config{
		GeminiAPIKey:     v.GetString(EnvGeminiAPIKey),
		Model:            v.GetString(EnvModel),
		OutputDir:        v.GetString(EnvOutputDir),
		ReportBucket:     v.GetString(EnvReportBucket),
		ReportPrefix:     v.GetString(EnvReportPrefix),
		ProjectID:        v.GetString(EnvProject),
		Dataset:          v.GetString(EnvDataset),
		CredentialsFile:  v.GetString(EnvCredentials),
		NotionToken:      v.GetString(EnvNotionToken),
		NotionDatabaseID: v.GetString(EnvNotionDatabase),
		ReportTitle:      v.GetString(EnvReportTitle),
		Approver:         v.GetString(EnvApprover),
		LogLevel:         v.GetString(EnvLogLevel),
		LogFormat:        v.GetString(EnvLogFormat),
		MetricsFile:      v.GetString(EnvMetricsFile),
		Timeout:          v.GetDuration(EnvTimeout),
	}
}

// Validate checks settings every command relies on and returns all problems at once.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Model) == "" {
		problems = append(problems, fmt.Sprintf("%s cannot be empty", EnvModel))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		problems = append(problems, fmt.Sprintf("%s cannot be empty", EnvOutputDir))
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("invalid %s: must be a positive duration", EnvTimeout))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		problems = append(problems, fmt.Sprintf("invalid %s '%s'", EnvLogLevel, c.LogLevel))
	}
	if f := strings.ToLower(c.LogFormat); f != "console" && f != "json" {
		problems = append(problems, fmt.Sprintf("invalid %s '%s': must be console or json", EnvLogFormat, c.LogFormat))
	}
	if (c.NotionToken == "") != (c.NotionDatabaseID == "") {
		problems = append(problems, fmt.Sprintf("%s and %s must be set together", EnvNotionToken, EnvNotionDatabase))
	}

	return joinProblems(problems)
}

// RequireAnalyzer reports whether receipt analysis can run.
func (c *Config) RequireAnalyzer() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("%s is not set", EnvGeminiAPIKey)
	}
	return nil
}

// RequireArchive reports whether the BigQuery archive can be used.
func (c *Config) RequireArchive() error {
	var problems []string
	if c.ProjectID == "" {
		problems = append(problems, fmt.Sprintf("%s is not set", EnvProject))
	}
	if c.Dataset == "" {
		problems = append(problems, fmt.Sprintf("%s is not set", EnvDataset))
	}
	return joinProblems(problems)
}

// RequireNotion reports whether the Notion export can be used.
func (c *Config) RequireNotion() error {
	var problems []string
	if c.NotionToken == "" {
		problems = append(problems, fmt.Sprintf("%s is not set", EnvNotionToken))
	}
	if c.NotionDatabaseID == "" {
		problems = append(problems, fmt.Sprintf("%s is not set", EnvNotionDatabase))
	}
	return joinProblems(problems)
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return errors.New("configuration validation failed:\n  - " + strings.Join(problems, "\n  - "))
}
