package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Sheets    SheetsConfig
	Tracker   TrackerConfig
	Drive     DriveConfig
	Processor ProcessorConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	MetricsPath string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

type SheetsConfig struct {
	// Path to the service account credentials JSON. Empty uses
	// application default credentials.
	CredentialsFile string
	RequestsPerSec  float64
}

type TrackerConfig struct {
	Token            string
	TemplateFolderID string
	BudgetFieldID    string
	ListFieldID      string
}

type DriveConfig struct {
	RootFolderID    string
	TemplateSheetID string
	ShareDomain     string
}

type ProcessorConfig struct {
	// Allowed drift when reconciling line items against subtotals.
	ReconcileTolerance float64
	OutputDir          string
	DefaultCompany     string
	// Cron expression for the nightly re-sync of tracked budgets.
	ResyncSchedule string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Populate the environment from a .env file when one is present;
	// a missing file is the normal deployed case.
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			MetricsPath: getEnv("METRICS_PATH", "/metrics"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "budget_sync"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Sheets: SheetsConfig{
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			RequestsPerSec:  getEnvAsFloat("SHEETS_REQUESTS_PER_SEC", 1),
		},
		Tracker: TrackerConfig{
			Token:            getEnv("CLICKUP_API_TOKEN", ""),
			TemplateFolderID: getEnv("CLICKUP_TEMPLATE_FOLDER_ID", ""),
			BudgetFieldID:    getEnv("CLICKUP_BUDGET_FIELD_ID", ""),
			ListFieldID:      getEnv("CLICKUP_LIST_FIELD_ID", ""),
		},
		Drive: DriveConfig{
			RootFolderID:    getEnv("DRIVE_ROOT_FOLDER_ID", ""),
			TemplateSheetID: getEnv("DRIVE_TEMPLATE_SHEET_ID", ""),
			ShareDomain:     getEnv("DRIVE_SHARE_DOMAIN", ""),
		},
		Processor: ProcessorConfig{
			ReconcileTolerance: getEnvAsFloat("BUDGET_RECONCILE_TOLERANCE", 0.01),
			OutputDir:          getEnv("OUTPUT_DIR", "output"),
			DefaultCompany:     getEnv("DEFAULT_PRODUCTION_COMPANY", ""),
			ResyncSchedule:     getEnv("RESYNC_SCHEDULE", "0 2 * * *"),
		},
	}

	return cfg, nil
}

// RequireTracker validates the fields job provisioning cannot run without.
func (c *Config) RequireTracker() error {
	if c.Tracker.Token == "" {
		return errors.New("CLICKUP_API_TOKEN is required")
	}
	if c.Tracker.TemplateFolderID == "" {
		return errors.New("CLICKUP_TEMPLATE_FOLDER_ID is required")
	}
	if c.Tracker.BudgetFieldID == "" {
		return errors.New("CLICKUP_BUDGET_FIELD_ID is required")
	}
	if c.Tracker.ListFieldID == "" {
		return errors.New("CLICKUP_LIST_FIELD_ID is required")
	}
	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}
