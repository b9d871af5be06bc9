package ciutil

import (
	"log/slog"
	"os"

	"github.com/phrazzld/leancoffee-api/internal/redact"
)

// Common environment variable names used across the codebase.
const (
	// CI environment detection variables
	EnvCI            = "CI"
	EnvGitHubActions = "GITHUB_ACTIONS"
	EnvGitLabCI      = "GITLAB_CI"
	EnvJenkinsURL    = "JENKINS_URL"
	EnvCircleCI      = "CIRCLECI"

	// Database connection environment variables
	EnvTestDBURL   = "LEANCOFFEE_TEST_DB_URL" // Preferred standardized name
	EnvDatabaseURL = "DATABASE_URL"

	// Object store environment variables
	EnvTestS3Endpoint  = "LEANCOFFEE_TEST_S3_ENDPOINT"
	EnvTestS3Bucket    = "LEANCOFFEE_TEST_S3_BUCKET"
	EnvTestS3AccessKey = "LEANCOFFEE_TEST_S3_ACCESS_KEY"
	EnvTestS3SecretKey = "LEANCOFFEE_TEST_S3_SECRET_KEY"
	EnvTestS3Region    = "LEANCOFFEE_TEST_S3_REGION"

	DefaultS3Region = "us-east-1"
)

// IsCI returns true if the current environment is a CI environment.
func IsCI() bool {
	return os.Getenv(EnvCI) != "" ||
		os.Getenv(EnvGitHubActions) != "" ||
		os.Getenv(EnvGitLabCI) != "" ||
		os.Getenv(EnvJenkinsURL) != "" ||
		os.Getenv(EnvCircleCI) != ""
}

// GetEnvWithFallbacks returns the value of the first non-empty environment variable
// from the provided list. If no environment variables are set, it returns the defaultValue.
// Using anything but the first name logs a warning naming the preferred variable.
func GetEnvWithFallbacks(envVars []string, defaultValue string, logger *slog.Logger) string {
	for i, envVar := range envVars {
		if val := os.Getenv(envVar); val != "" {
			if i > 0 && logger != nil {
				logger.Warn("Using legacy environment variable",
					"used_var", envVar,
					"preferred_var", envVars[0],
					"value", redact.String(val),
				)
			}
			return val
		}
	}
	return defaultValue
}

// TestDatabaseURL returns the database URL for integration tests, or "" when
// none is configured.
func TestDatabaseURL(logger *slog.Logger) string {
	return GetEnvWithFallbacks([]string{EnvTestDBURL, EnvDatabaseURL}, "", logger)
}

// S3Settings describes the object store used by integration tests.
type S3Settings struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
}

// TestS3Settings returns the object store settings for integration tests.
// ok is false unless both an endpoint and a bucket are configured.
func TestS3Settings() (settings S3Settings, ok bool) {
	settings = S3Settings{
		Endpoint:  os.Getenv(EnvTestS3Endpoint),
		Bucket:    os.Getenv(EnvTestS3Bucket),
		AccessKey: os.Getenv(EnvTestS3AccessKey),
		SecretKey: os.Getenv(EnvTestS3SecretKey),
		Region:    GetEnvWithFallbacks([]string{EnvTestS3Region}, DefaultS3Region, nil),
	}
	return settings, settings.Endpoint != "" && settings.Bucket != ""
}
