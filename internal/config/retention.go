package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// HistoryRetentionConfig controls pruning of the run history database.
type HistoryRetentionConfig struct {
	// RetentionDays is how long history events are kept.
	// Default: 90, Range: 0-3650. 0 keeps events forever.
	RetentionDays int `yaml:"retention_days"`

	// CleanupBatchSize is the number of events deleted per statement.
	// Default: 1000, Range: 100-10000
	CleanupBatchSize int `yaml:"cleanup_batch_size"`
}

// DefaultHistoryRetentionConfig returns the default retention configuration.
func DefaultHistoryRetentionConfig() HistoryRetentionConfig {
	return HistoryRetentionConfig{
		RetentionDays:    90,
		CleanupBatchSize: 1000,
	}
}

// Validate checks if the configuration has valid values
func (c HistoryRetentionConfig) Validate() error {
	if c.RetentionDays < 0 || c.RetentionDays > 3650 {
		return fmt.Errorf("retention_days must be between 0 and 3650 (got %d)", c.RetentionDays)
	}
	if c.CleanupBatchSize < 100 || c.CleanupBatchSize > 10000 {
		return fmt.Errorf("cleanup_batch_size must be between 100 and 10000 (got %d)", c.CleanupBatchSize)
	}
	return nil
}

// Enabled reports whether old events should be pruned at all.
func (c HistoryRetentionConfig) Enabled() bool {
	return c.RetentionDays > 0
}

// Retention returns the retention period as a time.Duration
func (c HistoryRetentionConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// String returns a human-readable representation of the config
func (c HistoryRetentionConfig) String() string {
	return fmt.Sprintf("HistoryRetentionConfig{RetentionDays: %d, CleanupBatchSize: %d}",
		c.RetentionDays, c.CleanupBatchSize)
}

// applyEnv reads WGT_HISTORY_RETENTION_DAYS and WGT_HISTORY_CLEANUP_BATCH_SIZE.
func (c *HistoryRetentionConfig) applyEnv() error {
	if err := parseEnvInt("WGT_HISTORY_RETENTION_DAYS", &c.RetentionDays); err != nil {
		return err
	}
	return parseEnvInt("WGT_HISTORY_CLEANUP_BATCH_SIZE", &c.CleanupBatchSize)
}

// parseEnvInt parses an int from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}
