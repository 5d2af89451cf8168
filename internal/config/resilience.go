package config

import (
	"time"

	"sheet_display/internal/retry"
)

// ResilienceConfig bounds the retries of operations whose failure aborts a
// whole reconciliation pass.
type ResilienceConfig struct {
	DirectoryRead  retry.Config `mapstructure:"directory_read"`
	CheckpointSave retry.Config `mapstructure:"checkpoint_save"`
}

var DefaultResilienceConfig = ResilienceConfig{
	DirectoryRead: retry.Config{
		MaxRetries: 2,
		BaseDelay:  2 * time.Second,
		MaxDelay:   15 * time.Second,
		Timeout:    30 * time.Second,
	},
	CheckpointSave: retry.Config{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Timeout:    10 * time.Second,
	},
}
