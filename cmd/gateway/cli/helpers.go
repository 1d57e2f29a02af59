package cli

import (
	"time"

	"github.com/tablegate/tablegate/internal/config"
)

// parseDuration wraps time.ParseDuration, tolerating an empty string as
// "not configured" rather than an error.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

func saveConfig(f *config.File) error {
	return f.Save(cfgFile)
}
