package substack

import (
	"os"
	"strconv"
)

func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

// GetEnvBool reports whether key holds a true value as understood by
// [strconv.ParseBool]. Unset or unparsable values yield defaultValue.
func GetEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}

	return value
}
