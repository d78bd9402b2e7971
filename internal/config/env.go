package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Unparsable values keep the current setting and log a warning.

func getEnvString(key, current string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return current
}

func getEnvList(key string, current []string) []string {
	if value := os.Getenv(key); value != "" {
		if list := splitList(value); len(list) > 0 {
			return list
		}
	}
	return current
}

func getEnvBool(key string, current bool) bool {
	return getEnvParsed(key, current, strconv.ParseBool)
}

func getEnvInt(key string, current int) int {
	return getEnvParsed(key, current, strconv.Atoi)
}

func getEnvUint64(key string, current uint64) uint64 {
	return getEnvParsed(key, current, func(v string) (uint64, error) {
		return strconv.ParseUint(v, 10, 64)
	})
}

func getEnvDuration(key string, current time.Duration) time.Duration {
	return getEnvParsed(key, current, time.ParseDuration)
}

func getEnvParsed[T any](key string, current T, parse func(string) (T, error)) T {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return current
	}
	parsed, err := parse(value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Str("value", value).Msg("ignoring invalid environment value")
		return current
	}
	return parsed
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
