package util

import (
	"encoding/base64"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// GetEnv returns the value of the given environment variable or a fallback.
func GetEnv(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetEnvAsInt returns the given environment variable parsed as int or a fallback.
func GetEnvAsInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Failed to parse env as int, using fallback")
		return fallback
	}
	return parsed
}

// GetEnvAsBool returns the given environment variable parsed as bool or a fallback.
func GetEnvAsBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Failed to parse env as bool, using fallback")
		return fallback
	}
	return parsed
}

// GetEnvAsDuration returns the given environment variable parsed as duration or a fallback.
func GetEnvAsDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Failed to parse env as duration, using fallback")
		return fallback
	}
	return parsed
}

// GetEnvAsBase64 returns the given environment variable decoded from base64 or a fallback.
func GetEnvAsBase64(key string, fallback []byte) []byte {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		log.Warn().Str("key", key).Msg("Failed to decode env as base64, using fallback")
		return fallback
	}
	return decoded
}
