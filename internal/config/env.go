package config

import (
	"os"
	"strconv"
	"time"
)

// GetEnvString returns the variable, or fallback when it is unset or empty.
func GetEnvString(env, fallback string) string {
	envString := os.Getenv(env)
	if envString == "" {
		return fallback
	}
	return envString
}

// GetEnvBool returns the parsed variable, or fallback when it does not
// parse.
func GetEnvBool(env string, fallback bool) bool {
	envBool, err := strconv.ParseBool(os.Getenv(env))
	if err != nil {
		return fallback
	}
	return envBool
}

// GetEnvInt returns the parsed variable, or fallback when it does not parse.
func GetEnvInt(env string, fallback int) int {
	envInt, err := strconv.Atoi(os.Getenv(env))
	if err != nil {
		return fallback
	}
	return envInt
}

// GetEnvInt64 is GetEnvInt for int64 values.
func GetEnvInt64(env string, fallback int64) int64 {
	envInt64, err := strconv.ParseInt(os.Getenv(env), 10, 64)
	if err != nil {
		return fallback
	}
	return envInt64
}

// GetEnvFloat64 is GetEnvInt for float64 values.
func GetEnvFloat64(env string, fallback float64) float64 {
	envFloat64, err := strconv.ParseFloat(os.Getenv(env), 64)
	if err != nil {
		return fallback
	}
	return envFloat64
}

// GetEnvDuration accepts time.ParseDuration syntax ("30s", "2m").
func GetEnvDuration(env string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(env))
	if err != nil {
		return fallback
	}
	return d
}
