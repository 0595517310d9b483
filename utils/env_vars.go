package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

type envValue interface {
	string | int | bool | time.Duration
}

// GetEnv reads an environment variable, falling back to defaultValue when it is unset or
// empty. It panics on values that cannot be parsed to T.
func GetEnv[T envValue](envVarName string, defaultValue T) T {
	value, ok := os.LookupEnv(envVarName)
	if !ok || value == "" {
		return defaultValue
	}
	parsed, err := parseEnv[T](value)
	if err != nil {
		panic(fmt.Sprintf("Environment variable %s is not valid: %s", envVarName, err))
	}
	return parsed
}

func GetRequiredEnv[T envValue](envVarName string) T {
	value, ok := os.LookupEnv(envVarName)
	if !ok || value == "" {
		log.Fatalf("%s environment variable is required", envVarName)
	}
	parsed, err := parseEnv[T](value)
	if err != nil {
		log.Fatalf("%s environment variable is not valid: %s", envVarName, err)
	}
	return parsed
}

func parseEnv[T envValue](value string) (T, error) {
	var out T
	switch p := any(&out).(type) {
	case *string:
		*p = value
	case *int:
		i, err := strconv.Atoi(value)
		if err != nil {
			return out, fmt.Errorf("'%s' is not an integer", value)
		}
		*p = i
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return out, fmt.Errorf("'%s' cannot be converted to bool", value)
		}
		*p = b
	case *time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return out, fmt.Errorf("'%s' is not a duration", value)
		}
		*p = d
	}
	return out, nil
}
