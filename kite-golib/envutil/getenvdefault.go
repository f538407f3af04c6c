package envutil

import (
	"os"
	"strconv"

	"github.com/kiteco/activeself/kite-golib/errors"
)

// GetenvDefault gets the value of an environment variable, or returns the
// specified default value if that variable is not set.
func GetenvDefault(name, defaultValue string) string {
	val, found := os.LookupEnv(name)
	if !found {
		return defaultValue
	}
	return val
}

// GetenvDefaultInt gets an environment variable as an int, or else returns the default.
// A set but malformed value is an error.
func GetenvDefaultInt(name string, defaultVal int) (int, error) {
	val, found := os.LookupEnv(name)
	if !found {
		return defaultVal, nil
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal, errors.Wrapf(err, "environment variable %s should be an integer", name)
	}
	return intVal, nil
}

// GetenvDefaultFloat is GetenvDefaultInt for float64 values.
func GetenvDefaultFloat(name string, defaultVal float64) (float64, error) {
	val, found := os.LookupEnv(name)
	if !found {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal, errors.Wrapf(err, "environment variable %s should be a number", name)
	}
	return f, nil
}
