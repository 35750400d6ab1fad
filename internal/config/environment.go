package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnvFile loads a .env file into the process environment before viper
// reads it. A missing file is not an error; the returned bool reports whether
// anything was loaded.
func LoadEnvFile(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
