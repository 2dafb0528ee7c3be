package process

import (
	"fmt"
	"os"
	"sort"

	"github.com/joho/godotenv"
)

// LoadEnv returns the parent environment extended with the variables
// defined in the given dotenv files. Later files win over earlier ones,
// and every file wins over the inherited environment.
func LoadEnv(files ...string) ([]string, error) {
	vars := make(map[string]string)
	for _, file := range files {
		fileVars, err := godotenv.Read(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// exec uses the last value for duplicate keys
	env := os.Environ()
	for _, k := range keys {
		env = append(env, k+"="+vars[k])
	}
	return env, nil
}
