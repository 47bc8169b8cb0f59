package insight

import (
	"maps"
	"slices"

	"github.com/joho/godotenv"
)

var envExampleFiles = []string{".env.example", ".env.sample", ".env.template", ".env.dist"}

// envNames returns the variable names declared by an env template. Values
// are never kept.
func envNames(content []byte) []string {
	vars, err := godotenv.Unmarshal(string(content))
	if err != nil {
		return nil
	}
	return slices.Sorted(maps.Keys(vars))
}
