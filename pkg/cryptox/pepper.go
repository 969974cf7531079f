package cryptox

import (
	"os"
	"strings"
	"sync"
)

var (
	pepperOnce sync.Once
	pepper     string
	pepperFile string
)

// SetPepperPath configures an optional pepper file mixed into password
// hashes. Must be called before the first hash/verify. An empty path
// disables the pepper entirely.
func SetPepperPath(file string) {
	pepperFile = file
}

// GetPepper returns the configured pepper, or "" when none is set.
// The file is read once; a missing file is treated as no pepper.
func GetPepper() string {
	pepperOnce.Do(func() {
		if pepperFile == "" {
			return
		}
		data, err := os.ReadFile(pepperFile)
		if err != nil {
			return
		}
		pepper = strings.TrimSpace(string(data))
	})
	return pepper
}
