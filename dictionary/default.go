package dictionary

import (
	_ "embed"
	"sync"

	ftdc "github.com/frozenpine/ftdc4go"
)

//go:embed dict.yaml
var builtin []byte

var (
	defaultOnce sync.Once
	defaultReg  *ftdc.Registry
)

// Default returns the built-in FTD data dictionary. The dictionary is
// parsed once on first use and shared afterwards, a parse failure of the
// embedded source is a build defect and panics.
func Default() *ftdc.Registry {
	defaultOnce.Do(func() {
		registry, err := LoadBytes(builtin)
		if err != nil {
			panic(err)
		}

		defaultReg = registry
	})

	return defaultReg
}
