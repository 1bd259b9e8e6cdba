package version

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

type Info struct {
	Version string `json:"version"`
}

var (
	once   sync.Once
	cached Info
)

// Load reads version.json next to the binary, once.
func Load() Info {
	once.Do(func() {
		cached = Info{Version: "0.0.0"}
		data, err := os.ReadFile("version.json")
		if err != nil {
			log.Printf("warning: could not read version.json: %v", err)
			return
		}
		if err := json.Unmarshal(data, &cached); err != nil {
			log.Printf("warning: could not parse version.json: %v", err)
			cached = Info{Version: "0.0.0"}
		}
	})
	return cached
}

// Version returns the loaded version string.
func Version() string {
	return Load().Version
}
