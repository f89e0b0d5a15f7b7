package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const clientIDFile = "client_id"

// LoadOrCreateClientID returns the stable device identifier sent to plex.tv
// as X-Plex-Client-Identifier. It is minted once per data directory and
// reused so previously granted device authorizations stay valid.
func LoadOrCreateClientID(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}

	path := filepath.Join(dir, clientIDFile)

	if data, err := os.ReadFile(path); err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", fmt.Errorf("persist client identifier: %w", err)
	}
	return id, nil
}
