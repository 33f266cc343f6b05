// Package safety implements the proof-of-control gate for destructive
// probes. A probe may only fire when the operator both enabled
// destructive mode and supplied the exact token persisted in the run
// directory, proving they control the scanned asset.
package safety

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vulnpipe/vulnpipe/internal/storage"
)

// Context carries the operator's destructive-mode inputs. It is built
// once at the process boundary and passed down explicitly; nothing in
// the probe path reads the environment.
type Context struct {
	// Enabled is the operator's destructive-mode flag.
	Enabled bool
	// SuppliedToken is the proof-of-control token the operator provided.
	SuppliedToken string
}

// GenerateToken derives a fresh proof-of-control token bound to a run
// directory. The token is unguessable; possession proves the holder was
// given it out of band by whoever controls the run.
func GenerateToken(runDir string) (string, error) {
	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate token nonce: %w", err)
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s:%d:", runDir, time.Now().UnixNano())
	h.Write(nonce)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// PersistToken writes the token into the run directory. The restrictive
// mode is best effort; on filesystems that ignore it the write still
// succeeds.
func PersistToken(runDir, token string) error {
	if err := os.WriteFile(storage.ProofPath(runDir), []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to persist proof token: %w", err)
	}
	return nil
}

// LoadToken reads the persisted token for a run. Any failure, including
// an absent file, reads as "no token": the gate then denies.
func LoadToken(runDir string) (string, bool) {
	data, err := os.ReadFile(storage.ProofPath(runDir))
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}

// Allowed decides whether destructive probing may proceed for a run.
// Both conditions are required: destructive mode enabled and a supplied
// token byte-equal to the persisted one. Every failure is a hard deny;
// there is no override path.
func (c Context) Allowed(runDir string) bool {
	if !c.Enabled {
		return false
	}
	persisted, ok := LoadToken(runDir)
	if !ok {
		return false
	}
	return c.SuppliedToken == persisted
}
