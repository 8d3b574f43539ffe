package services

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"fetcharr/config"
)

// VerifyPassword checks the shared app password. A configured bcrypt hash
// wins over the plain-text variant; with neither set, access is denied.
func VerifyPassword(cfg *config.Config, password string) bool {
	if cfg.AppPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.AppPasswordHash), []byte(password)) == nil
	}
	if cfg.AppPassword != "" {
		return subtle.ConstantTimeCompare([]byte(cfg.AppPassword), []byte(password)) == 1
	}
	return false
}
