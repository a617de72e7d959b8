package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// InitKeys builds the token KeyManager.
//
// With ACCOUNTS_SIGNING_KEY_FILE set the Ed25519 key is read from that PEM
// file, or generated into it on first start, so tokens survive restarts.
// Otherwise a key is generated in memory and every restart invalidates
// outstanding tokens.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Issuer: cfg.Issuer,
		TTL:    cfg.TokenTTL,
	}

	if cfg.SigningKeyFile == "" {
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		logger.Warn("using ephemeral signing key, tokens will not survive a restart")
		return km, nil
	}

	key, err := cryptox.LoadOrGenerateEd25519Key(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("load signing key: %w", err)
	}
	km, err := jwtx.NewKeyManagerFromKeys(opts, key)
	if err != nil {
		return nil, err
	}
	logger.Info("signing key loaded", "path", cfg.SigningKeyFile)
	return km, nil
}
