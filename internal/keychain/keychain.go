package keychain

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "rtuservicebot"

// TokenAccount is the keychain account holding the Telegram bot token.
const TokenAccount = "telegram-bot-token"

// ErrNotFound is returned when the keychain has no entry for an account.
var ErrNotFound = keyring.ErrNotFound

// Get retrieves a secret from the system keychain.
func Get(account string) (string, error) {
	secret, err := keyring.Get(serviceName, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	return secret, err
}

// Set stores a secret in the system keychain.
func Set(account, value string) error {
	return keyring.Set(serviceName, account, value)
}

// Delete removes a secret from the system keychain.
func Delete(account string) error {
	return keyring.Delete(serviceName, account)
}
