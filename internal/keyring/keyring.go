package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/zalando/go-keyring"
)

// Accounts stored under the dayscore keyring service.
const (
	AccountRemoteDSN = constants.DefaultKeyringUser
	AccountUserID    = "remote-user-id"
)

var (
	// ErrNotFound is returned when no credentials are found in the keyring
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// Get retrieves the secret stored for account.
// Returns ErrNotFound if nothing is stored.
func Get(account string) (string, error) {
	value, err := keyring.Get(constants.AppName, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

// Set stores value for account, replacing any previous value.
func Set(account, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", account)
	}
	if err := keyring.Set(constants.AppName, account, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", account, err)
	}
	return nil
}

// Delete removes the secret stored for account.
func Delete(account string) error {
	err := keyring.Delete(constants.AppName, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", account, err)
	}
	return nil
}

// GetRemoteDSN retrieves the remote database connection string.
func GetRemoteDSN() (string, error) { return Get(AccountRemoteDSN) }

// GetUserID retrieves the remote user id that scopes every remote update.
func GetUserID() (string, error) { return Get(AccountUserID) }

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
