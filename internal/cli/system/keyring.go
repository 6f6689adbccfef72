package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/keyring"
	"github.com/julianstephens/dayscore/internal/remote"
)

// KeyringSetCmd stores the remote connection string (or the remote user id)
// in the OS keyring.
type KeyringSetCmd struct {
	Value  string `arg:"" help:"PostgreSQL connection string, or the user id with --user-id."`
	UserID bool   `help:"Store the remote user id instead of the connection string."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if cmd.UserID {
		if err := keyring.Set(keyring.AccountUserID, cmd.Value); err != nil {
			return err
		}
		fmt.Println("✓ Remote user id stored successfully in OS keyring")
		return nil
	}

	if err := remote.ValidateConnString(cmd.Value); err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}
	if remote.HasEmbeddedPassword(cmd.Value) {
		fmt.Println("⚠️  Warning: Connection string contains an embedded password.")
		fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
		fmt.Println("   If you prefer to keep passwords separate, use .pgpass instead.")
	}

	if err := keyring.Set(keyring.AccountRemoteDSN, cmd.Value); err != nil {
		return err
	}

	fmt.Println("✓ Connection string stored successfully in OS keyring")
	fmt.Println("  dayscore will sync to it when DAYSCORE_REMOTE_DSN and --remote are unset")
	return nil
}

type KeyringDeleteCmd struct {
	UserID bool `help:"Delete the stored remote user id instead of the connection string."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	account, what := keyring.AccountRemoteDSN, "connection string"
	if cmd.UserID {
		account, what = keyring.AccountUserID, "remote user id"
	}

	if err := keyring.Delete(account); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", what)
		}
		return err
	}
	fmt.Printf("✓ %s deleted from OS keyring\n", capitalize(what))
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}
	fmt.Println("✓ OS keyring is available")

	dsn, err := keyring.GetRemoteDSN()
	switch {
	case err == nil:
		fmt.Printf("✓ Connection string is stored in keyring: %s\n", remote.Redact(dsn))
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("ℹ No connection string stored in keyring")
	default:
		return err
	}

	userID, err := keyring.GetUserID()
	switch {
	case err == nil:
		fmt.Printf("✓ Remote user id is stored in keyring: %s\n", userID)
	case errors.Is(err, keyring.ErrNotFound):
		fmt.Println("ℹ No remote user id stored in keyring")
	default:
		return err
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
