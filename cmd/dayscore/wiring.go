package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/dayscore/internal/config"
	"github.com/julianstephens/dayscore/internal/keyring"
	"github.com/julianstephens/dayscore/internal/logger"
	"github.com/julianstephens/dayscore/internal/remote"
	"github.com/julianstephens/dayscore/internal/utils"
)

// flags are the global command line values; empty means unset.
type flags struct {
	DBPath   string
	Debug    bool
	UserID   string
	Remote   string
	Timezone string
}

// credentialSource is the keyring as seen by resolve.
type credentialSource interface {
	GetRemoteDSN() (string, error)
	GetUserID() (string, error)
}

type systemKeyring struct{}

func (systemKeyring) GetRemoteDSN() (string, error) { return keyring.GetRemoteDSN() }
func (systemKeyring) GetUserID() (string, error)    { return keyring.GetUserID() }

// options is the resolved runtime configuration.
type options struct {
	DBPath     string
	Debug      bool
	UserID     string
	RemoteDSNs []string // primary first, keyring fallback last
	Location   *time.Location
}

func (o options) ConfigDir() string {
	return filepath.Dir(o.DBPath)
}

// RemoteDescription names the configured remotes with passwords masked.
func (o options) RemoteDescription() string {
	if len(o.RemoteDSNs) == 0 {
		return ""
	}
	desc := remote.Redact(o.RemoteDSNs[0])
	for _, dsn := range o.RemoteDSNs[1:] {
		desc += fmt.Sprintf(" (fallback: %s)", remote.Redact(dsn))
	}
	return desc
}

// resolve applies flag > environment > keyring > default precedence.
func resolve(cfg config.Config, f flags, creds credentialSource) (options, error) {
	var opts options

	dbPath, err := utils.ExpandHome(firstNonEmpty(f.DBPath, cfg.DBPath))
	if err != nil {
		return opts, fmt.Errorf("failed to resolve database path: %w", err)
	}
	opts.DBPath = dbPath
	opts.Debug = f.Debug || cfg.Debug

	tz := firstNonEmpty(f.Timezone, cfg.Timezone)
	if opts.Location, err = utils.LoadLocation(tz); err != nil {
		return opts, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	opts.UserID = firstNonEmpty(f.UserID, cfg.UserID)
	if opts.UserID == "" {
		opts.UserID = lookup("user id", creds.GetUserID)
	}

	explicit := firstNonEmpty(f.Remote, cfg.RemoteDSN)
	if explicit != "" {
		if remote.HasEmbeddedPassword(explicit) {
			return opts, errors.New("remote connection strings with embedded passwords are not accepted from flags or the environment; " +
				"store it with 'dayscore keyring set' or use a .pgpass file")
		}
		if err := remote.ValidateConnString(explicit); err != nil {
			return opts, err
		}
		opts.RemoteDSNs = append(opts.RemoteDSNs, explicit)
	}
	if stored := lookup("remote connection string", creds.GetRemoteDSN); stored != "" && stored != explicit {
		opts.RemoteDSNs = append(opts.RemoteDSNs, stored)
	}
	return opts, nil
}

func lookup(what string, get func() (string, error)) string {
	v, err := get()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Debug("Keyring lookup failed", "what", what, "error", err)
		}
		return ""
	}
	return strings.TrimSpace(v)
}

// buildPersister returns a Nop without remotes, one PostgresPersister for a
// single remote and a Chain that falls back in order otherwise. The returned
// func closes every pool and is safe to call more than once.
func buildPersister(dsns []string, table string) (remote.Persister, func(), error) {
	if len(dsns) == 0 {
		return remote.Nop{}, func() {}, nil
	}

	var pools []*remote.PostgresPersister
	closeAll := func() {
		for _, p := range pools {
			if err := p.Close(); err != nil {
				logger.Warn("Failed to close remote connection", "error", err)
			}
		}
		pools = nil
	}

	var chain remote.Chain
	for _, dsn := range dsns {
		p, err := remote.NewPostgresPersister(dsn, table)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("remote %s: %w", remote.Redact(dsn), err)
		}
		pools = append(pools, p)
		chain = append(chain, p)
	}
	if len(chain) == 1 {
		return chain[0], closeAll, nil
	}
	return chain, closeAll, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

// pingFunc returns a reachability check for p, or nil when p has no remote.
func pingFunc(p remote.Persister) func(context.Context) error {
	switch v := p.(type) {
	case pinger:
		return v.Ping
	case remote.Chain:
		return func(ctx context.Context) error {
			var errs []error
			for _, member := range v {
				pp, ok := member.(pinger)
				if !ok {
					continue
				}
				err := pp.Ping(ctx)
				if err == nil {
					return nil
				}
				errs = append(errs, err)
			}
			return errors.Join(errs...)
		}
	default:
		return nil
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
