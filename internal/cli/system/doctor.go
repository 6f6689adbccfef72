package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/dayscore/internal/backup"
	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/storage"
	"github.com/julianstephens/dayscore/internal/validation"
)

// skipError marks a check that does not apply to this setup.
type skipError struct{ reason string }

func (e skipError) Error() string { return "skipped: " + e.reason }

type DoctorCmd struct {
	Timeout time.Duration `help:"Timeout for the remote connection check." default:"5s"`
}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warnOnly checks never fail the diagnostics.
	warnOnly bool
	// needsDB checks are skipped when the database is not reachable.
	needsDB bool
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	checks := []check{
		{name: "Database reachable", run: checkDBReachable},
		{name: "Schema version", run: checkSchemaVersion, needsDB: true},
		{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
		{name: "Data validation", run: checkValidation, needsDB: true},
		{name: "Working day current", run: checkRolloverDue, needsDB: true, warnOnly: true},
		{name: "Clock/timezone", run: checkClockTimezone},
		{name: "Remote user", run: checkRemoteUser},
		{name: "Remote reachable", run: cmd.checkRemoteReachable},
	}

	hasError := false
	dbReachable := false
	for i, c := range checks {
		var skip skipError
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case errors.As(err, &skip):
			fmt.Printf("⊘ %s: SKIPPED (%s)\n", c.name, skip.reason)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func skipped(reason string) error {
	return skipError{reason: reason}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if _, err := ctx.Store.Values(); err != nil {
		return fmt.Errorf("failed to read local state: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	migrator, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := migrator.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d). Please upgrade dayscore", current, latest)
	}
	if current < latest {
		return fmt.Errorf("database schema version (%d) is behind latest (%d). Run '%s migrate'", current, latest, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if storage.IsJSONPath(ctx.Store.GetConfigPath()) {
		return skipped("JSON storage")
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s. Run '%s backup create'", mgr.GetBackupDir(), constants.AppName)
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("latest backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

func validateState(ctx *cli.Context) (validation.ValidationResult, error) {
	s, err := ctx.Tracker.State()
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to load state: %w", err)
	}
	return validation.New(ctx.Tracker.Location()).ValidateState(s, ctx.Tracker.Now()), nil
}

func checkValidation(ctx *cli.Context) error {
	result, err := validateState(ctx)
	if err != nil {
		return err
	}
	var problems int
	for _, c := range result.Conflicts {
		if c.Type != validation.ConflictRolloverDue {
			problems++
		}
	}
	if problems > 0 {
		return fmt.Errorf("found %d conflict(s). Run '%s validate' for details", problems, constants.AppName)
	}
	return nil
}

func checkRolloverDue(ctx *cli.Context) error {
	result, err := validateState(ctx)
	if err != nil {
		return err
	}
	for _, c := range result.Conflicts {
		if c.Type == validation.ConflictRolloverDue {
			return errors.New(c.Description)
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Tracker.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock reads %s", now.Format(time.RFC3339))
	}
	loc := ctx.Tracker.Location()
	if loc == nil {
		return errors.New("no timezone configured")
	}
	return nil
}

func checkRemoteUser(ctx *cli.Context) error {
	if ctx.Ping == nil {
		return skipped("no remote configured")
	}
	if ctx.UserID == "" {
		return fmt.Errorf("no remote user id; set DAYSCORE_USER_ID, --user-id or '%s keyring set --user-id'", constants.AppName)
	}
	return nil
}

func (cmd *DoctorCmd) checkRemoteReachable(ctx *cli.Context) error {
	if ctx.Ping == nil {
		return skipped("no remote configured")
	}
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := ctx.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to reach %s: %w", ctx.Remote, err)
	}
	return nil
}
