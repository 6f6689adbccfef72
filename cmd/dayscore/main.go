package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/dayscore/internal/cli"
	"github.com/julianstephens/dayscore/internal/cli/backups"
	"github.com/julianstephens/dayscore/internal/cli/day"
	"github.com/julianstephens/dayscore/internal/cli/history"
	"github.com/julianstephens/dayscore/internal/cli/remotesync"
	"github.com/julianstephens/dayscore/internal/cli/system"
	"github.com/julianstephens/dayscore/internal/config"
	"github.com/julianstephens/dayscore/internal/constants"
	"github.com/julianstephens/dayscore/internal/errors"
	"github.com/julianstephens/dayscore/internal/logger"
	"github.com/julianstephens/dayscore/internal/storage"
	"github.com/julianstephens/dayscore/internal/tracker"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Local database path (*.json selects the JSON file store). Overrides DAYSCORE_DB." type:"path"`
	Debug    bool   `help:"Mirror logs to stderr at debug level."`
	UserID   string `help:"Remote user id. Overrides DAYSCORE_USER_ID and the keyring."`
	Remote   string `help:"PostgreSQL connection string for remote sync. Passwords are not accepted here; use the keyring or .pgpass."`
	Timezone string `help:"IANA timezone that defines day boundaries. Overrides DAYSCORE_TIMEZONE."`
	EnvFile  string `help:"Dotenv file loaded before reading the environment." default:".env"`

	Init     system.InitCmd     `cmd:"" help:"Initialize dayscore storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Validate system.ValidateCmd `cmd:"" help:"Validate local state for conflicts."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive ledger browser." default:"1"`
	DebugCmd system.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`

	Today  day.TodayCmd `cmd:"" help:"Show the working day and its projected score."`
	Intake struct {
		Add day.IntakeAddCmd `cmd:"" help:"Add intake and meals to the working day." default:"withargs"`
	} `cmd:"" help:"Record intake."`
	Goals struct {
		Show day.GoalsShowCmd `cmd:"" help:"Show daily goals." default:"1"`
		Set  day.GoalsSetCmd  `cmd:"" help:"Change daily goals."`
	} `cmd:"" help:"Manage daily goals."`
	Workout struct {
		Add day.WorkoutAddCmd `cmd:"" help:"Record a workout." default:"withargs"`
	} `cmd:"" help:"Record workouts."`
	Score    day.ScoreCmd    `cmd:"" help:"Compute a score without recording anything."`
	Rollover day.RolloverCmd `cmd:"" help:"Archive the working day and start a new one."`
	Repair   day.RepairCmd   `cmd:"" help:"Archive explicit intake for a past day and reset the working day."`

	History struct {
		List    history.ListCmd    `cmd:"" help:"List archived days." default:"1"`
		Show    history.ShowCmd    `cmd:"" help:"Show one archived day."`
		Restore history.RestoreCmd `cmd:"" help:"Restore day scores into the ledger."`
		Export  history.ExportCmd  `cmd:"" help:"Export the ledger as JSON."`
		Import  history.ImportCmd  `cmd:"" help:"Import an exported ledger. Newer local days win unless --overwrite is given."`
	} `cmd:"" help:"Inspect and repair the day ledger."`

	Sync struct {
		Push   remotesync.PushCmd   `cmd:"" help:"Push the full local snapshot to the remote."`
		Status remotesync.StatusCmd `cmd:"" help:"Show recent sync attempts." default:"1"`
	} `cmd:"" help:"Remote sync."`

	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`

	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the remote connection string or user id in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Delete a stored credential from the OS keyring."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check the OS keyring." default:"1"`
	} `cmd:"" help:"Manage credentials in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Daily nutrition score tracker with a repairable day ledger"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.EnvFile)
	if err != nil {
		errors.Fatal(err)
	}
	opts, err := resolve(cfg, flags{
		DBPath:   CLI.Config,
		Debug:    CLI.Debug,
		UserID:   CLI.UserID,
		Remote:   CLI.Remote,
		Timezone: CLI.Timezone,
	}, systemKeyring{})
	if err != nil {
		errors.Fatal(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     opts.Debug,
		ConfigDir: opts.ConfigDir(),
		Level:     cfg.LogLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store := storage.New(opts.DBPath)
	persister, closeRemote, err := buildPersister(opts.RemoteDSNs, cfg.RemoteTable)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := &cli.Context{
		Store:  store,
		UserID: opts.UserID,
		Remote: opts.RemoteDescription(),
		Ping:   pingFunc(persister),
	}
	appCtx.Tracker = tracker.New(tracker.Options{
		Store:         store,
		Persister:     persister,
		UserID:        opts.UserID,
		Location:      opts.Location,
		Timeout:       cfg.SyncTimeout,
		BeforeRewrite: appCtx.BackupBeforeRewrite,
	})

	// Load the store before running the command (Init command will handle its own loading)
	if ctx.Selected() != nil && ctx.Selected().Name != "init" && !isKeyringCommand(ctx) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	closeRemote()
	store.Close()
	if err != nil {
		errors.Fatal(err)
	}
}

func isKeyringCommand(ctx *kong.Context) bool {
	return strings.HasPrefix(ctx.Command(), "keyring")
}
