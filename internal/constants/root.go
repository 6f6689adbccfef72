package constants

import "time"

const (
	AppName            = "dayscore"
	DefaultKeyringUser = "remote-connection"
	DefaultConfigPath  = "~/.config/dayscore/dayscore.db"
	Version            = "v0.3.0"

	// DateFormat is the day-key format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Local persisted keys. Every value is a JSON document.
	KeyDailyHistory    = "dailyHistory"
	KeyDailyIntake     = "dailyIntake"
	KeyRecentMeals     = "recentMeals"
	KeyDailyIntakeDate = "dailyIntakeDate"
	KeyLastSavedDate   = "lastSavedDate"
	KeyGoals           = "goals"
	KeyWorkoutHistory  = "workoutHistory"

	// Remote defaults
	DefaultRemoteTable = "users"
	DefaultSyncTimeout = 15 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "dayscore-"
	BackupFileSuffix = ".db"

	// MaxSyncAttempts bounds the local sync attempt log
	MaxSyncAttempts = 100

	// Sync attempt statuses
	SyncStatusSynced           = "synced"
	SyncStatusSkipped          = "skipped"
	SyncStatusNotAuthenticated = "not_authenticated"
	SyncStatusFailed           = "failed"
)

// StateKeys lists every local persisted key in a stable order.
var StateKeys = []string{
	KeyDailyHistory,
	KeyDailyIntake,
	KeyRecentMeals,
	KeyDailyIntakeDate,
	KeyLastSavedDate,
	KeyGoals,
	KeyWorkoutHistory,
}
