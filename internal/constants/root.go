package constants

const (
	AppName            = "tarot"
	DefaultKeyringUser = "database-connection"
	DefaultProfilePath = "~/.config/tarot/profile.db"
	Version            = "v0.3.0"

	// Storage keys. Each repository owns exactly one key.
	KeyUsers       = "tarot_users"
	KeyCurrentUser = "tarot_current_user"
	KeyReadings    = "tarot_readings"
	KeyJournal     = "journal_entries"

	// MaxValueBytes mirrors the per-origin localStorage quota of common browsers.
	MaxValueBytes = 5 * 1024 * 1024

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tarot-"
	BackupFileSuffix = ".db"

	// Log constants
	LogDirName  = "logs"
	LogFileName = "tarot.log"

	// Journal constants
	MaxJournalTitleLen = 100

	// Notifier constants
	PeerDirName         = "run"
	PeerFileSuffix      = ".pid"
	WatchDebounceMillis = 100
)
