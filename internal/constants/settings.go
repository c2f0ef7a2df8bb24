package constants

// Backend names a key-value store implementation.
type Backend string

// JournalScope controls whether journal entries are counted per user.
type JournalScope string

const (
	BackendSQLite   Backend = "sqlite"
	BackendJSON     Backend = "json"
	BackendPostgres Backend = "postgres"

	// JournalScopeGlobal counts every entry regardless of who wrote it.
	JournalScopeGlobal JournalScope = "global"
	// JournalScopeUser stamps entries with the author and counts only theirs.
	JournalScopeUser JournalScope = "user"

	DefaultBackend      = BackendSQLite
	DefaultJournalScope = JournalScopeGlobal

	// Environment variables
	EnvProfile      = "TAROT_PROFILE"
	EnvBackend      = "TAROT_BACKEND"
	EnvDebug        = "TAROT_DEBUG"
	EnvJournalScope = "TAROT_JOURNAL_SCOPE"
	EnvDBConnection = "TAROT_DB_CONNECTION"
	EnvTimezone     = "TAROT_TIMEZONE"
	EnvProfileName  = "TAROT_PROFILE_NAME"
	EnvPassword     = "TAROT_PASSWORD"
)
