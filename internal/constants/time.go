package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimestampFormat matches the ISO strings written by browsers' Date.toISOString.
	TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

	// DisplayFormat is used when printing timestamps to the terminal
	DisplayFormat = "2006-01-02 15:04"
)
