package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./chumash.db"

	// DefaultContentDir holds the bundled sefarim and the sefaria/ commentary files
	DefaultContentDir = "./data"
)
