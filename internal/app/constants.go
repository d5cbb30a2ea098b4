package app

const (
	Name           = "parley"
	SourceURL      = "https://git.sr.ht/~parley/parley-go"
	ConfigFilename = "config.json"
	DBFilename     = "app.db"
	LogFilename    = "app.log"
)
