package config

const (
	defaultLibraryDir            = "~/media"
	defaultLogDir                = "~/.local/share/marquee/logs"
	defaultTMDBBaseURL           = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL      = "https://image.tmdb.org/t/p/"
	defaultTMDBLanguage          = "en-US"
	defaultFanartBaseURL         = "https://webservice.fanart.tv/v3"
	defaultTVDBBaseURL           = "https://api4.thetvdb.com/v4"
	defaultIMDbDatasetPath       = "~/.local/share/marquee/imdb.sqlite"
	defaultStoreDriver           = StoreDriverSQLite
	defaultStoreDSN              = "~/.local/share/marquee/library.db"
	defaultFFprobeBinary         = "ffprobe"
	defaultMP4InfoBinary         = "mp4info"
	defaultMaxParallelTitles     = 4
	defaultRequestTimeoutSeconds = 10
	defaultRequestsPerSecond     = 20
	defaultImageConfidence       = 0.9
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Supported store drivers.
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			ImageBaseURL: defaultTMDBImageBaseURL,
			Language:     defaultTMDBLanguage,
		},
		Fanart: Fanart{
			BaseURL: defaultFanartBaseURL,
		},
		TVDB: TVDB{
			BaseURL: defaultTVDBBaseURL,
		},
		IMDb: IMDb{
			DatasetPath: defaultIMDbDatasetPath,
		},
		Store: Store{
			Driver: defaultStoreDriver,
			DSN:    defaultStoreDSN,
		},
		Tools: Tools{
			FFprobe: defaultFFprobeBinary,
			MP4Info: defaultMP4InfoBinary,
		},
		Workflow: Workflow{
			MaxParallelTitles:     defaultMaxParallelTitles,
			RequestTimeoutSeconds: defaultRequestTimeoutSeconds,
			RequestsPerSecond:     defaultRequestsPerSecond,
			ImageConfidence:       defaultImageConfidence,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
