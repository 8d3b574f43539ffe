package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	SessionSecret string
	ServerPort    string
	Environment   string
	Debug         bool

	// Shared app password. If AppPasswordHash is set it is a bcrypt hash and
	// takes precedence over the plain AppPassword.
	AppPassword     string
	AppPasswordHash string

	// Indexer (browse API)
	IndexerURL        string
	IndexerAPIKey     string
	IndexerCategories string

	// Category IDs encode the language guarantee of a release. These were
	// hardcoded in earlier iterations; kept configurable since they are
	// tracker-specific.
	EnglishOnlyCategories      []int
	GermanGuaranteedCategories []int

	TMDBAPIKey string

	DelugeHost        string
	DelugePort        string
	DelugePassword    string
	MovieDownloadPath string
	TVDownloadPath    string

	JellyfinHost       string
	JellyfinPort       string
	JellyfinAPIKey     string
	JellyfinScanTaskID string

	SynologyHost     string
	SynologyPort     string
	SynologyUsername string
	SynologyPassword string
	SynologyVolume   string
}

func Load() *Config {
	// Best effort; real env vars win over .env contents
	_ = godotenv.Load()

	return &Config{
		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production"),
		ServerPort:    getEnv("PORT", "5005"),
		Environment:   getEnv("ENV", "development"),
		Debug:         getEnv("DEBUG", "false") == "true",

		AppPassword:     getEnv("APP_PASSWORD", ""),
		AppPasswordHash: getEnv("APP_PASSWORD_HASH", ""),

		IndexerURL:        getEnv("TS_API_URL", ""),
		IndexerAPIKey:     getEnv("TS_API_KEY", ""),
		IndexerCategories: getEnv("TS_CATEGORIES", "55,57"),

		EnglishOnlyCategories:      getEnvIntList("TS_ENGLISH_CATEGORIES", "37,57"),
		GermanGuaranteedCategories: getEnvIntList("TS_GERMAN_CATEGORIES", "9,55"),

		TMDBAPIKey: getEnv("TMDB_API_KEY", ""),

		DelugeHost:        getEnv("DELUGE_HOST", "localhost"),
		DelugePort:        getEnv("DELUGE_PORT", "8112"),
		DelugePassword:    getEnv("DELUGE_PASSWORD", ""),
		MovieDownloadPath: getEnv("MOVIE_DOWNLOAD_PATH", "/downloads/movies"),
		TVDownloadPath:    getEnv("TV_DOWNLOAD_PATH", "/downloads/tv"),

		JellyfinHost:       getEnv("JELLYFIN_HOST", "localhost"),
		JellyfinPort:       getEnv("JELLYFIN_PORT", "8920"),
		JellyfinAPIKey:     getEnv("JELLYFIN_API_KEY", ""),
		JellyfinScanTaskID: getEnv("JELLYFIN_SCAN_TASK_ID", "7738148ffcd07979c7ceb148e06b3aed"),

		SynologyHost:     getEnv("SYNOLOGY_HOST", ""),
		SynologyPort:     getEnv("SYNOLOGY_PORT", "5001"),
		SynologyUsername: getEnv("SYNOLOGY_USERNAME", ""),
		SynologyPassword: getEnv("SYNOLOGY_PASSWORD", ""),
		SynologyVolume:   getEnv("SYNOLOGY_VOLUME", "volume_3"),
	}
}

// DelugeURL returns the base URL of the Deluge web UI JSON endpoint.
func (c *Config) DelugeURL() string {
	return "http://" + c.DelugeHost + ":" + c.DelugePort + "/json"
}

// JellyfinURL returns the base URL of the Jellyfin server.
func (c *Config) JellyfinURL() string {
	return "https://" + c.JellyfinHost + ":" + c.JellyfinPort
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntList(key, defaultValue string) []int {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		if id, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
