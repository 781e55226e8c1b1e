package config

import (
	"os"
	"strconv"
	"strings"
)

// Service holds process-level settings read from the environment.
type Service struct {
	Environment string
	Port        string
	GRPCPort    string
	LogLevel    string
	LogFormat   string
	LeagueFile  string

	SnapshotDriver string
	SnapshotPath   string
	SQLiteFile     string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKey       string

	NATSURL     string
	NATSSubject string

	ClickHouseAddr     string
	ClickHouseDB       string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseSeason   int
	ProjectionsFile    string

	TelegramToken  string
	TelegramChatID int64

	AuthentikBaseURL      string
	AuthentikClientID     string
	AuthentikClientSecret string
	AuthentikRedirectURL  string

	CORSOrigins []string
	TeamNames   []string
}

// IsDevelopment reports whether embedded/mock collaborators should be used.
func (s Service) IsDevelopment() bool {
	return s.Environment == "" || s.Environment == "development"
}

// LoadService reads the service configuration from environment variables.
func LoadService() Service {
	return Service{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "3000"),
		GRPCPort:    getEnv("GRPC_PORT", "50051"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),
		LeagueFile:  getEnv("LEAGUE_CONFIG", ""),

		SnapshotDriver: getEnv("SNAPSHOT_DRIVER", "file"),
		SnapshotPath:   getEnv("SNAPSHOT_PATH", "data/draft_state/current.json"),
		SQLiteFile:     getEnv("SQLITE_FILE", "draft.sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisKey:       getEnv("REDIS_KEY", "auction:draft_state"),

		NATSURL:     getEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: getEnv("NATS_SUBJECT", "draft.events"),

		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:       getEnv("CLICKHOUSE_DB", "default"),
		ClickHouseUser:     getEnv("CLICKHOUSE_USER", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),
		ClickHouseSeason:   getEnvInt("CLICKHOUSE_SEASON", 0),
		ProjectionsFile:    getEnv("PROJECTIONS_FILE", ""),

		TelegramToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID: int64(getEnvInt("TELEGRAM_CHAT_ID", 0)),

		AuthentikBaseURL:      getEnv("AUTHENTIK_BASE_URL", ""),
		AuthentikClientID:     getEnv("AUTHENTIK_CLIENT_ID", ""),
		AuthentikClientSecret: getEnv("AUTHENTIK_CLIENT_SECRET", ""),
		AuthentikRedirectURL:  getEnv("AUTHENTIK_REDIRECT_URL", "http://localhost:3000/auth/callback"),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		TeamNames:   splitList(getEnv("TEAM_NAMES", "")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
