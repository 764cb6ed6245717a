package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds shared service configuration sourced from environment variables.
type Config struct {
	StatsAddr         string
	LoaderMetricsAddr string
	KafkaBrokers      []string
	KafkaTopicClicks  string
	ClickHouseDSN     string
	RedisAddr         string
	IPHashSalt        string
	CORSAllowOrigins  []string
	BatchSize         int
	BatchInterval     time.Duration
	QueryTimeout      time.Duration
	ExportTTL         time.Duration
	RealtimeDemo      bool
	Owners            map[string]OwnerCredential
	DemoCountries     []DemoBucket
	EngineConfigPath  string
}

// OwnerCredential is the static API key that unlocks owner-audience stats.
type OwnerCredential struct {
	APIKey string `yaml:"api_key"`
}

// DemoBucket is one row of the placeholder dataset served when a realtime
// window has no traffic and the demo fallback is enabled.
type DemoBucket struct {
	Key   string `yaml:"key"`
	Count int64  `yaml:"count"`
}

type engineFile struct {
	Owners        map[string]OwnerCredential `yaml:"owners"`
	DemoCountries []DemoBucket               `yaml:"demo_countries"`
}

// Load parses process environment variables into a Config struct, applying defaults when unset.
func Load() (Config, error) {
	path := getenv("ENGINE_CONFIG_PATH", "config/engine.dev.yml")
	owners, demo, err := loadEngineConfig(path)
	if err != nil {
		return Config{}, fmt.Errorf("load engine config: %w", err)
	}

	cfg := Config{
		StatsAddr:         getenv("STATS_ADDR", ":8080"),
		LoaderMetricsAddr: getenv("LOADER_METRICS_ADDR", ":9100"),
		KafkaBrokers:      splitAndTrim(getenv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopicClicks:  getenv("KAFKA_TOPIC_CLICKS", "clicks.raw"),
		ClickHouseDSN:     getenv("CLICKHOUSE_DSN", "clickhouse://default:@localhost:9000?database=default&dial_timeout=5s&compress=true"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		IPHashSalt:        getenv("IP_HASH_SALT", "dev-salt"),
		CORSAllowOrigins:  splitAndTrim(getenv("CORS_ALLOW_ORIGINS", "*")),
		BatchSize:         atoiDefault("LOADER_BATCH_SIZE", 1000),
		BatchInterval:     durationDefault("LOADER_BATCH_INTERVAL_MS", 800),
		QueryTimeout:      durationDefault("QUERY_TIMEOUT_MS", 5000),
		ExportTTL:         durationDefault("EXPORT_TTL_MS", 15*60*1000),
		RealtimeDemo:      boolDefault("REALTIME_DEMO_FALLBACK", true),
		Owners:            owners,
		DemoCountries:     demo,
		EngineConfigPath:  path,
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return def
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func atoiDefault(key string, def int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func durationDefault(key string, defMS int) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return time.Duration(parsed) * time.Millisecond
		}
	}
	return time.Duration(defMS) * time.Millisecond
}

func boolDefault(key string, def bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return def
}

func loadEngineConfig(path string) (map[string]OwnerCredential, []DemoBucket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var file engineFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, err
	}
	owners := make(map[string]OwnerCredential, len(file.Owners))
	for id, cred := range file.Owners {
		if strings.TrimSpace(id) == "" {
			continue
		}
		if cred.APIKey == "" {
			return nil, nil, fmt.Errorf("owner %s missing api_key in %s", id, path)
		}
		owners[id] = cred
	}
	return owners, file.DemoCountries, nil
}
