package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for a migration-detector run.
type Config struct {
	// MQTT configuration (migration event notifications)
	MQTTBroker   string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	// Redis configuration (per-user work queue and segment cache)
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	SegmentCacheTTL time.Duration

	// PostgreSQL configuration (observation source, event and segment sinks)
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	PostgresMaxConnections     int
	PostgresMaxIdleConnections int
	PostgresConnMaxLifetime    time.Duration

	// Service configuration
	ServiceName string
	HealthPort  int
	LogLevel    string

	// Segment-based pipeline parameters (§6)
	NumStayedDaysMigrant int     // minimum length, in days, of a stable segment (d in §4.7)
	NumDaysMissingGap    int     // gap filler's k (§4.3, §4.4)
	SmallSegLen          int     // S¹ segment builder's minimum run length (§4.4, core.py's small_seg_len)
	SegProp              float64 // density filter's prop (§4.5)
	MinOverlapPartLen    int     // overlap resolver's min_overlap (§4.7)
	MaxGapHomeDes        int     // post-filter's max_gap_home_des (§4.10)
	MinHomeSegmentLen    int
	MinDesSegmentLen     int
	MaxDesSegmentLen     int

	// Short-term displacement filter (§4.11), disabled unless explicitly enabled
	ShortTermFilterEnabled bool

	// Frequency front end parameters (§4.12)
	NearbyRadiusKM float64
	HomeLocProp    float64 // prop used by Rule2PropGated
	StartYear      int     // anchor year for MonthIndex

	// Worker pool size for the per-user pipeline (§5)
	WorkerCount int

	// Optional integrations: a batch run works from CSV alone with all
	// three false, matching the pure-function core; enabling one opts
	// into the corresponding domain-stack wiring.
	EnableRedisQueue bool
	EnableMQTTNotify bool
	EnablePostgresIO bool
}

// NewConfig creates a new Config with the defaults listed in spec §6.
func NewConfig() *Config {
	return &Config{
		MQTTBroker:   "localhost",
		MQTTPort:     1883,
		MQTTUser:     "",
		MQTTPassword: "",
		MQTTClientID: "",

		RedisHost:       "localhost",
		RedisPort:       6379,
		RedisPassword:   "",
		RedisDB:         0,
		SegmentCacheTTL: 24 * time.Hour,

		PostgresHost:               "localhost",
		PostgresPort:               5432,
		PostgresUser:               "postgres",
		PostgresPassword:           "",
		PostgresDB:                 "postgres",
		PostgresSSLMode:            "disable",
		PostgresMaxConnections:     10,
		PostgresMaxIdleConnections: 5,
		PostgresConnMaxLifetime:    5 * time.Minute,

		ServiceName: "migration-detector",
		HealthPort:  8080,
		LogLevel:    "info",

		NumStayedDaysMigrant: 90,
		NumDaysMissingGap:    7,
		SmallSegLen:          30,
		SegProp:              0.6,
		MinOverlapPartLen:    0,
		MaxGapHomeDes:        30,
		MinHomeSegmentLen:    7,
		MinDesSegmentLen:     7,
		MaxDesSegmentLen:     14,

		ShortTermFilterEnabled: false,

		NearbyRadiusKM: 1.0,
		HomeLocProp:    0.5,
		StartYear:      time.Now().Year(),

		WorkerCount: 4,

		EnableRedisQueue: false,
		EnableMQTTNotify: false,
		EnablePostgresIO: false,
	}
}

// LoadFromEnv loads configuration from environment variables with the
// MIGRATE_ prefix, overriding any value already set.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("MIGRATE_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("MIGRATE_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("MIGRATE_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("MIGRATE_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("MIGRATE_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	if v := os.Getenv("MIGRATE_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("MIGRATE_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("MIGRATE_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("MIGRATE_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}
	if v := os.Getenv("MIGRATE_SEGMENT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SegmentCacheTTL = d
		}
	}

	if v := os.Getenv("MIGRATE_POSTGRES_HOST"); v != "" {
		c.PostgresHost = v
	}
	if v := os.Getenv("MIGRATE_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.PostgresPort = port
		}
	}
	if v := os.Getenv("MIGRATE_POSTGRES_USER"); v != "" {
		c.PostgresUser = v
	}
	if v := os.Getenv("MIGRATE_POSTGRES_PASSWORD"); v != "" {
		c.PostgresPassword = v
	}
	if v := os.Getenv("MIGRATE_POSTGRES_DB"); v != "" {
		c.PostgresDB = v
	}
	if v := os.Getenv("MIGRATE_POSTGRES_SSLMODE"); v != "" {
		c.PostgresSSLMode = v
	}
	if v := os.Getenv("MIGRATE_POSTGRES_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PostgresMaxConnections = n
		}
	}
	if v := os.Getenv("MIGRATE_POSTGRES_MAX_IDLE_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.PostgresMaxIdleConnections = n
		}
	}
	if v := os.Getenv("MIGRATE_POSTGRES_CONN_MAX_LIFE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PostgresConnMaxLifetime = d
		}
	}

	if v := os.Getenv("MIGRATE_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("MIGRATE_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("MIGRATE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if v := os.Getenv("MIGRATE_NUM_STAYED_DAYS_MIGRANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NumStayedDaysMigrant = n
		}
	}
	if v := os.Getenv("MIGRATE_NUM_DAYS_MISSING_GAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NumDaysMissingGap = n
		}
	}
	if v := os.Getenv("MIGRATE_SMALL_SEG_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SmallSegLen = n
		}
	}
	if v := os.Getenv("MIGRATE_SEG_PROP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SegProp = f
		}
	}
	if v := os.Getenv("MIGRATE_MIN_OVERLAP_PART_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinOverlapPartLen = n
		}
	}
	if v := os.Getenv("MIGRATE_MAX_GAP_HOME_DES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxGapHomeDes = n
		}
	}
	if v := os.Getenv("MIGRATE_MIN_HOME_SEGMENT_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinHomeSegmentLen = n
		}
	}
	if v := os.Getenv("MIGRATE_MIN_DES_SEGMENT_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MinDesSegmentLen = n
		}
	}
	if v := os.Getenv("MIGRATE_MAX_DES_SEGMENT_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDesSegmentLen = n
		}
	}
	if v := os.Getenv("MIGRATE_SHORT_TERM_FILTER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.ShortTermFilterEnabled = b
		}
	}

	if v := os.Getenv("MIGRATE_NEARBY_RADIUS_KM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.NearbyRadiusKM = f
		}
	}
	if v := os.Getenv("MIGRATE_HOME_LOC_PROP"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.HomeLocProp = f
		}
	}
	if v := os.Getenv("MIGRATE_START_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.StartYear = n
		}
	}
	if v := os.Getenv("MIGRATE_WORKER_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.WorkerCount = n
		}
	}

	if v := os.Getenv("MIGRATE_ENABLE_REDIS_QUEUE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableRedisQueue = b
		}
	}
	if v := os.Getenv("MIGRATE_ENABLE_MQTT_NOTIFY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnableMQTTNotify = b
		}
	}
	if v := os.Getenv("MIGRATE_ENABLE_POSTGRES_IO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.EnablePostgresIO = b
		}
	}
}

// LoadFromFlags parses command-line flags and overrides config values.
func (c *Config) LoadFromFlags() {
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")
	pflag.DurationVar(&c.SegmentCacheTTL, "segment-cache-ttl", c.SegmentCacheTTL, "TTL for cached S4 segments in Redis")

	pflag.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "PostgreSQL hostname")
	pflag.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "PostgreSQL port")
	pflag.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "PostgreSQL username")
	pflag.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "PostgreSQL password")
	pflag.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "PostgreSQL database name")
	pflag.StringVar(&c.PostgresSSLMode, "postgres-sslmode", c.PostgresSSLMode, "PostgreSQL SSL mode")
	pflag.IntVar(&c.PostgresMaxConnections, "postgres-max-conns", c.PostgresMaxConnections, "PostgreSQL max connections")
	pflag.IntVar(&c.PostgresMaxIdleConnections, "postgres-max-idle-conns", c.PostgresMaxIdleConnections, "PostgreSQL max idle connections")
	pflag.DurationVar(&c.PostgresConnMaxLifetime, "postgres-conn-max-life", c.PostgresConnMaxLifetime, "PostgreSQL connection max lifetime")

	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	pflag.IntVar(&c.NumStayedDaysMigrant, "num-stayed-days-migrant", c.NumStayedDaysMigrant, "Minimum stable-segment length in days")
	pflag.IntVar(&c.NumDaysMissingGap, "num-days-missing-gap", c.NumDaysMissingGap, "Maximum gap filled between observed days")
	pflag.IntVar(&c.SmallSegLen, "small-seg-len", c.SmallSegLen, "Minimum run length for the initial S1 segment builder")
	pflag.Float64Var(&c.SegProp, "seg-prop", c.SegProp, "Minimum density of observed days within a segment")
	pflag.IntVar(&c.MinOverlapPartLen, "min-overlap-part-len", c.MinOverlapPartLen, "Overlap length above which intersecting days are subtracted")
	pflag.IntVar(&c.MaxGapHomeDes, "max-gap-home-des", c.MaxGapHomeDes, "Maximum gap between home and destination segments")
	pflag.IntVar(&c.MinHomeSegmentLen, "min-home-segment-len", c.MinHomeSegmentLen, "Minimum home segment length for the short-term filter")
	pflag.IntVar(&c.MinDesSegmentLen, "min-des-segment-len", c.MinDesSegmentLen, "Minimum destination segment length for the short-term filter")
	pflag.IntVar(&c.MaxDesSegmentLen, "max-des-segment-len", c.MaxDesSegmentLen, "Maximum destination segment length for the short-term filter")
	pflag.BoolVar(&c.ShortTermFilterEnabled, "short-term-filter-enabled", c.ShortTermFilterEnabled, "Flag events matching the short-term displacement bounds")

	pflag.Float64Var(&c.NearbyRadiusKM, "nearby-radius-km", c.NearbyRadiusKM, "Radius in kilometers for the frequency front end's nearby-tower computation")
	pflag.Float64Var(&c.HomeLocProp, "home-loc-prop", c.HomeLocProp, "Minimum proportion of days required by the prop-gated home-location rule")
	pflag.IntVar(&c.StartYear, "start-year", c.StartYear, "Anchor year for the frequency front end's month index")

	pflag.IntVar(&c.WorkerCount, "worker-count", c.WorkerCount, "Number of users processed concurrently")

	pflag.BoolVar(&c.EnableRedisQueue, "enable-redis-queue", c.EnableRedisQueue, "Track per-user work and cache segments in Redis")
	pflag.BoolVar(&c.EnableMQTTNotify, "enable-mqtt-notify", c.EnableMQTTNotify, "Publish detected events to MQTT as the batch runs")
	pflag.BoolVar(&c.EnablePostgresIO, "enable-postgres-io", c.EnablePostgresIO, "Also write detected events (and debug segments) to PostgreSQL; input is still read from CSV")

	pflag.Parse()
}

// LoadFromYAML loads and overlays configuration values from a YAML
// file, typically used to pin the full parameter set (§6) for a
// reproducible batch run rather than passing a dozen flags.
func (c *Config) LoadFromYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks that required configuration values are set and that
// the segment-pipeline parameters describe a coherent set of bounds.
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	if c.SegProp < 0 || c.SegProp > 1 {
		return fmt.Errorf("seg-prop must be in [0,1]")
	}
	if c.HomeLocProp < 0 || c.HomeLocProp > 1 {
		return fmt.Errorf("home-loc-prop must be in [0,1]")
	}
	if c.NumStayedDaysMigrant <= 0 {
		return fmt.Errorf("num-stayed-days-migrant must be positive")
	}
	if c.NumDaysMissingGap < 0 {
		return fmt.Errorf("num-days-missing-gap must not be negative")
	}
	if c.MinOverlapPartLen < 0 {
		return fmt.Errorf("min-overlap-part-len must not be negative")
	}
	if c.MaxGapHomeDes < 0 {
		return fmt.Errorf("max-gap-home-des must not be negative")
	}
	if c.MaxDesSegmentLen < c.MinDesSegmentLen {
		return fmt.Errorf("max-des-segment-len must be >= min-des-segment-len")
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("worker-count must be positive")
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address.
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address.
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresConnectionString returns a PostgreSQL connection string.
func (c *Config) PostgresConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}
