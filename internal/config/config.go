package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	DBURL                      string
	DBDisablePreparedBinary    bool
	DBAutoMigrate              bool
	CORSAllowedOrigins         []string
	CacheEnabled               bool
	CacheTTL                   time.Duration
	LogLevel                   logging.Level
	PprofEnabled               bool
	PprofAddr                  string
	AnubisBaseURL              string
	AnubisIntrospectURL        string
	AnubisAdminKey             string
	AnubisTimeout              time.Duration
	AnubisCircuit              resilience.CircuitBreakerConfig
	RosterAPIEnabled           bool
	RosterAPIBaseURL           string
	RosterAPIToken             string
	RosterAPITimeout           time.Duration
	RosterAPICircuit           resilience.CircuitBreakerConfig
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	InternalJobToken           string
	QStashEnabled              bool
	QStashBaseURL              string
	QStashToken                string
	QStashTargetBaseURL        string
	QStashRetries              int
	QStashTimeout              time.Duration
	QStashCircuit              resilience.CircuitBreakerConfig
	FullTimeReconcileDelay     time.Duration
	MessageRetention           time.Duration
	RealtimeBuffer             int
	RealtimePingInterval       time.Duration
	ReconcileWorkers           int
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("SERVICE_NAME", "matchday-api"),
		ServiceVersion:             getEnv("SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:                   logging.ParseLevel(getEnv("LOG_LEVEL", "info")),
		PprofAddr:                  strings.TrimSpace(getEnv("PPROF_ADDR", ":6060")),
		AnubisBaseURL:              strings.TrimSpace(getEnv("ANUBIS_BASE_URL", "")),
		AnubisIntrospectURL:        getEnv("ANUBIS_INTROSPECT_PATH", "/v1/auth/introspect"),
		AnubisAdminKey:             getEnv("ANUBIS_ADMIN_KEY", ""),
		RosterAPIBaseURL:           strings.TrimSpace(getEnv("ROSTER_API_BASE_URL", "")),
		RosterAPIToken:             strings.TrimSpace(getEnv("ROSTER_API_TOKEN", "")),
		PyroscopeServerAddress:     strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		InternalJobToken:           strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		QStashBaseURL:              strings.TrimSpace(getEnv("QSTASH_BASE_URL", "https://qstash.upstash.io")),
		QStashToken:                strings.TrimSpace(getEnv("QSTASH_TOKEN", "")),
		QStashTargetBaseURL:        strings.TrimSpace(getEnv("QSTASH_TARGET_BASE_URL", "")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if cfg.ReadTimeout, err = getEnvAsDuration("HTTP_READ_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	// Websocket streams are long-lived; the write timeout bounds ordinary
	// requests only and the stream handler sets its own deadlines.
	if cfg.WriteTimeout, err = getEnvAsDuration("HTTP_WRITE_TIMEOUT", "15s"); err != nil {
		return Config{}, err
	}

	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY", true); err != nil {
		return Config{}, err
	}
	if cfg.DBAutoMigrate, err = getEnvAsBool("DB_AUTO_MIGRATE", false); err != nil {
		return Config{}, err
	}
	if cfg.DBAutoMigrate && cfg.DBURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when DB_AUTO_MIGRATE=true")
	}

	if cfg.CacheEnabled, err = getEnvAsBool("CACHE_ENABLED", true); err != nil {
		return Config{}, err
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "60s"); err != nil {
		return Config{}, err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	if cfg.AnubisTimeout, err = getEnvAsDuration("ANUBIS_TIMEOUT", "3s"); err != nil {
		return Config{}, err
	}
	if cfg.AnubisCircuit, err = getCircuitConfig("ANUBIS"); err != nil {
		return Config{}, err
	}

	if cfg.RosterAPIEnabled, err = getEnvAsBool("ROSTER_API_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.RosterAPIEnabled && cfg.RosterAPIBaseURL == "" {
		return Config{}, fmt.Errorf("ROSTER_API_BASE_URL is required when ROSTER_API_ENABLED=true")
	}
	if cfg.RosterAPITimeout, err = getEnvAsDuration("ROSTER_API_TIMEOUT", "2s"); err != nil {
		return Config{}, err
	}
	if cfg.RosterAPICircuit, err = getCircuitConfig("ROSTER_API"); err != nil {
		return Config{}, err
	}

	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return Config{}, err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	if cfg.UptraceCaptureRequestBody, err = getEnvAsBool("UPTRACE_CAPTURE_REQUEST_BODY", true); err != nil {
		return Config{}, err
	}
	if cfg.UptraceRequestBodyMaxBytes, err = getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192); err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if cfg.UptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return Config{}, err
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if cfg.MessageRetention, err = getEnvAsDuration("MESSAGE_RETENTION", "240h"); err != nil {
		return Config{}, err
	}
	if cfg.RealtimeBuffer, err = getEnvAsInt("REALTIME_BUFFER", 64); err != nil {
		return Config{}, fmt.Errorf("parse REALTIME_BUFFER: %w", err)
	}
	if cfg.RealtimeBuffer < 1 {
		return Config{}, fmt.Errorf("REALTIME_BUFFER must be >= 1")
	}
	if cfg.RealtimePingInterval, err = getEnvAsDuration("REALTIME_PING_INTERVAL", "25s"); err != nil {
		return Config{}, err
	}
	if cfg.ReconcileWorkers, err = getEnvAsInt("RECONCILE_WORKERS", 4); err != nil {
		return Config{}, fmt.Errorf("parse RECONCILE_WORKERS: %w", err)
	}
	if cfg.ReconcileWorkers < 1 {
		return Config{}, fmt.Errorf("RECONCILE_WORKERS must be >= 1")
	}

	if cfg.QStashEnabled, err = getEnvAsBool("QSTASH_ENABLED", false); err != nil {
		return Config{}, err
	}
	if cfg.QStashEnabled {
		if cfg.QStashToken == "" || cfg.QStashTargetBaseURL == "" {
			return Config{}, fmt.Errorf("QSTASH_TOKEN and QSTASH_TARGET_BASE_URL are required when QSTASH_ENABLED=true")
		}
		if cfg.InternalJobToken == "" {
			return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when QSTASH_ENABLED=true")
		}
	}
	if cfg.QStashRetries, err = getEnvAsInt("QSTASH_RETRIES", 3); err != nil {
		return Config{}, fmt.Errorf("parse QSTASH_RETRIES: %w", err)
	}
	if cfg.QStashRetries < 0 {
		return Config{}, fmt.Errorf("QSTASH_RETRIES must be >= 0")
	}
	if cfg.QStashTimeout, err = getEnvAsDuration("QSTASH_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.QStashCircuit, err = getCircuitConfig("QSTASH"); err != nil {
		return Config{}, err
	}
	if cfg.FullTimeReconcileDelay, err = getEnvAsDuration("FULL_TIME_RECONCILE_DELAY", "30s"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getCircuitConfig(prefix string) (resilience.CircuitBreakerConfig, error) {
	var (
		cfg resilience.CircuitBreakerConfig
		err error
	)
	if cfg.Enabled, err = getEnvAsBool(prefix+"_CIRCUIT_ENABLED", true); err != nil {
		return cfg, err
	}
	if cfg.FailureThreshold, err = getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return cfg, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if cfg.OpenTimeout, err = getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"); err != nil {
		return cfg, err
	}
	if cfg.HalfOpenMaxReq, err = getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2); err != nil {
		return cfg, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s circuit: %w", prefix, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

// getEnvAsDuration rejects zero and negative values.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
