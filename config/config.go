// Package config loads process configuration once at startup from environment
// variables, failing fast on a missing or invalid required value rather than
// defaulting silently.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds every environment-derived parameter the process needs for its
// lifetime. It is built once by Load and never mutated afterward.
type Config struct {
	DatabaseURL string
	DBDebug     bool

	ServerHost        string
	ServerPort        string
	FrontendBuildPath string

	CodeLength          int
	CodeLifetime        time.Duration
	CodeSweepInterval   time.Duration
	AttendanceTimezone  *time.Location
	AttendanceTZName    string
	TrustProxy          bool

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the environment (via viper) and validates it.
// It terminates the process with a fatal message if a required value is
// missing, matching the host stack's fail-fast convention for configuration.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("frontend_build_path", "public")
	v.SetDefault("confirmation_code_duration_seconds", 300)
	v.SetDefault("confirmation_code_length", 6)
	v.SetDefault("confirmation_code_sweep_interval_seconds", 30)
	v.SetDefault("attendance_timezone", "UTC")
	v.SetDefault("trust_proxy", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("db_debug", false)

	dsn := v.GetString("database_url")
	if dsn == "" {
		failMissingConfig("DATABASE_URL")
	}

	tzName := v.GetString("attendance_timezone")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		fatalf("invalid ATTENDANCE_TIMEZONE %q: %v", tzName, err)
	}

	codeLength := v.GetInt("confirmation_code_length")
	if codeLength < 4 {
		fatalf("CONFIRMATION_CODE_LENGTH must be >= 4, got %d", codeLength)
	}

	return &Config{
		DatabaseURL: dsn,
		DBDebug:     v.GetBool("db_debug"),

		ServerHost:        v.GetString("server_host"),
		ServerPort:        v.GetString("server_port"),
		FrontendBuildPath: v.GetString("frontend_build_path"),

		CodeLength:         codeLength,
		CodeLifetime:       time.Duration(v.GetInt("confirmation_code_duration_seconds")) * time.Second,
		CodeSweepInterval:  time.Duration(v.GetInt("confirmation_code_sweep_interval_seconds")) * time.Second,
		AttendanceTimezone: loc,
		AttendanceTZName:   tzName,
		TrustProxy:         v.GetBool("trust_proxy"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
	}
}

// CodeAlphabet is the fixed set of characters confirmation codes are drawn
// from. Ambiguous characters (O/0, I/1) are excluded so a code can be read
// off a projector and typed back without transcription errors.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func failMissingConfig(name string) {
	fatalf("%s environment variable is required", name)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "FATAL: "+format+"\n", args...)
	os.Exit(1)
}
