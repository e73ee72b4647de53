package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPageSize     = 500
	DefaultBaselinePath = "pne_baseline.txt"
	DefaultLogPath      = "pne_audit.log"
	DefaultLogLevel     = "info"
)

type PNEAuditConfiguration struct {
	BaseDN             string
	DcFQDN             string
	Username           string
	Password           string
	PageSize           uint32
	UseTLS             bool
	InsecureSkipVerify bool

	BaselinePath string
	LogPath      string
	LogLevel     string

	// optional integrations
	AdSpyDsn       string
	SlackBotToken  string
	SlackChannelID string
}

// LoadEnvConfig reads configName into the environment and builds the configuration
// from it. A missing file is tolerated so settings can come from the environment alone.
func LoadEnvConfig(configName string) (PNEAuditConfiguration, error) {
	if configName != "" {
		if err := godotenv.Load(configName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return PNEAuditConfiguration{}, fmt.Errorf("error loading env file %s: %w", configName, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) (PNEAuditConfiguration, error) {
	cfg := PNEAuditConfiguration{
		BaseDN:         strings.TrimSpace(getenv("LDAP_BASEDN")),
		DcFQDN:         strings.TrimSpace(getenv("LDAP_DCFQDN")),
		Username:       getenv("LDAP_USERNAME"),
		Password:       getenv("LDAP_PASSWORD"),
		PageSize:       DefaultPageSize,
		BaselinePath:   valueOr(getenv("PNE_BASELINE_PATH"), DefaultBaselinePath),
		LogPath:        valueOr(getenv("PNE_LOG_PATH"), DefaultLogPath),
		LogLevel:       valueOr(getenv("PNE_LOG_LEVEL"), DefaultLogLevel),
		AdSpyDsn:       getenv("ADSPY_DSN"),
		SlackBotToken:  getenv("SLACK_BOT_TOKEN"),
		SlackChannelID: getenv("SLACK_CHANNEL_ID"),
	}

	if raw := strings.TrimSpace(getenv("LDAP_PAGESIZE")); raw != "" {
		pageSize, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || pageSize == 0 {
			return cfg, fmt.Errorf("failed to parse LDAP_PAGESIZE %q: must be a positive integer", raw)
		}
		cfg.PageSize = uint32(pageSize)
	}

	var err error
	if cfg.UseTLS, err = parseBool(getenv, "LDAP_USE_TLS"); err != nil {
		return cfg, err
	}
	if cfg.InsecureSkipVerify, err = parseBool(getenv, "LDAP_INSECURE_SKIP_VERIFY"); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports every missing setting required to query the directory.
func (c PNEAuditConfiguration) Validate() error {
	var missing []string
	if c.BaseDN == "" {
		missing = append(missing, "LDAP_BASEDN")
	}
	if c.DcFQDN == "" {
		missing = append(missing, "LDAP_DCFQDN")
	}
	if c.Username == "" {
		missing = append(missing, "LDAP_USERNAME")
	}
	if c.Password == "" {
		missing = append(missing, "LDAP_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	if (c.SlackBotToken == "") != (c.SlackChannelID == "") {
		return errors.New("SLACK_BOT_TOKEN and SLACK_CHANNEL_ID must be set together")
	}
	return nil
}

func (c PNEAuditConfiguration) SlackEnabled() bool {
	return c.SlackBotToken != "" && c.SlackChannelID != ""
}

func valueOr(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func parseBool(getenv func(string) string, key string) (bool, error) {
	raw := strings.TrimSpace(getenv(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s %q: %w", key, raw, err)
	}
	return v, nil
}
