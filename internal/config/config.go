package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultAliasLabel is the label consulted for a container's network alias.
	DefaultAliasLabel = "com.pangolin.autonet.alias"

	// DefaultRescanSeconds applies when AUTONET_RESCAN_SECONDS is unset or invalid.
	DefaultRescanSeconds = 30
)

// Mapping binds one container label to one network: containers carrying a
// truthy value under LabelKey belong on Network.
type Mapping struct {
	Index    int    `yaml:"index"`
	LabelKey string `yaml:"label"`
	Network  string `yaml:"network"`
}

// Config is the resolved watcher configuration. It is immutable after Load;
// every goroutine reads the same instance.
type Config struct {
	Mappings           []Mapping `yaml:"mappings"`
	AliasLabel         string    `yaml:"alias_label"`
	InitialAttach      bool      `yaml:"initial_attach"`
	InitialRunningOnly bool      `yaml:"initial_running_only"`
	AutoDisconnect     bool      `yaml:"auto_disconnect"`
	RescanSeconds      int       `yaml:"rescan_seconds"`
	SweepRPS           float64   `yaml:"sweep_rps"`
	Debug              bool      `yaml:"debug"`
	LogFile            string    `yaml:"log_file,omitempty"`
}

// RescanInterval returns the periodic rescan interval, zero when disabled.
func (c *Config) RescanInterval() time.Duration {
	return time.Duration(c.RescanSeconds) * time.Second
}

// Load builds the configuration from AUTONET_* environment variables. Mapping
// pairs AUTONET_<n>_KEY / AUTONET_<n>_NET are scanned from n=1 upward until
// the first index where both are missing; an index with only one half set is
// warned about and skipped without stopping the scan. Load fails when no
// complete pair exists, since the watcher would have nothing to reconcile.
func Load() (*Config, error) {
	var mappings []Mapping
	for i := 1; ; i++ {
		key := os.Getenv(fmt.Sprintf("AUTONET_%d_KEY", i))
		netName := os.Getenv(fmt.Sprintf("AUTONET_%d_NET", i))
		if key == "" && netName == "" {
			break
		}
		if key == "" || netName == "" {
			log.Warn("Ignoring incomplete mapping pair, set both KEY and NET",
				"key_var", fmt.Sprintf("AUTONET_%d_KEY", i),
				"net_var", fmt.Sprintf("AUTONET_%d_NET", i))
			continue
		}
		mappings = append(mappings, Mapping{
			Index:    i,
			LabelKey: strings.TrimSpace(key),
			Network:  strings.TrimSpace(netName),
		})
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("no AUTONET_<n>_KEY / AUTONET_<n>_NET pairs configured")
	}

	return &Config{
		Mappings:           mappings,
		AliasLabel:         envString("LABEL_ALIAS_KEY", DefaultAliasLabel),
		InitialAttach:      EnvBool("INITIAL_ATTACH", true),
		InitialRunningOnly: EnvBool("INITIAL_RUNNING_ONLY", false),
		AutoDisconnect:     EnvBool("AUTO_DISCONNECT", true),
		RescanSeconds:      envSeconds("AUTONET_RESCAN_SECONDS", DefaultRescanSeconds),
		SweepRPS:           envFloat("AUTONET_SWEEP_RPS", 0),
		Debug:              EnvBool("AUTONET_DEBUG", false),
		LogFile:            os.Getenv("LOG_FILE"),
	}, nil
}

// LogSummary writes the resolved configuration to the log, one line per
// mapping plus one for the toggles. Called once at daemon startup.
func (c *Config) LogSummary() {
	log.Info("Loaded autonet configuration", "mappings", len(c.Mappings))
	for _, m := range c.Mappings {
		log.Info("Mapping", "index", m.Index, "label", m.LabelKey, "network", m.Network)
	}
	log.Info("Options",
		"alias_label", c.AliasLabel,
		"initial_attach", c.InitialAttach,
		"initial_running_only", c.InitialRunningOnly,
		"auto_disconnect", c.AutoDisconnect,
		"rescan_seconds", c.RescanSeconds,
		"debug", c.Debug)
}

// EnvBool reads a boolean environment variable. Unset or unrecognized values
// return the default; recognized spellings are 1/true/yes/y/on and
// 0/false/no/n/off, case-insensitive.
func EnvBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return def
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// envSeconds reads a non-negative integer; non-numeric or negative values
// fall back to the default.
func envSeconds(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		log.Warn("Invalid value, using default", "var", name, "value", v, "default", def)
		return def
	}
	return n
}

func envFloat(name string, def float64) float64 {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		log.Warn("Invalid value, using default", "var", name, "value", v, "default", def)
		return def
	}
	return f
}
