package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config carries the node addressing and every game tunable. All durations
// are expressed in milliseconds in the yaml file; the accessors below convert.
// Zero-valued fields keep their compiled-in defaults.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	PeerAddr   string `yaml:"peer_addr"`
	StatusAddr string `yaml:"status_addr"`

	DebounceMs  int `yaml:"debounce_ms"`
	LongPressMs int `yaml:"long_press_ms"`

	SendRetries  int `yaml:"send_retries"`
	RetryDelayMs int `yaml:"retry_delay_ms"`

	CountdownCycles int `yaml:"countdown_cycles"`
	BlinkMs         int `yaml:"blink_ms"`
	StartLeadMs     int `yaml:"start_lead_ms"`
	GameOverDwellMs int `yaml:"game_over_dwell_ms"`

	FeedbackDwellMs int `yaml:"feedback_dwell_ms"`
	WonDwellMs      int `yaml:"won_dwell_ms"`

	// GuessTimeoutMs bounds the remote's wait for a verdict. 0 keeps the
	// wait-forever behavior of the original firmware.
	GuessTimeoutMs int `yaml:"guess_timeout_ms"`

	HistorySize int `yaml:"history_size"`
}

// Default returns the compiled-in tunables.
func Default() Config {
	return Config{
		ListenAddr:      ":9301",
		StatusAddr:      ":8080",
		DebounceMs:      20,
		LongPressMs:     2000,
		SendRetries:     5,
		RetryDelayMs:    100,
		CountdownCycles: 3,
		BlinkMs:         500,
		StartLeadMs:     1000,
		GameOverDwellMs: 3000,
		FeedbackDwellMs: 2000,
		WonDwellMs:      10000,
		GuessTimeoutMs:  0,
		HistorySize:     64,
	}
}

// Load reads a yaml config on top of the defaults, then applies env
// overrides. An empty path skips the file and uses defaults + env only.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("could not open config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(raw, &c); err != nil {
			return c, fmt.Errorf("could not parse config file: %w", err)
		}
	}
	c.applyEnv()
	if c.PeerAddr == "" {
		return c, fmt.Errorf("peer_addr is required (or set PEER_ADDR)")
	}
	c.ListenAddr = NormalizeHostPort(c.ListenAddr, "9301")
	c.PeerAddr = NormalizeHostPort(c.PeerAddr, "9301")
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SELF_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("PEER_ADDR"); v != "" {
		c.PeerAddr = v
	}
	if v := os.Getenv("STATUS_ADDR"); v != "" {
		c.StatusAddr = v
	}
}

func (c Config) Debounce() time.Duration      { return time.Duration(c.DebounceMs) * time.Millisecond }
func (c Config) LongPress() time.Duration     { return time.Duration(c.LongPressMs) * time.Millisecond }
func (c Config) RetryDelay() time.Duration    { return time.Duration(c.RetryDelayMs) * time.Millisecond }
func (c Config) Blink() time.Duration         { return time.Duration(c.BlinkMs) * time.Millisecond }
func (c Config) StartLead() time.Duration     { return time.Duration(c.StartLeadMs) * time.Millisecond }
func (c Config) GameOverDwell() time.Duration {
	return time.Duration(c.GameOverDwellMs) * time.Millisecond
}
func (c Config) FeedbackDwell() time.Duration {
	return time.Duration(c.FeedbackDwellMs) * time.Millisecond
}
func (c Config) WonDwell() time.Duration     { return time.Duration(c.WonDwellMs) * time.Millisecond }
func (c Config) GuessTimeout() time.Duration {
	return time.Duration(c.GuessTimeoutMs) * time.Millisecond
}

// NormalizeHostPort adds a default port when the address has none and trims
// any scheme prefix that snuck in from the environment.
func NormalizeHostPort(addr, defPort string) string {
	if rest, ok := strings.CutPrefix(addr, "udp://"); ok {
		addr = rest
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return addr + ":" + defPort
}
