package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultServers  = "http://localhost:5001,http://localhost:5002"
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// Config holds the client settings. Servers[0] is the server used at startup.
type Config struct {
	Servers  []string
	Interval time.Duration
	Timeout  time.Duration
	LogFile  string
}

// Load reads settings from the environment after applying envFiles (".env"
// when none are given). Variables already set in the environment win over
// the files, and missing files are ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	interval, err := parseDuration("SEATVIEW_INTERVAL", DefaultInterval)
	if err != nil {
		return Config{}, err
	}
	timeout, err := parseDuration("SEATVIEW_TIMEOUT", DefaultTimeout)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Servers:  ParseServers(getenv("SEATVIEW_SERVERS", DefaultServers)),
		Interval: interval,
		Timeout:  timeout,
		LogFile:  strings.TrimSpace(os.Getenv("SEATVIEW_LOG_FILE")),
	}
	return cfg, nil
}

// Validate normalizes server URLs in place and checks the remaining settings.
func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return errors.New("at least one server is required")
	}
	seen := make(map[string]bool, len(c.Servers))
	servers := make([]string, 0, len(c.Servers))
	for _, raw := range c.Servers {
		server, err := NormalizeServer(raw)
		if err != nil {
			return err
		}
		if seen[server] {
			continue
		}
		seen[server] = true
		servers = append(servers, server)
	}
	c.Servers = servers

	if c.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.Interval)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// NormalizeServer checks that raw is an absolute http(s) URL and drops any trailing slash.
func NormalizeServer(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", errors.New("server url is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server url %q: missing host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" || u.ForceQuery {
		return "", fmt.Errorf("invalid server url %q: query and fragment are not allowed", raw)
	}
	return trimmed, nil
}

func ParseServers(s string) []string {
	var servers []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			servers = append(servers, part)
		}
	}
	return servers
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
