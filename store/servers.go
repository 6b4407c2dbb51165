package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxRecentServers = 8

type RecentServer struct {
	URL    string    `json:"url"`
	UsedAt time.Time `json:"used_at"`
}

type serverHistory struct {
	Servers []RecentServer `json:"servers"`
}

// LoadRecentServers returns remembered servers, most recent first.
func LoadRecentServers() ([]RecentServer, error) {
	path, err := configPath("servers.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history serverHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid server history format")
	}
	return history.Servers, nil
}

func RememberServer(url string) error {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	if url == "" {
		return errors.New("server url is required")
	}

	history, _ := LoadRecentServers()
	next := []RecentServer{{URL: url, UsedAt: time.Now()}}
	for _, existing := range history {
		if existing.URL == "" || existing.URL == url {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentServers {
			break
		}
	}
	return saveRecentServers(next)
}

func saveRecentServers(servers []RecentServer) error {
	path, err := configPath("servers.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(serverHistory{Servers: servers}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "seatview", name), nil
}
