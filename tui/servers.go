package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"seatview/store"
)

type serverItem struct {
	url        string
	configured bool
	current    bool
}

func (s serverItem) Title() string {
	if s.current {
		return s.url + " •"
	}
	return s.url
}

func (s serverItem) Description() string {
	parts := []string{}
	if s.current {
		parts = append(parts, "current")
	}
	if s.configured {
		parts = append(parts, "configured")
	} else {
		parts = append(parts, "recent")
	}
	return strings.Join(parts, " • ")
}

func (s serverItem) FilterValue() string {
	return s.url
}

// buildServerItems lists configured servers first, in order, followed by
// remembered ones that are not configured.
func buildServerItems(configured []string, recent []store.RecentServer, current string) []list.Item {
	seen := make(map[string]bool)
	items := []list.Item{}
	for _, url := range configured {
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		items = append(items, serverItem{url: url, configured: true, current: url == current})
	}
	for _, r := range recent {
		url := strings.TrimRight(r.URL, "/")
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		items = append(items, serverItem{url: url, current: url == current})
	}
	return items
}

func indexOfServer(items []list.Item, url string) int {
	for i, item := range items {
		if s, ok := item.(serverItem); ok && s.url == url {
			return i
		}
	}
	return 0
}
