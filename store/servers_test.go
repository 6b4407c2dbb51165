package store

import (
	"fmt"
	"testing"
)

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
}

func TestRememberServer_RoundTrip(t *testing.T) {
	setTestConfigDir(t)

	servers, err := LoadRecentServers()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(servers) != 0 {
		t.Fatalf("expected no servers, got %+v", servers)
	}

	if err := RememberServer("http://localhost:5001"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberServer("http://localhost:5002/"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberServer("http://localhost:5001"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	servers, err = LoadRecentServers()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected 2 servers, got %+v", servers)
	}
	if servers[0].URL != "http://localhost:5001" || servers[1].URL != "http://localhost:5002" {
		t.Fatalf("unexpected order: %+v", servers)
	}
}

func TestRememberServer_KeepsMostRecent(t *testing.T) {
	setTestConfigDir(t)

	for i := 0; i < maxRecentServers+3; i++ {
		if err := RememberServer(fmt.Sprintf("http://seats-%d.local", i)); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	servers, err := LoadRecentServers()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(servers) != maxRecentServers {
		t.Fatalf("expected %d servers, got %d", maxRecentServers, len(servers))
	}
	want := fmt.Sprintf("http://seats-%d.local", maxRecentServers+2)
	if servers[0].URL != want {
		t.Fatalf("expected newest server %q first, got %q", want, servers[0].URL)
	}
}

func TestRememberServer_InvalidInput(t *testing.T) {
	setTestConfigDir(t)

	if err := RememberServer("  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestRememberServer_PathCaseIsSignificant(t *testing.T) {
	setTestConfigDir(t)

	if err := RememberServer("http://seats.local/api"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := RememberServer("http://seats.local/Api"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	servers, err := LoadRecentServers()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(servers) != 2 {
		t.Fatalf("expected both servers to be kept, got %+v", servers)
	}
	if servers[0].URL != "http://seats.local/Api" || servers[1].URL != "http://seats.local/api" {
		t.Fatalf("unexpected order: %+v", servers)
	}
}
