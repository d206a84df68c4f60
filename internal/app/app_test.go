package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/raymonds/internal/common"
	"github.com/bobmcallan/raymonds/internal/models"
	tcommon "github.com/bobmcallan/raymonds/tests/common"
)

func testConfig(t *testing.T, backend *tcommon.StubBackend) *common.Config {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.API.BaseURL = backend.URL()
	cfg.API.RateLimit = 1000
	cfg.Storage.Backend = "file"
	cfg.Storage.Path = filepath.Join(t.TempDir(), "session")
	return cfg
}

func newTestApp(t *testing.T, cfg *common.Config) *App {
	t.Helper()
	a, err := NewAppWithConfig(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAppWithConfig failed: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestNewAppWithConfig_InitializesComponents(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	a := newTestApp(t, testConfig(t, backend))

	if a.Client == nil || a.KV == nil || a.Auth == nil || a.Compare == nil {
		t.Fatal("core components not initialized")
	}
	if a.Cache == nil || a.Hooks == nil || a.Pages == nil {
		t.Fatal("query layer not initialized")
	}
	if a.Compare.Max() != 4 {
		t.Errorf("compare max = %d, want 4", a.Compare.Max())
	}
	if a.Client.BaseURL() != backend.URL() {
		t.Errorf("client base URL = %s, want %s", a.Client.BaseURL(), backend.URL())
	}
	if a.StartupTime.IsZero() {
		t.Error("StartupTime not set")
	}
}

func TestNewAppWithConfig_BadStorage(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	cfg := testConfig(t, backend)
	cfg.Storage.Backend = "tape"

	if _, err := NewAppWithConfig(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}

func TestNewApp_LoadsConfigFile(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "raymonds.toml")
	content := fmt.Sprintf(`
[api]
base_url = "%s/"
rate_limit = 50

[storage]
backend = "memory"

[compare]
max_items = 3
`, backend.URL())
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	a, err := NewApp(path)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	defer a.Close()

	if a.Config.API.BaseURL != backend.URL() {
		t.Errorf("base URL = %q, want trailing slash trimmed", a.Config.API.BaseURL)
	}
	if a.Compare.Max() != 3 {
		t.Errorf("compare max = %d, want 3", a.Compare.Max())
	}
}

func TestRestoreSession_AcrossRestarts(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	backend.AddUser("analyst@example.com", "analyst", "correct-horse")
	cfg := testConfig(t, backend)

	first, err := NewAppWithConfig(context.Background(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := first.Auth.Login(context.Background(), models.Credentials{Email: "analyst@example.com", Password: "correct-horse"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	first.Close()

	second := newTestApp(t, cfg)
	if second.Auth.State().IsAuthenticated {
		t.Fatal("session must not be trusted before revalidation")
	}
	second.RestoreSession(context.Background())

	st := second.Auth.State()
	if !st.IsAuthenticated {
		t.Fatalf("session not restored: %+v", st)
	}
	if st.User == nil || st.User.Username != "analyst" {
		t.Errorf("unexpected user %+v", st.User)
	}
}

func TestRestoreSession_NoStoredToken(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	a := newTestApp(t, testConfig(t, backend))

	a.RestoreSession(context.Background())
	if a.Auth.State().IsAuthenticated {
		t.Error("expected anonymous session")
	}
	if n := backend.Calls("/auth/me"); n != 0 {
		t.Errorf("/auth/me called %d times without a token", n)
	}
}

func TestWarmCache_FillsLandingData(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	a := newTestApp(t, testConfig(t, backend))

	warmCache(context.Background(), a.Hooks, a.Logger)

	if a.Cache.Len() != 2 {
		t.Errorf("cache entries = %d, want 2", a.Cache.Len())
	}
	if backend.Calls("/statistics") != 1 || backend.Calls("/ranking") != 1 {
		t.Errorf("unexpected backend calls: statistics=%d ranking=%d",
			backend.Calls("/statistics"), backend.Calls("/ranking"))
	}

	// the home page is now served from cache
	a.Pages.Home(context.Background())
	if backend.TotalCalls() != 2 {
		t.Errorf("home page refetched: %d calls", backend.TotalCalls())
	}
}

func TestWarmCache_Disabled(t *testing.T) {
	t.Setenv("RAYMONDS_WARM_CACHE", "off")
	backend := tcommon.NewStubBackend(t)
	a := newTestApp(t, testConfig(t, backend))

	warmCache(context.Background(), a.Hooks, a.Logger)

	if backend.TotalCalls() != 0 {
		t.Errorf("warm cache ran while disabled: %d calls", backend.TotalCalls())
	}
}

func TestRefreshLanding_Refetches(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	a := newTestApp(t, testConfig(t, backend))

	warmCache(context.Background(), a.Hooks, a.Logger)
	a.Hooks.Company(context.Background(), "005930")
	refreshLanding(context.Background(), a.Hooks, a.Logger)

	if n := backend.Calls("/statistics"); n != 2 {
		t.Errorf("statistics calls = %d, want 2", n)
	}
	if n := backend.Calls("/company/005930"); n != 1 {
		t.Errorf("company entry should survive refresh, calls = %d", n)
	}
}

func TestClose_Idempotent(t *testing.T) {
	backend := tcommon.NewStubBackend(t)
	a, err := NewAppWithConfig(context.Background(), testConfig(t, backend), nil)
	if err != nil {
		t.Fatal(err)
	}
	a.StartRefreshScheduler()
	a.StartWarmCache()

	a.Close()
	a.Close()

	if a.KV != nil {
		t.Error("KV not released")
	}
}
