package sheet

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/charsheet/internal/services/charstore/api"
	charsqlite "github.com/louisbranch/charsheet/internal/services/charstore/storage/sqlite"
	"github.com/louisbranch/charsheet/internal/services/sheet/domain"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("sheet", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.RemoteURL != "http://localhost:8095/character" {
		t.Fatalf("remote url = %q", cfg.RemoteURL)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("locale = %q", cfg.Locale)
	}
	if cfg.RemoteTimeout != 0 {
		t.Fatalf("remote timeout = %v, want 0", cfg.RemoteTimeout)
	}
}

func TestParseConfigEnvThenFlags(t *testing.T) {
	t.Setenv("CHARSHEET_REMOTE_URL", "http://env.example/character")
	t.Setenv("CHARSHEET_LOCALE", "pt-BR")
	t.Setenv("CHARSHEET_REMOTE_TIMEOUT", "3s")

	cfg, err := ParseConfig(flag.NewFlagSet("sheet", flag.ContinueOnError), []string{"-remote", "http://flag.example/character"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.RemoteURL != "http://flag.example/character" {
		t.Fatalf("remote url = %q, want flag value", cfg.RemoteURL)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("locale = %q, want env value", cfg.Locale)
	}
	if cfg.RemoteTimeout != 3*time.Second {
		t.Fatalf("remote timeout = %v, want 3s", cfg.RemoteTimeout)
	}
}

func TestParseConfigRejectsNegativeTimeout(t *testing.T) {
	fs := flag.NewFlagSet("sheet", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-remote-timeout", "-1s"}); err == nil {
		t.Fatal("expected negative timeout error")
	}
}

func newCharstore(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := charsqlite.Open(context.Background(), filepath.Join(t.TempDir(), "charstore.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := httptest.NewServer(api.NewHandler(store,
		api.WithLogger(log.New(io.Discard, "", 0)),
		api.WithInitialDocument(domain.DefaultRuleset().NewSheet().Document()),
	).Routes())
	t.Cleanup(func() {
		srv.Close()
		_ = store.Close()
	})
	return srv
}

func runSession(t *testing.T, cfg Config, input string) string {
	t.Helper()
	log.SetOutput(io.Discard)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	var out bytes.Buffer
	if err := RunIO(context.Background(), cfg, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func TestSessionEditsSavesAndReloads(t *testing.T) {
	srv := newCharstore(t)
	cfg := Config{RemoteURL: srv.URL + api.CharacterPath, Locale: "en-US"}

	out := runSession(t, cfg, strings.Join([]string{
		"attr strength +4",
		"skill athletics +3",
		"class barbarian",
		"save",
		"status",
		"bogus",
		"quit",
	}, "\n"))

	for _, want := range []string{
		"Character Sheet",
		"Loading...",
		"Barbarian Requirements",
		"Character saved.",
		"Status: ready",
		"Unknown command: bogus",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	reloaded := runSession(t, cfg, "quit\n")
	if !strings.Contains(reloaded, "Strength") || !strings.Contains(reloaded, "14") {
		t.Fatalf("reloaded session did not show saved strength:\n%s", reloaded)
	}
	if !strings.Contains(reloaded, "eligible") {
		t.Fatalf("reloaded session missing class view:\n%s", reloaded)
	}
}

func TestSessionShowsLoadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out := runSession(t, Config{RemoteURL: srv.URL, Locale: "en-US"}, "attr wisdom +1\nstatus\nsave\n")
	for _, want := range []string{
		"Error fetching character data.",
		"Status: error",
		"Error saving character data.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Character saved.") {
		t.Fatalf("unexpected save confirmation:\n%s", out)
	}
}

func TestSessionUsageMessages(t *testing.T) {
	srv := newCharstore(t)
	out := runSession(t, Config{RemoteURL: srv.URL + api.CharacterPath}, strings.Join([]string{
		"attr strength",
		"attr strength lots",
		"attr luck +1",
		"skill juggling +1",
		"class monk",
		"help",
	}, "\n"))
	for _, want := range []string{
		"Usage: attr <name> <+n|-n>",
		"Unknown attribute: luck",
		"Unknown skill: juggling",
		"Unknown class: monk",
		"Commands:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSessionLocalizedOutput(t *testing.T) {
	srv := newCharstore(t)
	out := runSession(t, Config{RemoteURL: srv.URL + api.CharacterPath, Locale: "pt-BR"}, "status\n")
	for _, want := range []string{"Ficha de Personagem", "Carregando...", "Atributos", "Estado: pronto"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunIORejectsBadConfig(t *testing.T) {
	if err := RunIO(context.Background(), Config{RemoteURL: "not a url"}, strings.NewReader(""), io.Discard); err == nil {
		t.Fatal("expected remote url error")
	}
	cfg := Config{RemoteURL: "http://localhost/character", RulesetPath: filepath.Join(t.TempDir(), "missing.yaml")}
	if err := RunIO(context.Background(), cfg, strings.NewReader(""), io.Discard); err == nil {
		t.Fatal("expected ruleset error")
	}
}
