package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okhi/okcollect/internal/domain"
)

func TestFrameURLSelection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		p       domain.Platform
		osMajor int
		mode    Mode
		want    string
	}{
		{"prod modern android", domain.PlatformAndroid, 33, ModeProd, frameURLProd},
		{"prod legacy android", domain.PlatformAndroid, 23, ModeProd, legacyFrameURLProd},
		{"dev legacy android", domain.PlatformAndroid, 21, ModeDev, legacyFrameURLDev},
		{"sandbox legacy android", domain.PlatformAndroid, 19, ModeSandbox, legacyFrameURLSandbox},
		{"unknown mode falls back to sandbox", domain.PlatformAndroid, 30, Mode("staging"), frameURLSandbox},
		{"unknown mode legacy falls back to sandbox", domain.PlatformAndroid, 22, Mode(""), legacyFrameURLSandbox},
		{"ios never legacy", domain.PlatformIOS, 12, ModeProd, frameURLProd},
		{"ios dev", domain.PlatformIOS, 17, ModeDev, frameURLDev},
		{"unparseable android version treated as modern", domain.PlatformAndroid, 0, ModeProd, frameURLProd},
		{"boundary version 24 is modern", domain.PlatformAndroid, minModernAndroidVersion, ModeSandbox, frameURLSandbox},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FrameURL(tc.p, tc.osMajor, tc.mode); got != tc.want {
				t.Fatalf("FrameURL(%s, %d, %s) = %q, want %q", tc.p, tc.osMajor, tc.mode, got, tc.want)
			}
			// Purity: a second call with the same inputs must agree.
			if again := FrameURL(tc.p, tc.osMajor, tc.mode); again != tc.want {
				t.Fatalf("second call diverged: %q", again)
			}
		})
	}
}

func TestAuthBaseURL(t *testing.T) {
	t.Parallel()

	if got := AuthBaseURL(ModeProd); got != prodAuthBaseURL {
		t.Fatalf("prod: got %q", got)
	}
	if got := AuthBaseURL(ModeDev); got != devAuthBaseURL {
		t.Fatalf("dev: got %q", got)
	}
	if got := AuthBaseURL(Mode("qa")); got != sandboxAuthBaseURL {
		t.Fatalf("unknown mode should default to sandbox, got %q", got)
	}
}

func TestAccessToken(t *testing.T) {
	t.Parallel()

	app := App{BranchID: "branch_1", ClientKey: "key_1"}
	got := app.AccessToken()
	if !strings.HasPrefix(got, "Token ") {
		t.Fatalf("expected Token prefix, got %q", got)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(got, "Token "))
	if err != nil {
		t.Fatal(err)
	}
	if string(decoded) != "branch_1:key_1" {
		t.Fatalf("unexpected credential encoding %q", decoded)
	}
}

func TestOSMajorVersion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want int
	}{
		{"13", 13},
		{"16.4.1", 16},
		{"8.1", 8},
		{" 12 ", 12},
		{"9-beta", 9},
		{"", 0},
		{"tiramisu", 0},
		{"-3", 0},
	}
	for _, tc := range cases {
		tc := tc
		if got := OSMajorVersion(tc.in); got != tc.want {
			t.Fatalf("OSMajorVersion(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "okcollect.toml")
	content := `
branch_id = "branch_2"
client_key = "key_2"
mode = "PROD"
dev_tag = "qa-run"

[app]
name = "demo"
version = "2.1.0"
build = "210"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	app, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if app.BranchID != "branch_2" || app.ClientKey != "key_2" {
		t.Fatalf("unexpected credentials %+v", app)
	}
	if app.Mode != ModeProd {
		t.Fatalf("expected mode prod, got %q", app.Mode)
	}
	if app.App.Name != "demo" || app.App.Version != "2.1.0" || app.App.Build != "210" {
		t.Fatalf("unexpected app meta %+v", app.App)
	}
	if app.DevTag != "qa-run" {
		t.Fatalf("unexpected dev tag %q", app.DevTag)
	}
}

func TestParseCLIFlags(t *testing.T) {
	args := []string{
		"--phone", "+254712345678",
		"--branch-id", "b",
		"--client-key", "c",
		"--mode", "dev",
		"--platform", "ios",
	}
	cfg, err := ParseCLIFlags(args)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Mode != ModeDev {
		t.Fatalf("expected dev mode, got %q", cfg.App.Mode)
	}
	if cfg.Platform != "ios" {
		t.Fatalf("expected ios platform, got %q", cfg.Platform)
	}
	if !cfg.PermissionsOnboarding {
		t.Fatal("permissions onboarding should default to true")
	}

	path := filepath.Join(t.TempDir(), "okcollect.toml")
	if err := os.WriteFile(path, []byte("branch_id = \"b\"\nclient_key = \"c\"\nmode = \"prod\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = ParseCLIFlags([]string{"--phone", "+1", "--config", path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Mode != ModeProd {
		t.Fatalf("mode from config file should apply, got %q", cfg.App.Mode)
	}
	cfg, err = ParseCLIFlags([]string{"--phone", "+1", "--config", path, "--mode", "dev"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Mode != ModeDev {
		t.Fatalf("mode flag should override the config file, got %q", cfg.App.Mode)
	}

	if _, err := ParseCLIFlags([]string{"--branch-id", "b", "--client-key", "c"}); err == nil {
		t.Fatal("expected missing phone error")
	}
	if _, err := ParseCLIFlags([]string{"--phone", "+1", "--client-key", "c"}); err == nil {
		t.Fatal("expected missing branch id error")
	}
	if _, err := ParseCLIFlags([]string{"--phone", "+1", "--branch-id", "b", "--client-key", "c", "--platform", "windows"}); err == nil {
		t.Fatal("expected invalid platform error")
	}
}
