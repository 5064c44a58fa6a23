// main_test.go - Command line driver tests

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/vecrender
License: GPLv3 or later
*/

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/intuitionamiga/vecrender/internal/config"
)

func TestConfigPath(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{nil, ""},
		{[]string{"--envs", "4"}, ""},
		{[]string{"--config", "a.yaml", "--envs", "4"}, "a.yaml"},
		{[]string{"--display", "--config=b.yaml"}, "b.yaml"},
		{[]string{"--", "--config", "c.yaml"}, ""},
	}
	for _, tc := range cases {
		if got := configPath(tc.args); got != tc.want {
			t.Errorf("configPath(%v) = %q, want %q", tc.args, got, tc.want)
		}
	}
}

func TestBindFlags_OverrideFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(p, []byte("run:\n  envs: 8\n  episodes: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if err := cfg.LoadFile(p); err != nil {
		t.Fatal(err)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	bindFlags(fs, cfg)
	if err := fs.Parse([]string{"--config", p, "--episodes", "5", "--compress"}); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if cfg.Run.Envs != 8 {
		t.Fatalf("file value lost, envs = %d", cfg.Run.Envs)
	}
	if cfg.Run.Episodes != 5 || !cfg.Record.Compress {
		t.Fatalf("flags not applied: %+v", cfg.Run)
	}
}

func TestRun_Features(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--features"}, &stdout, &stderr); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(stdout.String(), "Compiled features:") {
		t.Fatalf("unexpected output %q", stdout.String())
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(context.Background(), []string{"--help"}, &stdout, &stderr); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(stderr.String(), "--record-dir") {
		t.Fatalf("help does not list flags: %q", stderr.String())
	}
}

func TestRun_Errors(t *testing.T) {
	cases := map[string][]string{
		"nothing to do":    {"--envs", "2"},
		"unknown flag":     {"--display", "--frobnicate"},
		"extra argument":   {"--display", "extra"},
		"bad trigger":      {"--record-dir", "out", "--episode-trigger", "e %% =="},
		"bad frame size":   {"--display", "--headless", "--frame-size", "big"},
		"missing config":   {"--config", "/nonexistent/vecrender.yaml"},
		"bad render mode":  {"--display", "--headless", "--render-mode", "human"},
		"zero environment": {"--display", "--headless", "--envs", "0"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if err := run(context.Background(), args, &stdout, &stderr); err == nil {
				t.Fatalf("expected run(%v) to fail", args)
			}
		})
	}
}

func TestRun_HeadlessDisplay(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{
		"--display", "--headless",
		"--envs", "3", "--episodes", "2", "--max-steps", "4",
		"--frame-size", "60x40", "--log-level", "debug",
	}
	if err := run(context.Background(), args, &stdout, &stderr); err != nil {
		t.Fatalf("run returned error: %v\n%s", err, stderr.String())
	}
	if !strings.Contains(stderr.String(), "msg=finished") {
		t.Fatalf("expected a finished log line, got %q", stderr.String())
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	args := []string{"--display", "--headless", "--episodes", "100", "--frame-size", "30x20"}
	if err := run(ctx, args, &stdout, &stderr); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(stderr.String(), "interrupted") {
		t.Fatalf("expected an interrupted log line, got %q", stderr.String())
	}
}
