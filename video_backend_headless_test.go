// video_backend_headless_test.go - Headless backend tests

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

package vecrender

import (
	"errors"
	"testing"
)

func TestHeadlessOutput_SetDisplayConfig_StoresFullscreen(t *testing.T) {
	out := NewHeadlessOutput()
	cfg := DisplayConfig{
		Width:      640,
		Height:     480,
		Scale:      2,
		Fullscreen: true,
	}
	if err := out.SetDisplayConfig(cfg); err != nil {
		t.Fatalf("SetDisplayConfig returned error: %v", err)
	}
	got := out.GetDisplayConfig()
	if !got.Fullscreen || got.Scale != 2 {
		t.Fatalf("expected Scale=2, Fullscreen=true; got Scale=%d, Fullscreen=%v", got.Scale, got.Fullscreen)
	}
}

func TestHeadlessOutput_CountsFrames(t *testing.T) {
	out := NewHeadlessOutput()
	if err := out.Start(); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if err := out.UpdateFrame([]byte{byte(i), 0, 0, 0xFF}); err != nil {
			t.Fatal(err)
		}
	}
	if out.GetFrameCount() != 3 {
		t.Fatalf("expected 3 frames, got %d", out.GetFrameCount())
	}
	if last := out.LastFrame(); len(last) != 4 || last[0] != 2 {
		t.Fatalf("expected the last frame to be kept, got %v", last)
	}
}

func TestHeadlessOutput_LastFrameIsACopy(t *testing.T) {
	out := NewHeadlessOutput()
	buf := []byte{1, 2, 3, 4}
	_ = out.UpdateFrame(buf)
	buf[0] = 9
	if out.LastFrame()[0] != 1 {
		t.Fatal("UpdateFrame must copy the caller's buffer")
	}
}

func TestHeadlessOutput_Lifecycle(t *testing.T) {
	out := NewHeadlessOutput()
	_ = out.Start()
	if !out.IsStarted() {
		t.Fatal("expected started")
	}
	_ = out.Stop()
	if out.IsStarted() {
		t.Fatal("expected stopped")
	}
	_ = out.Close()
	if out.CloseCount() != 1 {
		t.Fatalf("expected 1 close, got %d", out.CloseCount())
	}
	if out.GetRefreshRate() != 60 {
		t.Fatalf("expected default 60 Hz, got %d", out.GetRefreshRate())
	}
}

func TestNewVideoOutput(t *testing.T) {
	out, err := NewVideoOutput(VIDEO_BACKEND_HEADLESS)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.(*HeadlessVideoOutput); !ok {
		t.Fatalf("expected headless output, got %T", out)
	}
	if _, err := NewVideoOutput(-1); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestClampScale(t *testing.T) {
	cases := map[int]int{-2: 1, 0: 1, 1: 1, 3: 3, 4: 4, 10: 4}
	for in, want := range cases {
		if got := ClampScale(in); got != want {
			t.Fatalf("ClampScale(%d) = %d, want %d", in, got, want)
		}
	}
}
