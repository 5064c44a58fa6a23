// frame_clock_test.go - Presentation rate limiter tests

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
	"testing"
	"time"
)

func newTestFrameClock() (*FrameClock, *time.Time, *[]time.Duration) {
	now := time.Unix(1000, 0)
	var slept []time.Duration
	c := &FrameClock{
		now:   func() time.Time { return now },
		sleep: func(d time.Duration) { slept = append(slept, d) },
	}
	return c, &now, &slept
}

func TestFrameClock_FirstTickDoesNotBlock(t *testing.T) {
	c, _, slept := newTestFrameClock()
	c.Tick(50)
	if len(*slept) != 0 {
		t.Fatalf("expected no sleep, got %v", *slept)
	}
}

func TestFrameClock_SleepsRemainder(t *testing.T) {
	c, now, slept := newTestFrameClock()
	c.Tick(50)
	*now = now.Add(5 * time.Millisecond)
	c.Tick(50)
	if len(*slept) != 1 || (*slept)[0] != 15*time.Millisecond {
		t.Fatalf("expected one 15ms sleep, got %v", *slept)
	}
}

func TestFrameClock_LateFrameDoesNotSleep(t *testing.T) {
	c, now, slept := newTestFrameClock()
	c.Tick(50)
	*now = now.Add(40 * time.Millisecond)
	c.Tick(50)
	if len(*slept) != 0 {
		t.Fatalf("expected no sleep for a late frame, got %v", *slept)
	}
}

func TestFrameClock_ZeroFPSNeverSleeps(t *testing.T) {
	c, _, slept := newTestFrameClock()
	for range 3 {
		c.Tick(0)
	}
	if len(*slept) != 0 {
		t.Fatalf("expected no sleep, got %v", *slept)
	}
}
