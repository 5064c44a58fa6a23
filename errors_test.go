// errors_test.go - Error type tests

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
	"io/fs"
	"strings"
	"testing"
)

func TestError_MatchesKindAndCause(t *testing.T) {
	err := wrapError(ErrConfiguration, "video recorder", fs.ErrPermission, "creating %q", "/videos")
	if !errors.Is(err, ErrConfiguration) {
		t.Fatal("expected errors.Is to match the kind")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Fatal("expected errors.Is to match the cause")
	}
	if errors.Is(err, ErrNotRecording) {
		t.Fatal("unexpected match on an unrelated kind")
	}
	var ve *Error
	if !errors.As(err, &ve) || ve.Operation != "video recorder" {
		t.Fatalf("expected *Error with operation, got %#v", ve)
	}
}

func TestError_Message(t *testing.T) {
	err := newError(ErrInvalidLayout, "tiled layout", "need at least one cell, got %d", 0)
	want := "vecrender tiled layout failed: invalid grid layout input: need at least one cell, got 0"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
	wrapped := wrapError(ErrEnvContract, "compose", errors.New("frame 1 is nil"), "malformed batch")
	if !strings.HasSuffix(wrapped.Error(), "malformed batch: frame 1 is nil") {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
}
