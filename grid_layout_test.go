// grid_layout_test.go - Layout search tests

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

func TestTiledLayout_NineSquareFrames(t *testing.T) {
	got, err := TiledLayout(9, 64, 64, 1, 1)
	if err != nil {
		t.Fatalf("TiledLayout returned error: %v", err)
	}
	if got != (GridLayout{Rows: 3, Cols: 3}) {
		t.Fatalf("expected 3x3, got %v", got)
	}
}

func TestTiledLayout_ExactTilingProperty(t *testing.T) {
	aspects := [][2]int{{1, 1}, {16, 9}, {9, 16}, {4, 3}, {1, 5}}
	for n := 1; n <= 64; n++ {
		for _, a := range aspects {
			got, err := TiledLayout(n, 48, 64, a[0], a[1])
			if err != nil {
				t.Fatalf("n=%d aspect=%v: %v", n, a, err)
			}
			if got.Rows*got.Cols != n {
				t.Fatalf("n=%d aspect=%v: %v does not tile exactly", n, a, got)
			}
			if got.Rows > got.Cols {
				t.Fatalf("n=%d aspect=%v: rows %d exceed cols %d", n, a, got.Rows, got.Cols)
			}
		}
	}
}

func TestTiledLayout_PrimeFallsBackToSingleRow(t *testing.T) {
	for _, n := range []int{2, 3, 5, 7, 11, 13} {
		got, err := TiledLayout(n, 10, 10, 1, 1)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if got != (GridLayout{Rows: 1, Cols: n}) {
			t.Fatalf("n=%d: expected 1x%d, got %v", n, n, got)
		}
	}
}

func TestTiledLayout_WideAspectPrefersFewerRows(t *testing.T) {
	// 12 square cells: 1x12 (12.0), 2x6 (3.0), 3x4 (1.33). A 5:1 target picks 2x6.
	got, err := TiledLayout(12, 10, 10, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != (GridLayout{Rows: 2, Cols: 6}) {
		t.Fatalf("expected 2x6, got %v", got)
	}
}

func TestTiledLayout_FirstMinimumWins(t *testing.T) {
	// 4 cells 2 wide, 1 tall: 1x4 has aspect 8, 2x2 has aspect 2. A 5:1
	// target is 3 from both, so the earlier candidate is kept.
	got, err := TiledLayout(4, 1, 2, 5, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != (GridLayout{Rows: 1, Cols: 4}) {
		t.Fatalf("expected 1x4, got %v", got)
	}
}

func TestTiledLayout_InvalidInputs(t *testing.T) {
	cases := []struct {
		name                    string
		n, cellH, cellW, aw, ah int
	}{
		{"zero cells", 0, 10, 10, 1, 1},
		{"zero height", 4, 0, 10, 1, 1},
		{"negative width", 4, 10, -1, 1, 1},
		{"zero aspect", 4, 10, 10, 0, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := TiledLayout(tc.n, tc.cellH, tc.cellW, tc.aw, tc.ah)
			if !errors.Is(err, ErrInvalidLayout) {
				t.Fatalf("expected ErrInvalidLayout, got %v", err)
			}
		})
	}
}

func TestPaddedLayout_NineFramesOnSquareScreen(t *testing.T) {
	got, err := PaddedLayout(9, 64, 64, 480, 480)
	if err != nil {
		t.Fatalf("PaddedLayout returned error: %v", err)
	}
	if got.Rows != 3 || got.Cols != 3 {
		t.Fatalf("expected 3x3, got %v", got.GridLayout)
	}
	if got.CellW != 160 || got.CellH != 160 {
		t.Fatalf("expected 160x160 cells, got %dx%d", got.CellW, got.CellH)
	}
}

func TestPaddedLayout_FitsScreenProperty(t *testing.T) {
	screens := [][2]int{{480, 480}, {640, 360}, {200, 900}, {64, 64}}
	cells := [][2]int{{64, 64}, {600, 400}, {32, 96}}
	for n := 1; n <= 40; n++ {
		for _, s := range screens {
			for _, c := range cells {
				got, err := PaddedLayout(n, c[0], c[1], s[0], s[1])
				if err != nil {
					t.Fatalf("n=%d cell=%v screen=%v: %v", n, c, s, err)
				}
				if got.Cells() < n {
					t.Fatalf("n=%d: %v has too few cells", n, got.GridLayout)
				}
				if got.CellW*got.Cols > s[0] || got.CellH*got.Rows > s[1] {
					t.Fatalf("n=%d cell=%v screen=%v: %dx%d cells overflow", n, c, s, got.CellW, got.CellH)
				}
				if s[0]-got.CellW*got.Cols >= got.Cols && s[1]-got.CellH*got.Rows >= got.Rows {
					t.Fatalf("n=%d cell=%v screen=%v: %dx%d cells leave both sides slack", n, c, s, got.CellW, got.CellH)
				}
			}
		}
	}
}

func TestPaddedLayout_SingleFrameFillsScreen(t *testing.T) {
	got, err := PaddedLayout(1, 100, 50, 400, 200)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows != 1 || got.Cols != 1 || got.CellW != 400 || got.CellH != 200 {
		t.Fatalf("expected a single 400x200 cell, got %+v", got)
	}
}

func TestPaddedLayout_WideScreenGrowsColumns(t *testing.T) {
	// Two square frames on a 2:1 screen sit side by side.
	got, err := PaddedLayout(2, 64, 64, 256, 128)
	if err != nil {
		t.Fatal(err)
	}
	if got.Rows != 1 || got.Cols != 2 {
		t.Fatalf("expected 1x2, got %v", got.GridLayout)
	}
	if got.CellW != 128 || got.CellH != 128 {
		t.Fatalf("expected 128x128 cells, got %dx%d", got.CellW, got.CellH)
	}
}

func TestPaddedLayout_TooManyCells(t *testing.T) {
	_, err := PaddedLayout(10000, 64, 64, 8, 8)
	if !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}
}

func TestPaddedLayout_InvalidInputs(t *testing.T) {
	if _, err := PaddedLayout(0, 64, 64, 100, 100); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("zero cells: expected ErrInvalidLayout, got %v", err)
	}
	if _, err := PaddedLayout(4, 64, 64, 0, 100); !errors.Is(err, ErrInvalidLayout) {
		t.Fatalf("zero screen: expected ErrInvalidLayout, got %v", err)
	}
}

func TestGridLayout_CellIsRowMajor(t *testing.T) {
	g := GridLayout{Rows: 2, Cols: 3}
	want := [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}
	for i, w := range want {
		r, c := g.Cell(i)
		if r != w[0] || c != w[1] {
			t.Fatalf("cell %d: expected (%d,%d), got (%d,%d)", i, w[0], w[1], r, c)
		}
	}
	if g.String() != "2x3" {
		t.Fatalf("expected 2x3, got %s", g.String())
	}
}

func TestIsqrt(t *testing.T) {
	for n := 0; n <= 10000; n++ {
		r := isqrt(n)
		if r*r > n || (r+1)*(r+1) <= n {
			t.Fatalf("isqrt(%d) = %d", n, r)
		}
	}
}
