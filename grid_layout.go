// grid_layout.go - Grid geometry for composing sub-environment frames

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

/*
grid_layout.go - Grid Layout Searches

Two ways of arranging N equally sized cells into a grid:

  Padded (display):  rows*cols >= N, cells rescaled so the whole grid fits a
                     fixed screen; unused cells stay black.
  Tiled (recording): rows*cols == N exactly, cells kept at native size, the
                     divisor pair chosen to land closest to a target aspect.

Both place cell i at row i/cols, column i%cols.

            cols ->
          ┌─────┬─────┬─────┐
     rows │  0  │  1  │  2  │
       |  ├─────┼─────┼─────┤
       v  │  3  │  4  │  5  │
          └─────┴─────┴─────┘
*/

package vecrender

import (
	"fmt"
	"math"
)

// GridLayout is a rows x cols arrangement of cells.
type GridLayout struct {
	Rows int
	Cols int
}

// Cells returns the number of slots in the grid.
func (g GridLayout) Cells() int {
	return g.Rows * g.Cols
}

// Cell maps a cell index to its row-major grid position.
func (g GridLayout) Cell(i int) (row, col int) {
	return i / g.Cols, i % g.Cols
}

func (g GridLayout) String() string {
	return fmt.Sprintf("%dx%d", g.Rows, g.Cols)
}

// PaddedGrid is a display layout: the grid plus the rescaled cell size.
type PaddedGrid struct {
	GridLayout
	CellW int
	CellH int
}

// PaddedLayout finds the smallest grid holding n cells of native size
// cellW x cellH that best keeps their aspect ratio when the grid is scaled
// uniformly to fit a screenW x screenH screen.
//
// The grid grows whichever dimension currently covers less of its share of
// the screen; ties grow both. The scaled cell size is truncated to whole
// pixels, so CellW*Cols <= screenW and CellH*Rows <= screenH always hold,
// and at least one of them is short by less than one pixel per cell.
func PaddedLayout(n, cellW, cellH, screenW, screenH int) (PaddedGrid, error) {
	if n < 1 {
		return PaddedGrid{}, newError(ErrInvalidLayout, "padded layout", "need at least one cell, got %d", n)
	}
	if cellW <= 0 || cellH <= 0 || screenW <= 0 || screenH <= 0 {
		return PaddedGrid{}, newError(ErrInvalidLayout, "padded layout",
			"cell %dx%d and screen %dx%d must be positive", cellW, cellH, screenW, screenH)
	}

	widthRatio := float64(cellW) / float64(screenW)
	heightRatio := float64(cellH) / float64(screenH)

	rows, cols := 1, 1
	for rows*cols < n {
		rowRatio := float64(rows) * heightRatio
		colRatio := float64(cols) * widthRatio
		switch {
		case rowRatio == colRatio:
			rows, cols = rows+1, cols+1
		case rowRatio > colRatio:
			cols++
		default:
			rows++
		}
	}

	// Scale by min(W/(cols*w), H/(rows*h)) in integers so the limiting side
	// is tight to within one pixel per cell.
	grid := PaddedGrid{GridLayout: GridLayout{Rows: rows, Cols: cols}}
	if screenW*rows*cellH <= screenH*cols*cellW {
		grid.CellW = screenW / cols
		grid.CellH = cellH * screenW / (cols * cellW)
	} else {
		grid.CellH = screenH / rows
		grid.CellW = cellW * screenH / (rows * cellH)
	}
	if grid.CellW == 0 || grid.CellH == 0 {
		return PaddedGrid{}, newError(ErrInvalidLayout, "padded layout",
			"%d cells of %dx%d do not fit a %dx%d screen", n, cellW, cellH, screenW, screenH)
	}
	return grid, nil
}

// TiledLayout finds the divisor pair rows x cols == n, rows <= sqrt(n),
// whose native-size grid aspect (cols*cellW)/(rows*cellH) is closest to
// aspectW/aspectH. The first pair reaching the minimum wins.
func TiledLayout(n, cellH, cellW, aspectW, aspectH int) (GridLayout, error) {
	if n < 1 {
		return GridLayout{}, newError(ErrInvalidLayout, "tiled layout", "need at least one cell, got %d", n)
	}
	if cellW <= 0 || cellH <= 0 {
		return GridLayout{}, newError(ErrInvalidLayout, "tiled layout", "cell %dx%d must be positive", cellW, cellH)
	}
	if aspectW <= 0 || aspectH <= 0 {
		return GridLayout{}, newError(ErrInvalidLayout, "tiled layout", "aspect ratio %d:%d must be positive", aspectW, aspectH)
	}

	target := float64(aspectW) / float64(aspectH)
	best := GridLayout{Rows: 1, Cols: n}
	minDiff := math.Inf(1)
	for rows := 1; rows <= isqrt(n); rows++ {
		if n%rows != 0 {
			continue
		}
		cols := n / rows
		aspect := float64(cols*cellW) / float64(rows*cellH)
		if diff := math.Abs(aspect - target); diff < minDiff {
			minDiff = diff
			best = GridLayout{Rows: rows, Cols: cols}
		}
	}
	return best, nil
}

// isqrt returns floor(sqrt(n)) for n >= 0.
func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
