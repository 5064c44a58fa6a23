// frame_compose.go - Blitting sub-environment frames into one grid frame

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
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// ComposeTiled places every frame of batch at native size into a new
// layout.Rows*h x layout.Cols*w RGBA image, row-major. All frames must share
// one size and len(batch) must not exceed layout.Cells().
func ComposeTiled(layout GridLayout, batch FrameBatch) (*image.RGBA, error) {
	w, h, err := checkBatch(batch, 0)
	if err != nil {
		return nil, wrapError(ErrEnvContract, "compose tiled", err, "malformed batch")
	}
	if len(batch) > layout.Cells() {
		return nil, newError(ErrInvalidLayout, "compose tiled", "%d frames do not fit a %v grid", len(batch), layout)
	}

	grid := image.NewRGBA(image.Rect(0, 0, layout.Cols*w, layout.Rows*h))
	for i, frame := range batch {
		row, col := layout.Cell(i)
		dst := image.Rect(col*w, row*h, (col+1)*w, (row+1)*h)
		draw.Draw(grid, dst, frame, frame.Bounds().Min, draw.Src)
	}
	return grid, nil
}

// composePadded clears screen and draws every frame rescaled to the grid's
// cell size, row-major from the top-left corner. Cells past len(batch) stay
// black.
func composePadded(screen *image.RGBA, grid PaddedGrid, batch FrameBatch, scaler xdraw.Scaler) {
	clear(screen.Pix)
	for i, frame := range batch {
		row, col := grid.Cell(i)
		x := screen.Rect.Min.X + col*grid.CellW
		y := screen.Rect.Min.Y + row*grid.CellH
		dst := image.Rect(x, y, x+grid.CellW, y+grid.CellH)
		scaler.Scale(screen, dst, frame, frame.Bounds(), xdraw.Src, nil)
	}
	for i := 3; i < len(screen.Pix); i += 4 {
		screen.Pix[i] = 0xFF
	}
}
