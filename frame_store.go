// frame_store.go - Buffers for composed frames awaiting encoding

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
	"fmt"
	"image"
	"iter"

	"github.com/pierrec/lz4/v4"
)

// frameStore holds the composed frames of one recording in capture order.
// Every frame in a store shares the bounds of the first one appended.
type frameStore interface {
	Append(frame *image.RGBA) error
	Len() int
	Bounds() image.Rectangle
	// Frames yields the stored frames in order. A yielded image may be
	// reused by the next iteration.
	Frames() iter.Seq[*image.RGBA]
	// Err reports the first decode failure of the last Frames iteration.
	Err() error
	Reset()
}

func newFrameStore(compressed bool) frameStore {
	if compressed {
		return &lz4FrameStore{}
	}
	return &rawFrameStore{}
}

func checkStoreBounds(have, got image.Rectangle, n int) error {
	if n > 0 && (have.Dx() != got.Dx() || have.Dy() != got.Dy()) {
		return fmt.Errorf("frame is %dx%d, recording is %dx%d", got.Dx(), got.Dy(), have.Dx(), have.Dy())
	}
	return nil
}

type rawFrameStore struct {
	frames []*image.RGBA
}

func (s *rawFrameStore) Append(frame *image.RGBA) error {
	if err := checkStoreBounds(s.Bounds(), frame.Bounds(), len(s.frames)); err != nil {
		return err
	}
	s.frames = append(s.frames, frame)
	return nil
}

func (s *rawFrameStore) Len() int { return len(s.frames) }

func (s *rawFrameStore) Bounds() image.Rectangle {
	if len(s.frames) == 0 {
		return image.Rectangle{}
	}
	return s.frames[0].Bounds()
}

func (s *rawFrameStore) Frames() iter.Seq[*image.RGBA] {
	return func(yield func(*image.RGBA) bool) {
		for _, f := range s.frames {
			if !yield(f) {
				return
			}
		}
	}
}

func (s *rawFrameStore) Err() error { return nil }

func (s *rawFrameStore) Reset() {
	clear(s.frames)
	s.frames = nil
}

// lz4FrameStore keeps each frame as an lz4 block. Rendered scenes are mostly
// flat colour, so clips shrink by an order of magnitude while buffered.
type lz4FrameStore struct {
	bounds image.Rectangle
	blocks []lz4Block
	err    error
}

type lz4Block struct {
	data []byte
	raw  bool // stored uncompressed because lz4 could not shrink it
}

func (s *lz4FrameStore) Append(frame *image.RGBA) error {
	if err := checkStoreBounds(s.bounds, frame.Bounds(), len(s.blocks)); err != nil {
		return err
	}
	pix := packedPix(frame)
	bound := lz4.CompressBlockBound(len(pix))
	dst := make([]byte, bound)
	written, err := lz4.CompressBlock(pix, dst, nil)
	if err != nil {
		return fmt.Errorf("lz4 compress: %w", err)
	}
	block := lz4Block{data: dst[:written]}
	if written == 0 || written >= len(pix) {
		block = lz4Block{data: append([]byte(nil), pix...), raw: true}
	}
	if len(s.blocks) == 0 {
		s.bounds = frame.Bounds()
	}
	s.blocks = append(s.blocks, block)
	return nil
}

func (s *lz4FrameStore) Len() int { return len(s.blocks) }

func (s *lz4FrameStore) Bounds() image.Rectangle { return s.bounds }

func (s *lz4FrameStore) Frames() iter.Seq[*image.RGBA] {
	s.err = nil
	return func(yield func(*image.RGBA) bool) {
		if len(s.blocks) == 0 {
			return
		}
		img := image.NewRGBA(s.bounds)
		for i, block := range s.blocks {
			if block.raw {
				copy(img.Pix, block.data)
			} else {
				read, err := lz4.UncompressBlock(block.data, img.Pix)
				if err == nil && read != len(img.Pix) {
					err = fmt.Errorf("got %d bytes, expected %d", read, len(img.Pix))
				}
				if err != nil {
					s.err = errors.Join(s.err, fmt.Errorf("lz4 decompress frame %d: %w", i, err))
					return
				}
			}
			if !yield(img) {
				return
			}
		}
	}
}

func (s *lz4FrameStore) Err() error { return s.err }

func (s *lz4FrameStore) Reset() {
	s.blocks = nil
	s.bounds = image.Rectangle{}
	s.err = nil
}

// packedPix returns the frame's pixels without row padding.
func packedPix(frame *image.RGBA) []byte {
	b := frame.Bounds()
	rowLen := b.Dx() * 4
	if frame.Stride == rowLen && len(frame.Pix) == rowLen*b.Dy() {
		return frame.Pix
	}
	out := make([]byte, 0, rowLen*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := frame.PixOffset(b.Min.X, y)
		out = append(out, frame.Pix[off:off+rowLen]...)
	}
	return out
}
