// video_encoder.go - Video file encoding for recorded clips

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
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"iter"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/term"
)

func init() {
	compiledFeatures = append(compiledFeatures, "encoder:ffmpeg")
}

// Clip is an ordered run of equally sized frames ready for encoding.
type Clip struct {
	Name   string
	Width  int
	Height int
	FPS    int
	Len    int
	Frames iter.Seq[*image.RGBA]
}

// VideoEncoder writes a clip to a video file.
type VideoEncoder interface {
	// Available reports whether the encoder can run on this host.
	Available() error
	// Encode blocks until path has been written.
	Encode(ctx context.Context, path string, clip Clip) error
}

// FFmpegEncoder pipes raw rgb24 frames into an ffmpeg process producing
// H.264 in an MP4 container.
type FFmpegEncoder struct {
	Binary   string       // Defaults to "ffmpeg" resolved through PATH
	Progress bool         // Report encoding progress
	Output   io.Writer    // Progress destination, defaults to os.Stderr
	Logger   *slog.Logger // Used for progress when Output is not a terminal
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary != "" {
		return e.Binary
	}
	return "ffmpeg"
}

func (e *FFmpegEncoder) Available() error {
	if _, err := exec.LookPath(e.binary()); err != nil {
		return wrapError(ErrDependencyNotInstalled, "encoder check", err,
			"ffmpeg is not installed; install it from https://ffmpeg.org or your package manager")
	}
	return nil
}

// ffmpegArgs builds the command line for a clip. libx264 with yuv420p needs
// even dimensions, so odd sizes are padded by one black pixel.
func ffmpegArgs(path string, clip Clip, progress bool) []string {
	level := "error"
	if progress {
		level = "info"
	}
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", level,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", clip.Width, clip.Height),
		"-r", strconv.Itoa(clip.FPS),
		"-i", "-",
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		path,
	}
}

func (e *FFmpegEncoder) Encode(ctx context.Context, path string, clip Clip) error {
	if clip.Width <= 0 || clip.Height <= 0 || clip.FPS <= 0 {
		return newError(ErrConfiguration, "encode", "clip %dx%d at %d fps is not encodable", clip.Width, clip.Height, clip.FPS)
	}

	cmd := exec.CommandContext(ctx, e.binary(), ffmpegArgs(path, clip, e.Progress)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return wrapError(ErrDependencyNotInstalled, "encode", err, "could not start %s", e.binary())
	}

	progress := e.newProgress(clip)
	writeErr := writeRGB24(stdin, clip, progress)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()
	progress.finish()

	if waitErr != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", path, waitErr, strings.TrimSpace(stderr.String()))
	}
	if writeErr != nil {
		return fmt.Errorf("ffmpeg %s: writing frames: %w", path, writeErr)
	}
	return closeErr
}

// writeRGB24 streams clip frames as packed rgb24 rows.
func writeRGB24(w io.Writer, clip Clip, progress *encodeProgress) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	row := make([]byte, clip.Width*3)
	n := 0
	for frame := range clip.Frames {
		b := frame.Bounds()
		if b.Dx() != clip.Width || b.Dy() != clip.Height {
			return fmt.Errorf("frame %d is %dx%d, clip is %dx%d", n, b.Dx(), b.Dy(), clip.Width, clip.Height)
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			src := frame.Pix[frame.PixOffset(b.Min.X, y):]
			for x := 0; x < clip.Width; x++ {
				row[x*3+0] = src[x*4+0]
				row[x*3+1] = src[x*4+1]
				row[x*3+2] = src[x*4+2]
			}
			if _, err := bw.Write(row); err != nil {
				return err
			}
		}
		n++
		progress.advance(n)
	}
	return bw.Flush()
}

type encodeProgress struct {
	enabled bool
	tty     bool
	out     io.Writer
	logger  *slog.Logger
	name    string
	total   int
	lastPct int
}

func (e *FFmpegEncoder) newProgress(clip Clip) *encodeProgress {
	p := &encodeProgress{enabled: e.Progress, name: clip.Name, total: clip.Len, lastPct: -1}
	if !p.enabled {
		return p
	}
	p.out = e.Output
	if p.out == nil {
		p.out = os.Stderr
	}
	if f, ok := p.out.(*os.File); ok {
		p.tty = term.IsTerminal(int(f.Fd()))
	}
	p.logger = loggerOr(e.Logger)
	return p
}

func (p *encodeProgress) advance(done int) {
	if !p.enabled || p.total <= 0 {
		return
	}
	pct := done * 100 / p.total
	if pct == p.lastPct {
		return
	}
	p.lastPct = pct
	if p.tty {
		const width = 30
		fill := pct * width / 100
		fmt.Fprintf(p.out, "\rencoding %s [%s%s] %3d%% (%d/%d)",
			p.name, strings.Repeat("#", fill), strings.Repeat(" ", width-fill), pct, done, p.total)
		return
	}
	if pct%25 == 0 {
		p.logger.Info("encoding video", "name", p.name, "frames", done, "total", p.total, "percent", pct)
	}
}

func (p *encodeProgress) finish() {
	if p.enabled && p.tty {
		fmt.Fprintln(p.out)
	}
}
