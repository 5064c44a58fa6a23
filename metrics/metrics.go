// metrics.go - Prometheus instrumentation for recorders and composers

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

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/intuitionamiga/vecrender"
)

var (
	_ vecrender.RecorderObserver = (*Metrics)(nil)
	_ vecrender.DisplayObserver  = (*Metrics)(nil)
)

// Metrics holds Prometheus counters and gauges for a rendering session. It
// can be set as both RecorderConfig.Observer and ComposerConfig.Observer.
type Metrics struct {
	registry          *prometheus.Registry
	framesCaptured    prometheus.Counter
	videosWritten     prometheus.Counter
	videoFramesTotal  prometheus.Counter
	videosSkipped     prometheus.Counter
	recordingsAborted prometheus.Counter
	framesPresented   prometheus.Counter
	episodesTotal     prometheus.Counter
	stepsTotal        prometheus.Counter
	bufferedFrames    prometheus.Gauge
}

// New creates and registers the session metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		framesCaptured: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_frames_captured_total",
			Help: "Total number of composed frames buffered for recording",
		}),
		videosWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_videos_written_total",
			Help: "Total number of video files written",
		}),
		videoFramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_video_frames_total",
			Help: "Total number of frames encoded into video files",
		}),
		videosSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_videos_skipped_total",
			Help: "Total number of recordings stopped with no frames",
		}),
		recordingsAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_recordings_aborted_total",
			Help: "Total number of recordings stopped by a malformed frame",
		}),
		framesPresented: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_frames_presented_total",
			Help: "Total number of frames shown on the live display",
		}),
		episodesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_episodes_total",
			Help: "Total number of vector env resets",
		}),
		stepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vecrender_steps_total",
			Help: "Total number of vector env steps",
		}),
		bufferedFrames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vecrender_buffered_frames",
			Help: "Number of frames held by the recording in progress",
		}),
	}

	registry.MustRegister(
		m.framesCaptured,
		m.videosWritten,
		m.videoFramesTotal,
		m.videosSkipped,
		m.recordingsAborted,
		m.framesPresented,
		m.episodesTotal,
		m.stepsTotal,
		m.bufferedFrames,
	)
	return m
}

// FrameCaptured counts a buffered frame and tracks the buffer depth.
func (m *Metrics) FrameCaptured(buffered int) {
	m.framesCaptured.Inc()
	m.bufferedFrames.Set(float64(buffered))
}

// VideoWritten counts a saved video and its frames.
func (m *Metrics) VideoWritten(_ string, frames int) {
	m.videosWritten.Inc()
	m.videoFramesTotal.Add(float64(frames))
	m.bufferedFrames.Set(0)
}

// VideoSkipped counts a recording that ended empty.
func (m *Metrics) VideoSkipped(string) {
	m.videosSkipped.Inc()
	m.bufferedFrames.Set(0)
}

// RecordingAborted counts a recording cut short by a malformed frame.
func (m *Metrics) RecordingAborted(string) {
	m.recordingsAborted.Inc()
}

// FramePresented counts a frame shown on the live display.
func (m *Metrics) FramePresented() {
	m.framesPresented.Inc()
}

// IncEpisodes increments the episode counter.
func (m *Metrics) IncEpisodes() {
	m.episodesTotal.Inc()
}

// IncSteps increments the step counter.
func (m *Metrics) IncSteps() {
	m.stepsTotal.Inc()
}

// SetBufferedFrames sets the buffered frames gauge.
func (m *Metrics) SetBufferedFrames(n int) {
	m.bufferedFrames.Set(float64(n))
}

// Registry returns the registry the metrics are registered in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
