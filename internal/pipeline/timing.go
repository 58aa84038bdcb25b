package pipeline

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// TimingEnv names the environment variable that forces timing output to
// the given JSONL path.
const TimingEnv = "DFG2BLIF_TIMING_JSONL"

// TimingEvent is one JSON line of the timing output.
type TimingEvent struct {
	Stage      string  `json:"stage"`
	Graph      string  `json:"graph,omitempty"`
	Status     string  `json:"status"`
	StartMS    float64 `json:"start_ms"`
	DurationMS float64 `json:"duration_ms"`
	EndMS      float64 `json:"end_ms"`
}

type timingRecorder struct {
	enabled bool
	start   time.Time
	graph   string
	mu      sync.Mutex
	file    *os.File
	enc     *json.Encoder
	err     error
}

// newTimingRecorder appends events to path. An empty path yields a
// recorder that drops everything.
func newTimingRecorder(start time.Time, path, graph string) *timingRecorder {
	tr := &timingRecorder{start: start, graph: graph}
	if path == "" {
		return tr
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		tr.err = err
		return tr
	}
	tr.enabled = true
	tr.file = f
	tr.enc = json.NewEncoder(f)
	return tr
}

func (tr *timingRecorder) Err() error {
	if tr == nil {
		return nil
	}
	return tr.err
}

func (tr *timingRecorder) Close() {
	if tr == nil || tr.file == nil {
		return
	}
	_ = tr.file.Close()
}

// stage times fn and records it under name. The error of fn is returned
// unchanged.
func (tr *timingRecorder) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	status := "ok"
	if err != nil {
		status = "error"
	}
	tr.record(name, status, start, time.Since(start))
	return err
}

func (tr *timingRecorder) record(stage, status string, start time.Time, duration time.Duration) {
	if tr == nil || !tr.enabled {
		return
	}
	startMS := durationToMS(start.Sub(tr.start))
	durationMS := durationToMS(duration)
	event := TimingEvent{
		Stage:      stage,
		Graph:      tr.graph,
		Status:     status,
		StartMS:    startMS,
		DurationMS: durationMS,
		EndMS:      startMS + durationMS,
	}
	tr.mu.Lock()
	_ = tr.enc.Encode(event)
	tr.mu.Unlock()
}

func durationToMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1_000_000.0
}

// resolveTimingPath returns where timing events go, or "" when timing is
// off. The environment variable wins over the configuration.
func (p *Pipeline) resolveTimingPath() string {
	if envPath := os.Getenv(TimingEnv); envPath != "" {
		return envPath
	}
	if p.cfg.Timing.Enabled {
		return p.cfg.Timing.Path
	}
	return ""
}
