// Package pipeline drives a translation from a graph file to a netlist:
// load, validate, build, attribute pass, linking, fanout reduction and
// emission, strictly in that order. The first stage that fails ends the
// run and nothing is written.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robert-at-pretension-io/dfg2blif/internal/blif"
	"github.com/robert-at-pretension-io/dfg2blif/internal/config"
	"github.com/robert-at-pretension-io/dfg2blif/internal/dfg"
	"github.com/robert-at-pretension-io/dfg2blif/internal/extractor"
	"github.com/robert-at-pretension-io/dfg2blif/internal/fanout"
	"github.com/robert-at-pretension-io/dfg2blif/internal/linker"
	"github.com/robert-at-pretension-io/dfg2blif/internal/loader"
	"github.com/robert-at-pretension-io/dfg2blif/internal/validator"
)

// ErrSchema is returned when a graph description violates the graph schema.
// The message lists every violation.
var ErrSchema = errors.New("schema validation failed")

// Stdout is the output path that writes the netlist to standard output.
const Stdout = "-"

// Pipeline translates graph descriptions with one configuration.
type Pipeline struct {
	cfg       *config.Config
	log       *slog.Logger
	validator *validator.Validator
	loader    *loader.Loader

	// Stdout receives netlists written to the "-" output.
	Stdout io.Writer
	// Now stamps the netlist when the configuration asks for a timestamp.
	Now func() time.Time
}

// Stats summarizes one compilation.
type Stats struct {
	Nodes   int
	Edges   int
	Extract extractor.Stats
	Fanout  fanout.Stats
}

// New creates a Pipeline. A nil cfg means config.DefaultConfig() and a nil
// logger means slog.Default().
func New(cfg *config.Config, log *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	v, err := validator.New()
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		validator: v,
		loader:    loader.New(v),
		Stdout:    os.Stdout,
		Now:       time.Now,
	}, nil
}

// Config returns the configuration the pipeline runs with.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Load reads the graph description at path.
func (p *Pipeline) Load(path string) (*dfg.Description, error) {
	return p.loader.Load(path)
}

// Compile builds the graph of desc and runs every pass up to, but not
// including, emission.
func (p *Pipeline) Compile(desc *dfg.Description) (*dfg.Graph, Stats, error) {
	return p.compile(desc, nil)
}

func (p *Pipeline) compile(desc *dfg.Description, tr *timingRecorder) (*dfg.Graph, Stats, error) {
	var (
		stats Stats
		g     *dfg.Graph
	)

	err := tr.stage("validate", func() error {
		if errs := p.validator.ValidationErrors(desc); len(errs) > 0 {
			return fmt.Errorf("graph %q: %w: %s", desc.Name, ErrSchema, strings.Join(errs, "; "))
		}
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	err = tr.stage("build", func() error {
		var err error
		g, err = dfg.FromDescription(desc)
		return err
	})
	if err != nil {
		return nil, stats, err
	}
	p.log.Debug("read graph",
		slog.String("graph", g.Name),
		slog.Bool("directed", !desc.Undirected),
		slog.Int("nodes", g.NumNodes()),
		slog.Int("edges", g.NumEdges()))

	err = tr.stage("extract", func() error {
		ex := extractor.New(extractor.Options{
			DefaultChannelWidth: p.cfg.DefaultChannelWidth,
			SinkSuffix:          p.cfg.SinkSuffix,
		}, p.log)
		var err error
		stats.Extract, err = ex.Extract(g)
		return err
	})
	if err != nil {
		return nil, stats, err
	}
	p.log.Debug("attribute pass done",
		slog.Int("channel_width", g.ChannelWidth),
		slog.Int("valid", stats.Extract.Valid),
		slog.Int("skipped", stats.Extract.Unspecified),
		slog.Int("sinks", stats.Extract.SinksCreated))

	err = tr.stage("link", func() error {
		return linker.Link(g, p.log)
	})
	if err != nil {
		return nil, stats, err
	}

	err = tr.stage("fanout", func() error {
		var err error
		stats.Fanout, err = fanout.Reduce(g, p.log)
		return err
	})
	if err != nil {
		return nil, stats, err
	}

	stats.Nodes = g.NumNodes()
	stats.Edges = g.NumEdges()
	return g, stats, nil
}

// Translate compiles desc and writes its netlist to w. Nothing is written
// when a pass fails.
func (p *Pipeline) Translate(desc *dfg.Description, w io.Writer) (Stats, error) {
	return p.translate(desc, w, nil)
}

func (p *Pipeline) translate(desc *dfg.Description, w io.Writer, tr *timingRecorder) (Stats, error) {
	g, stats, err := p.compile(desc, tr)
	if err != nil {
		return stats, err
	}
	err = tr.stage("emit", func() error {
		return blif.Emit(w, g, p.emitOptions())
	})
	return stats, err
}

func (p *Pipeline) emitOptions() blif.Options {
	opts := blif.Options{
		ModelName: p.cfg.ModelName,
		Header:    p.cfg.Header,
	}
	if p.cfg.Timestamp {
		opts.Timestamp = p.Now()
	}
	return opts
}

// Run translates the graph file at inputPath and writes the netlist to
// outputPath, or to Stdout when outputPath is "-". The file is replaced
// only once the whole netlist has been produced.
func (p *Pipeline) Run(inputPath, outputPath string) error {
	runStart := time.Now()
	tr := newTimingRecorder(runStart, p.resolveTimingPath(), inputPath)
	if err := tr.Err(); err != nil {
		p.log.Warn("timing output disabled", slog.String("error", err.Error()))
	}
	defer tr.Close()

	err := p.run(inputPath, outputPath, tr)
	status := "ok"
	if err != nil {
		status = "error"
	}
	tr.record("total", status, runStart, time.Since(runStart))
	return err
}

func (p *Pipeline) run(inputPath, outputPath string, tr *timingRecorder) error {
	var desc *dfg.Description
	err := tr.stage("load", func() error {
		var err error
		desc, err = p.loader.Load(inputPath)
		return err
	})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	stats, err := p.translate(desc, &buf, tr)
	if err != nil {
		return fmt.Errorf("%s: %w", inputPath, err)
	}

	err = tr.stage("write", func() error {
		if outputPath == Stdout {
			_, err := p.Stdout.Write(buf.Bytes())
			return err
		}
		return writeFileAtomic(outputPath, buf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("writing netlist: %w", err)
	}

	p.log.Info("wrote netlist",
		slog.String("graph", inputPath),
		slog.String("output", outputPath),
		slog.Int("nodes", stats.Nodes),
		slog.Int("edges", stats.Edges),
		slog.Int("forks_reduced", stats.Fanout.ForksReduced))
	return nil
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
