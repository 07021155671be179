// Package fontfix rewrites the font declarations of an unpacked
// presentation package: the theme font scheme, the master text styles,
// and per-slide run overrides.
package fontfix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"regexp"
	"slices"
	"sync"

	"github.com/beevik/etree"
	"golang.org/x/sync/errgroup"

	"github.com/starford/fontfix/internal/apperr"
	"github.com/starford/fontfix/internal/models"
	"github.com/starford/fontfix/internal/ooxml"
	"github.com/starford/fontfix/internal/storage"
)

// Pass names.
const (
	PassTheme  = "theme"
	PassMaster = "master"
	PassSlides = "slides"
)

// AllPasses lists every pass in the order Run applies them.
var AllPasses = []string{PassTheme, PassMaster, PassSlides}

// target is a family of parts one pass rewrites: files directly inside
// dir whose base name matches pattern.
type target struct {
	pass    string
	dir     string
	pattern *regexp.Regexp
}

var (
	themeTarget        = target{PassTheme, "ppt/theme", regexp.MustCompile(`^theme\d+\.xml$`)}
	presentationTarget = target{PassMaster, "ppt", regexp.MustCompile(`^presentation\.xml$`)}
	masterTarget       = target{PassMaster, "ppt/slideMasters", regexp.MustCompile(`^slideMaster\d+\.xml$`)}
	slideTarget        = target{PassSlides, "ppt/slides", regexp.MustCompile(`^slide\d+\.xml$`)}
	layoutTarget       = target{PassSlides, "ppt/slideLayouts", regexp.MustCompile(`^slideLayout\d+\.xml$`)}

	targets = []target{themeTarget, presentationTarget, masterTarget, slideTarget, layoutTarget}
)

// WatchDirs returns the package-relative directories holding parts that
// some pass rewrites.
func WatchDirs() []string {
	var dirs []string
	for _, t := range targets {
		if !slices.Contains(dirs, t.dir) {
			dirs = append(dirs, t.dir)
		}
	}
	return dirs
}

// partFunc mutates a parsed part in place. Diagnostic text goes to w.
type partFunc func(doc *etree.Document, w io.Writer) error

type job struct {
	pass string
	path string
	fn   partFunc
}

// Options configures a Rewriter.
type Options struct {
	// Logger receives structured progress logs. Defaults to slog.Default().
	Logger *slog.Logger
	// Out receives the human-readable before/after font listings.
	// Defaults to os.Stdout; use io.Discard to silence it.
	Out io.Writer
	// ContinueOnError makes a pass attempt every part and return all
	// failures joined, instead of stopping at the first one.
	ContinueOnError bool
	// Workers bounds how many parts are processed at once. Values below 1
	// mean 1.
	Workers int
}

// Rewriter applies the font passes to one package.
type Rewriter struct {
	store           storage.Provider
	logger          *slog.Logger
	out             io.Writer
	outMu           sync.Mutex
	continueOnError bool
	workers         int
}

// New creates a Rewriter over store.
func New(store storage.Provider, opts Options) *Rewriter {
	r := &Rewriter{
		store:           store,
		logger:          opts.Logger,
		out:             opts.Out,
		continueOnError: opts.ContinueOnError,
		workers:         opts.Workers,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.out == nil {
		r.out = os.Stdout
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r
}

// Plan selects the passes to run and their font settings.
type Plan struct {
	Passes []string
	Major  string
	Minor  string
	Master MasterOptions
	Slides SlideOptions
}

// Validate checks that every selected pass has what it needs.
func (p Plan) Validate() error {
	if len(p.Passes) == 0 {
		return fmt.Errorf("%w: no passes selected", apperr.ErrInvalidArgument)
	}
	for _, pass := range p.Passes {
		var err error
		switch pass {
		case PassTheme:
			err = validateFonts(p.Major, p.Minor)
		case PassMaster:
			err = p.Master.Validate()
		case PassSlides:
			err = p.Slides.Validate()
		default:
			err = fmt.Errorf("%w: unknown pass %q", apperr.ErrInvalidArgument, pass)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p Plan) has(pass string) bool { return slices.Contains(p.Passes, pass) }

func (p Plan) partFunc(t target) partFunc {
	switch t {
	case themeTarget:
		return themePart(p.Major, p.Minor)
	case presentationTarget:
		return defaultTextStylePart()
	case masterTarget:
		return masterPart(p.Master)
	default:
		return slidePart(p.Slides)
	}
}

// Run applies every pass of plan in the fixed order theme, master, slides.
// The report covers all parts processed before Run returned.
func (r *Rewriter) Run(ctx context.Context, plan Plan) (*models.Report, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	report := &models.Report{Root: r.store.Root()}
	var errs []error
	for _, pass := range AllPasses {
		if !plan.has(pass) {
			continue
		}
		jobs, err := r.jobs(plan, pass)
		if err != nil {
			return report, err
		}
		rep, err := r.apply(ctx, jobs)
		report.Add(rep.Parts...)
		if err != nil {
			if !r.continueOnError {
				return report, err
			}
			errs = append(errs, err)
		}
	}
	return report, errors.Join(errs...)
}

// RunPart applies the plan to the single part at p. It returns nil and no
// error when no selected pass rewrites p.
func (r *Rewriter) RunPart(ctx context.Context, plan Plan, p string) (*models.PartResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	for _, t := range targets {
		if !plan.has(t.pass) || path.Dir(p) != t.dir || !t.pattern.MatchString(path.Base(p)) {
			continue
		}
		rep, err := r.apply(ctx, []job{{pass: t.pass, path: p, fn: plan.partFunc(t)}})
		if len(rep.Parts) == 0 {
			return nil, err
		}
		return &rep.Parts[0], err
	}
	return nil, nil
}

func (r *Rewriter) jobs(plan Plan, pass string) ([]job, error) {
	var jobs []job
	for _, t := range targets {
		if t.pass != pass {
			continue
		}
		parts, err := r.store.List(t.dir, t.pattern)
		if err != nil {
			return nil, err
		}
		fn := plan.partFunc(t)
		for _, p := range parts {
			jobs = append(jobs, job{pass: pass, path: p, fn: fn})
		}
	}
	return jobs, nil
}

// apply processes jobs with at most r.workers in flight. In strict mode
// the first failure cancels the parts that have not started yet.
func (r *Rewriter) apply(ctx context.Context, jobs []job) (*models.Report, error) {
	results := make([]*models.PartResult, len(jobs))
	errs := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed, err := r.processPart(j)
			res := &models.PartResult{Path: j.path, Pass: j.pass, Changed: changed}
			results[i] = res
			if err != nil {
				res.Error = err.Error()
				errs[i] = err
				r.logger.Error("part failed",
					slog.String("pass", j.pass),
					slog.String("part", j.path),
					slog.String("error", err.Error()))
				if !r.continueOnError {
					return err
				}
			}
			return nil
		})
	}
	waitErr := g.Wait()

	report := &models.Report{Root: r.store.Root()}
	for _, res := range results {
		if res != nil {
			report.Add(*res)
		}
	}
	if waitErr != nil {
		return report, waitErr
	}
	return report, errors.Join(errs...)
}

// processPart reads, rewrites and persists one part. The part on disk is
// only replaced when the rewrite succeeded and produced different bytes.
func (r *Rewriter) processPart(j job) (bool, error) {
	var diag bytes.Buffer
	defer r.flush(&diag)

	data, err := r.store.Read(j.path)
	if err != nil {
		return false, apperr.NewPartError(j.pass, j.path, err)
	}
	doc, err := ooxml.Parse(data)
	if err != nil {
		return false, apperr.NewPartError(j.pass, j.path, err)
	}
	if err := j.fn(doc, &diag); err != nil {
		return false, apperr.NewPartError(j.pass, j.path, err)
	}
	out, err := ooxml.Serialize(doc)
	if err != nil {
		return false, apperr.NewPartError(j.pass, j.path, err)
	}

	if storage.Checksum(out) == storage.Checksum(data) {
		r.logger.Debug("part unchanged", slog.String("pass", j.pass), slog.String("part", j.path))
		return false, nil
	}
	if err := r.store.Write(j.path, out); err != nil {
		return false, apperr.NewPartError(j.pass, j.path, err)
	}
	r.logger.Info("part rewritten", slog.String("pass", j.pass), slog.String("part", j.path))
	return true, nil
}

func (r *Rewriter) flush(diag *bytes.Buffer) {
	if diag.Len() == 0 {
		return
	}
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = diag.WriteTo(r.out)
}
