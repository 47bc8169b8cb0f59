package analyzer

import (
	"cmp"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/firefly-engineering/repolens/internal/catalog"
	"github.com/firefly-engineering/repolens/internal/errors"
	"github.com/firefly-engineering/repolens/internal/framework"
	"github.com/firefly-engineering/repolens/internal/insight"
	"github.com/firefly-engineering/repolens/internal/language"
	"github.com/firefly-engineering/repolens/internal/logging"
	"github.com/firefly-engineering/repolens/internal/manifest"
	"github.com/firefly-engineering/repolens/internal/pathfilter"
	"github.com/firefly-engineering/repolens/internal/report"
)

// Defaults for analyzer options.
const (
	DefaultSampleFiles      = 10
	DefaultSampleBytes      = 4096
	DefaultMaxManifestBytes = 1 << 20
)

// minSniffBytes is read from extension-less files even when sampling reads
// less.
const minSniffBytes = 512

// Analyzer turns a directory tree into a report. An Analyzer is immutable
// and may run several analyses concurrently.
type Analyzer struct {
	catalog    *catalog.Catalog
	filter     *pathfilter.Filter
	classifier *language.Classifier
	detector   *framework.Detector

	workers          int
	sampleFiles      int
	sampleBytes      int
	maxManifestBytes int64
	insights         bool
	filterOpts       []pathfilter.Option
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers sets the size of the file worker pool. Values below one use
// the number of CPUs.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		a.workers = n
	}
}

// WithSampling sets how many source files per language are searched for
// import markers and how many leading bytes of each are read.
func WithSampling(files, bytes int) Option {
	return func(a *Analyzer) {
		a.sampleFiles = files
		a.sampleBytes = bytes
	}
}

// WithMaxManifestBytes sets the size above which a manifest is not parsed.
func WithMaxManifestBytes(n int64) Option {
	return func(a *Analyzer) {
		a.maxManifestBytes = n
	}
}

// WithIgnoreRules adds ignore rules on top of the catalog.
func WithIgnoreRules(rules ...catalog.IgnoreRule) Option {
	return func(a *Analyzer) {
		a.filterOpts = append(a.filterOpts, pathfilter.WithRules(rules...))
	}
}

// WithCaseFold forces case-insensitive (or sensitive) ignore matching.
func WithCaseFold(fold bool) Option {
	return func(a *Analyzer) {
		a.filterOpts = append(a.filterOpts, pathfilter.WithCaseFold(fold))
	}
}

// WithInsights toggles derivation of project insights.
func WithInsights(enabled bool) Option {
	return func(a *Analyzer) {
		a.insights = enabled
	}
}

// New creates an analyzer over the given catalog.
func New(c *catalog.Catalog, opts ...Option) *Analyzer {
	a := &Analyzer{
		catalog:          c,
		classifier:       language.New(c),
		detector:         framework.New(c),
		workers:          runtime.NumCPU(),
		sampleFiles:      DefaultSampleFiles,
		sampleBytes:      DefaultSampleBytes,
		maxManifestBytes: DefaultMaxManifestBytes,
		insights:         true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = runtime.NumCPU()
	}
	a.filter = pathfilter.New(c, a.filterOpts...)
	return a
}

// fileJob is a regular file handed to a worker. Everything decided by name
// is resolved on the walking goroutine.
type fileJob struct {
	index    int
	rel      string
	size     int64
	language string
	format   *manifest.Format
	sniff    bool
	sample   bool
}

// finding is the outcome for one walked entry. An empty entry path means the
// finding only carries a skipped path.
type finding struct {
	index    int
	entry    report.FileEntry
	rule     *catalog.IgnoreRule
	skipped  string
	path     string
	manifest *manifest.Result
	sample   *framework.Sample
}

// Analyze walks root and returns its report.
func (a *Analyzer) Analyze(ctx context.Context, root string) (*report.Report, error) {
	abs, err := checkRoot(root)
	if err != nil {
		return nil, err
	}
	log := logging.With("root", abs)
	log.Debug("analysis started", "workers", a.workers, "catalog", a.catalog.Version())

	findings, err := a.walk(ctx, abs)
	if err != nil {
		return nil, err
	}

	b := report.NewBuilder(abs, a.catalog.Version())
	var samples []framework.Sample
	for _, f := range findings {
		if f.entry.Path != "" {
			b.AddFile(f.entry)
		}
		if f.rule != nil {
			b.RecordIgnore(*f.rule)
		}
		if f.skipped != "" {
			b.AddSkipped(f.path, f.skipped)
			log.Debug("path skipped", "path", f.path, "reason", f.skipped)
		}
		if f.manifest != nil {
			b.AddManifest(f.manifest.Status(f.entry.Path), f.manifest.Dependencies)
			if f.manifest.Partial {
				log.Debug("manifest parsed partially", "path", f.entry.Path, "error", f.manifest.Err)
			}
		}
		if f.sample != nil {
			samples = append(samples, *f.sample)
		}
	}

	walked := b.Build()
	for _, hit := range a.detector.Detect(walked.Files(), walked.Dependencies(), samples) {
		b.AddFramework(hit)
	}

	if a.insights {
		b.SetInsights(insight.Derive(abs, b.Build()))
	}

	r := b.Build()
	log.Debug("analysis complete",
		"files", len(findings),
		"sources", r.SourceFiles(),
		"dependencies", len(r.Dependencies()),
		"frameworks", len(r.Frameworks()),
		"skipped", len(r.Skipped()))
	return r, nil
}

func checkRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.RootNotFound(root)
	}
	// The walk does not follow symlinks, so a linked root is resolved first.
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.RootNotFound(abs)
		}
		return "", errors.RootUnreadable(abs, err)
	}
	abs = resolved
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", errors.RootNotFound(abs)
		}
		return "", errors.RootUnreadable(abs, err)
	}
	if !info.IsDir() {
		return "", errors.RootNotFound(abs)
	}
	return abs, nil
}

// walk traverses root, dispatching regular files to the worker pool, and
// returns all findings ordered by discovery.
func (a *Analyzer) walk(ctx context.Context, root string) ([]finding, error) {
	var (
		direct    []finding
		collected []finding
		index     int
		sampled   = make(map[string]int)
	)

	results := make(chan finding)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for f := range results {
			collected = append(collected, f)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if cerr := gctx.Err(); cerr != nil {
			return cerr
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if rel == "." {
			if err != nil {
				return errors.RootUnreadable(root, err)
			}
			return nil
		}
		if err != nil {
			direct = append(direct, finding{index: index, path: rel, skipped: report.ReasonUnreadableDir})
			index++
			return nil
		}

		idx := index
		index++

		if rule, ignored := a.filter.ShouldIgnore(rel, d.IsDir()); ignored {
			entry := report.FileEntry{Path: rel, Role: report.RoleIgnored}
			if !d.IsDir() {
				if info, err := d.Info(); err == nil {
					entry.Size = info.Size()
				}
			}
			direct = append(direct, finding{index: idx, entry: entry, rule: &rule})
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		unknown := func(reason string, size int64) error {
			direct = append(direct, finding{
				index:   idx,
				entry:   report.FileEntry{Path: rel, Size: size, Role: report.RoleUnknown},
				path:    rel,
				skipped: reason,
			})
			return nil
		}

		info, err := d.Info()
		switch {
		case err != nil:
			return unknown(report.ReasonUnreadableFile, 0)
		case d.Type()&fs.ModeSymlink != 0:
			return unknown(report.ReasonSymlink, info.Size())
		case !d.Type().IsRegular():
			return unknown(report.ReasonIrregular, info.Size())
		}

		job := fileJob{index: idx, rel: rel, size: info.Size()}
		if f, ok := manifest.Lookup(rel); ok {
			job.format = &f
		}
		job.language, _ = a.classifier.Classify(rel)
		if job.format == nil {
			job.sniff = job.language == "" && a.classifier.NeedsContent(rel)
			if job.language != "" && sampled[job.language] < a.sampleFiles {
				sampled[job.language]++
				job.sample = true
			}
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results <- a.process(root, job)
			return nil
		})
		return nil
	})

	waitErr := g.Wait()
	close(results)
	<-done

	if walkErr != nil {
		return nil, walkErr
	}
	if waitErr != nil {
		return nil, waitErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	findings := append(direct, collected...)
	slices.SortFunc(findings, func(x, y finding) int { return cmp.Compare(x.index, y.index) })
	return findings, nil
}
