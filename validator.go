package cssval

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/yacobolo/cssval/internal/engine"
	"github.com/yacobolo/cssval/internal/runner"
	"golang.org/x/sync/errgroup"
)

// EngineResolver yields the path of a ready-to-run validator jar.
type EngineResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Invoker runs the validator on one file. It never fails; a process that
// could not run is reported as empty output with a non-zero exit code.
type Invoker interface {
	Invoke(ctx context.Context, enginePath, filePath string, config ValidationConfig) ProcessOutput
}

// Validator validates stylesheets with the W3C CSS validator.
type Validator struct {
	resolver EngineResolver
	invoker  Invoker
	logger   *slog.Logger
	jobs     int
	progress func(FileResult)

	// settings for the default resolver and invoker
	java            string
	timeout         time.Duration
	cacheDir        string
	sources         []string
	downloadTimeout time.Duration
}

// Option configures a Validator.
type Option func(*Validator)

// WithResolver replaces the engine provisioner.
func WithResolver(r EngineResolver) Option {
	return func(v *Validator) {
		v.resolver = r
	}
}

// WithInvoker replaces the process runner.
func WithInvoker(i Invoker) Option {
	return func(v *Validator) {
		v.invoker = i
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithJobs sets how many files are validated at once. Results keep input
// order whatever the value.
func WithJobs(n int) Option {
	return func(v *Validator) {
		v.jobs = n
	}
}

// WithProgress registers a callback invoked once per file, in input order,
// as soon as that file and all files before it are done.
func WithProgress(fn func(FileResult)) Option {
	return func(v *Validator) {
		v.progress = fn
	}
}

// WithJava sets the Java runtime command for the default invoker and host check.
func WithJava(java string) Option {
	return func(v *Validator) {
		v.java = java
	}
}

// WithTimeout bounds each validator invocation of the default invoker.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		v.timeout = d
	}
}

// WithCacheDir sets where the default provisioner caches the jar.
func WithCacheDir(dir string) Option {
	return func(v *Validator) {
		v.cacheDir = dir
	}
}

// WithSources sets the download sources of the default provisioner.
func WithSources(sources ...string) Option {
	return func(v *Validator) {
		v.sources = sources
	}
}

// WithDownloadTimeout bounds each download attempt of the default provisioner.
func WithDownloadTimeout(d time.Duration) Option {
	return func(v *Validator) {
		v.downloadTimeout = d
	}
}

// NewValidator creates a Validator. Without WithResolver and WithInvoker it
// provisions the jar into the user cache and runs it with `java`.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		jobs:    1,
		java:    engine.DefaultJava,
		timeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(v)
	}

	if v.logger == nil {
		v.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if v.resolver == nil {
		v.resolver = engine.NewProvisioner(v.provisionerOptions()...)
	}
	if v.invoker == nil {
		v.invoker = &runnerInvoker{r: runner.New(
			runner.WithJava(v.java),
			runner.WithTimeout(v.timeout),
			runner.WithLogger(v.logger),
		)}
	}

	return v
}

func (v *Validator) provisionerOptions() []engine.Option {
	opts := []engine.Option{
		engine.WithHostChecker(engine.HostChecker{Java: v.java}),
		engine.WithLogger(v.logger),
	}
	if v.cacheDir != "" {
		opts = append(opts, engine.WithCacheDir(v.cacheDir))
	}
	if len(v.sources) > 0 {
		opts = append(opts, engine.WithSources(v.sources...))
	}
	if v.downloadTimeout > 0 {
		opts = append(opts, engine.WithDownloadTimeout(v.downloadTimeout))
	}
	return opts
}

// defaultValidator is shared by every package-level Validate call, so the
// engine is resolved at most once per process.
var defaultValidator = sync.OnceValue(func() *Validator {
	return NewValidator()
})

// Validate validates every stylesheet under target using the process-wide
// default Validator.
func Validate(ctx context.Context, target string, config ValidationConfig) (*RunSummary, error) {
	return defaultValidator().Validate(ctx, target, config)
}

// Validate validates every stylesheet under target.
//
// Invalid config, a missing or non-CSS target, a missing Java runtime and a
// jar that cannot be provisioned abort the run. Problems with a single file
// are reported as a failed FileResult for that file.
func (v *Validator) Validate(ctx context.Context, target string, config ValidationConfig) (*RunSummary, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	files, err := DiscoverFiles(target, config)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		v.logger.Info("No stylesheets found", slog.String("target", target))
		return newRunSummary(nil), nil
	}

	enginePath, err := v.resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, len(files))
	emit := newOrderedEmitter(v.progress)

	if v.jobs <= 1 {
		for i, file := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = v.validateFile(ctx, enginePath, file, config)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			emit.done(i, results[i])
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(v.jobs)
		for i, file := range files {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = v.validateFile(gctx, enginePath, file, config)
				if err := gctx.Err(); err != nil {
					return err
				}
				emit.done(i, results[i])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return newRunSummary(results), nil
}

func (v *Validator) validateFile(ctx context.Context, enginePath, file string, config ValidationConfig) FileResult {
	start := time.Now()
	out := v.invoker.Invoke(ctx, enginePath, file, config)

	errs, warns, err := Normalize(out, file, config.IncludeWarnings(), config.IncludeDeprecations, config)
	if err != nil {
		v.logger.Warn("Unusable validator output",
			slog.String("file", file),
			slog.Int("exit_code", out.ExitCode),
			slog.String("error", err.Error()),
		)
		return newFileResult(file, []Diagnostic{{
			Message:  noOutputMessage(out, err),
			Severity: SeverityError,
		}}, nil, config)
	}

	v.logger.Debug("Validated file",
		slog.String("file", file),
		slog.Int("errors", len(errs)),
		slog.Int("warnings", len(warns)),
		slog.Duration("duration", time.Since(start)),
	)

	return newFileResult(file, errs, warns, config)
}

// noOutputMessage builds the synthetic diagnostic text for a file whose
// validator run produced nothing usable.
func noOutputMessage(out ProcessOutput, err error) string {
	msg := fmt.Sprintf("%v (exit code %d)", err, out.ExitCode)
	if out.Err != nil {
		msg += ": " + out.Err.Error()
	} else if line := firstLine(out.Stderr); line != "" {
		msg += ": " + line
	}
	return msg
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// orderedEmitter forwards completed results to fn in input order.
type orderedEmitter struct {
	mu      sync.Mutex
	fn      func(FileResult)
	next    int
	pending map[int]FileResult
}

func newOrderedEmitter(fn func(FileResult)) *orderedEmitter {
	return &orderedEmitter{fn: fn, pending: make(map[int]FileResult)}
}

func (e *orderedEmitter) done(i int, r FileResult) {
	if e.fn == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending[i] = r
	for {
		next, ok := e.pending[e.next]
		if !ok {
			return
		}
		delete(e.pending, e.next)
		e.fn(next)
		e.next++
	}
}

// runnerInvoker adapts runner.Runner to Invoker.
type runnerInvoker struct {
	r *runner.Runner
}

func (ri *runnerInvoker) Invoke(ctx context.Context, enginePath, filePath string, config ValidationConfig) ProcessOutput {
	res := ri.r.Run(ctx, runner.Invocation{
		EnginePath:   enginePath,
		FilePath:     filePath,
		Profile:      string(config.Profile),
		WarningLevel: config.WarningLevel,
	})
	return ProcessOutput{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Err:      res.Err,
	}
}
