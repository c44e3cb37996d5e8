// Package engine provisions the W3C CSS validator jar used by cssval.
//
// The jar is cached at a single well-known location and reused across runs.
// A cached file that fails the ZIP signature check is discarded and fetched
// again from the configured sources, tried in priority order.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// JarName is the file name of the cached validator.
const JarName = "css-validator.jar"

// DefaultSources are tried in order when no sources are configured.
var DefaultSources = []string{
	"https://github.com/w3c/css-validator/releases/latest/download/css-validator.jar",
	"https://jigsaw.w3.org/css-validator/DOWNLOAD/css-validator.jar",
}

// Checker reports whether the host can run the validator.
type Checker interface {
	Check(ctx context.Context) error
}

// Provisioner resolves a verified local path to the validator jar,
// downloading it on first use. Safe for concurrent use.
type Provisioner struct {
	cacheDir        string
	sources         []string
	client          *http.Client
	downloadTimeout time.Duration
	host            Checker
	logger          *slog.Logger

	mu       sync.Mutex
	resolved string
	flight   singleflight.Group
}

// Option configures the Provisioner.
type Option func(*Provisioner)

// WithCacheDir sets the directory holding the cached jar.
func WithCacheDir(dir string) Option {
	return func(p *Provisioner) {
		p.cacheDir = dir
	}
}

// WithSources replaces the download sources. Order is priority order.
func WithSources(sources ...string) Option {
	return func(p *Provisioner) {
		p.sources = sources
	}
}

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provisioner) {
		p.client = client
	}
}

// WithDownloadTimeout bounds each individual source attempt.
func WithDownloadTimeout(d time.Duration) Option {
	return func(p *Provisioner) {
		p.downloadTimeout = d
	}
}

// WithHostChecker sets the runtime availability check.
func WithHostChecker(c Checker) Option {
	return func(p *Provisioner) {
		p.host = c
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provisioner) {
		p.logger = logger
	}
}

// DefaultCacheDir returns <user cache dir>/cssval, falling back to the temp dir.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "cssval")
}

// NewProvisioner creates a provisioner with default sources and cache location.
func NewProvisioner(opts ...Option) *Provisioner {
	p := &Provisioner{
		cacheDir:        DefaultCacheDir(),
		sources:         DefaultSources,
		client:          http.DefaultClient,
		downloadTimeout: 2 * time.Minute,
		host:            HostChecker{},
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Path returns the well-known location of the cached jar.
func (p *Provisioner) Path() string {
	return filepath.Join(p.cacheDir, JarName)
}

// Resolve returns the path to a verified jar. The first successful result is
// memoized for the lifetime of the Provisioner; failures are not, so a later
// call retries. Concurrent callers share a single provisioning attempt.
func (p *Provisioner) Resolve(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.resolved != "" {
		path := p.resolved
		p.mu.Unlock()
		return path, nil
	}
	p.mu.Unlock()

	v, err, _ := p.flight.Do("resolve", func() (any, error) {
		path, err := p.provision(ctx)
		if err != nil {
			return "", err
		}
		p.mu.Lock()
		p.resolved = path
		p.mu.Unlock()
		return path, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (p *Provisioner) provision(ctx context.Context) (string, error) {
	if err := p.host.Check(ctx); err != nil {
		return "", err
	}

	target := p.Path()

	valid, err := IsValidArchive(target)
	if err != nil {
		p.logger.Warn("Cached validator unreadable",
			slog.String("engine", target),
			slog.String("error", err.Error()),
		)
	}
	if valid {
		p.logger.Debug("Using cached validator", slog.String("engine", target))
		return target, nil
	}

	if err := os.MkdirAll(p.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("%w: create cache dir: %v", ErrProvisioningFailed, err)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: remove stale jar: %v", ErrProvisioningFailed, err)
	}

	var failures []error
	for _, source := range p.sources {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		start := time.Now()
		err := p.fetch(ctx, source, target)
		if err == nil {
			valid, err = IsValidArchive(target)
			if err == nil && !valid {
				err = ErrInvalidArchive
			}
			if err != nil {
				_ = os.Remove(target)
			}
		}
		if err != nil {
			p.logger.Warn("Validator source failed",
				slog.String("source", source),
				slog.String("error", err.Error()),
			)
			failures = append(failures, &SourceError{Source: source, Err: err})
			continue
		}

		p.logger.Info("Downloaded validator",
			slog.String("source", source),
			slog.String("engine", target),
			slog.Duration("duration", time.Since(start)),
		)
		return target, nil
	}

	if len(failures) == 0 {
		return "", fmt.Errorf("%w: no sources configured", ErrProvisioningFailed)
	}
	return "", fmt.Errorf("%w: %w", ErrProvisioningFailed, errors.Join(failures...))
}

// fetch downloads source into a unique temp sibling of target and renames it
// into place only once the whole body has been written.
func (p *Provisioner) fetch(ctx context.Context, source, target string) error {
	reqCtx := ctx
	if p.downloadTimeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, p.downloadTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, source, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	tmpPath := target + "." + uuid.NewString() + ".tmp"
	// #nosec G304 - temp path derived from the cache location
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("reading body: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("installing jar: %w", err)
	}
	return nil
}

// Status describes the cached jar without touching the network.
type Status struct {
	Path   string
	Exists bool
	Valid  bool
	Size   int64
}

// Status inspects the cache location.
func (p *Provisioner) Status() (Status, error) {
	st := Status{Path: p.Path()}

	info, err := os.Stat(st.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return st, err
	}
	st.Exists = true
	st.Size = info.Size()

	valid, err := IsValidArchive(st.Path)
	if err != nil {
		return st, err
	}
	st.Valid = valid
	return st, nil
}

// Clear removes the cached jar and forgets any memoized resolution.
func (p *Provisioner) Clear() error {
	p.mu.Lock()
	p.resolved = ""
	p.mu.Unlock()

	if err := os.Remove(p.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
