// Package runner executes the CSS validator jar once per input file.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// ExitSpawnFailure is the exit code recorded when the process could not be
// started or was killed by the invocation timeout.
const ExitSpawnFailure = -1

// proxyVars are cleared in the child environment regardless of the caller's.
var proxyVars = []string{
	"HTTP_PROXY", "http_proxy",
	"HTTPS_PROXY", "https_proxy",
	"FTP_PROXY", "ftp_proxy",
	"ALL_PROXY", "all_proxy",
	"NO_PROXY", "no_proxy",
}

// Invocation describes one validator run.
type Invocation struct {
	EnginePath   string // path to css-validator.jar
	FilePath     string // input stylesheet, absolute or relative to cwd
	Profile      string // css3, css21, css1, svg
	WarningLevel int    // 0 none, 1 normal, 2 all
}

// Result is the raw outcome of one run. It is always well-formed: a process
// that never started is a non-zero ExitCode with empty output.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error // spawn or timeout failure, for logging only
}

// Runner spawns the validator through a Java runtime.
type Runner struct {
	java    string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithJava sets the runtime command.
func WithJava(java string) Option {
	return func(r *Runner) {
		r.java = java
	}
}

// WithTimeout bounds a single invocation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner using `java` and a 60s per-file timeout.
func New(opts ...Option) *Runner {
	r := &Runner{
		java:    "java",
		timeout: 60 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the validator for inv and captures its output. It never
// returns an error; failures are encoded in the Result.
func (r *Runner) Run(ctx context.Context, inv Invocation) Result {
	absPath, err := filepath.Abs(inv.FilePath)
	if err != nil {
		return Result{ExitCode: ExitSpawnFailure, Err: err}
	}

	args := BuildArgs(inv.EnginePath, FileURI(absPath), inv.Profile, inv.WarningLevel)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.java, args...)
	cmd.Env = IsolatedEnv(os.Environ())
	cmd.Dir = filepath.Dir(absPath)
	cmd.WaitDelay = 2 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err = cmd.Run()

	if runCtx.Err() != nil {
		r.logger.Warn("Validator invocation aborted",
			slog.String("file", absPath),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", runCtx.Err().Error()),
		)
		return Result{ExitCode: ExitSpawnFailure, Err: runCtx.Err()}
	}

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		// Could not start the process at all.
		return Result{ExitCode: ExitSpawnFailure, Err: err}
	}

	r.logger.Debug("Validator finished",
		slog.String("file", absPath),
		slog.Int("exit_code", res.ExitCode),
		slog.Duration("duration", time.Since(start)),
	)

	return res
}

// BuildArgs returns the runtime arguments for a single validation. The
// result depends only on its inputs.
func BuildArgs(enginePath, fileURI, profile string, warningLevel int) []string {
	return []string{
		"-Djava.net.useSystemProxies=false",
		"-jar", enginePath,
		"--output=json",
		"--warning=" + warningArg(warningLevel),
		"--profile=" + profile,
		"--lang=en",
		"--medium=all",
		fileURI,
	}
}

func warningArg(level int) string {
	if level <= 0 {
		return "no"
	}
	if level > 2 {
		level = 2
	}
	return strconv.Itoa(level)
}

// FileURI converts an absolute filesystem path into a file:/// URI with
// percent-encoded path segments.
func FileURI(absPath string) string {
	p := filepath.ToSlash(absPath)
	if runtime.GOOS == "windows" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String()
}

// IsolatedEnv returns environ with every proxy variable removed and then set
// to the empty string, so inherited proxy settings cannot leak into the child.
func IsolatedEnv(environ []string) []string {
	env := make([]string, 0, len(environ)+len(proxyVars))
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if isProxyVar(name) {
			continue
		}
		env = append(env, kv)
	}
	for _, name := range proxyVars {
		env = append(env, name+"=")
	}
	return env
}

func isProxyVar(name string) bool {
	for _, v := range proxyVars {
		if strings.EqualFold(name, v) {
			return true
		}
	}
	return false
}
