package engine

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// DefaultJava is the runtime command used when none is configured.
const DefaultJava = "java"

// HostChecker verifies that the runtime the validator jar needs is installed.
type HostChecker struct {
	Java    string        // runtime command, "java" by default
	Timeout time.Duration // upper bound for the version check
}

// Check spawns `<java> -version`. The runtime counts as present when the
// check exits cleanly or prints anything at all.
func (h HostChecker) Check(ctx context.Context) error {
	java := h.Java
	if java == "" {
		java = DefaultJava
	}
	timeout := h.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(checkCtx, java, "-version")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil || out.Len() > 0 {
		return nil
	}
	return fmt.Errorf("%w: %s -version: %v", ErrHostUnavailable, java, err)
}
