package provider

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	pairerrors "github.com/pairreview/pairreview/pkg/errors"
	"github.com/pairreview/pairreview/pkg/logger"
)

// killGracePeriod is how long a cancelled invocation waits after SIGTERM
// before escalating to SIGKILL, per SPEC_FULL.md §4.3's cancellation
// contract.
const killGracePeriod = 5 * time.Second

// stderrTailBytes bounds how much of a failed provider's stderr is
// carried on the returned ProviderFailed error.
const stderrTailBytes = 4096

// commandAdapter is the generic, subprocess-based Adapter shared by every
// built-in provider. It is grounded directly on internal/llm/cursor's
// stdin-prompt / stdout-stream subprocess idiom, generalized from one
// hardcoded CLI to any Definition's command/argv template.
type commandAdapter struct {
	def Definition
}

// NewCommandAdapter builds the shared subprocess Adapter for def. Built-in
// provider packages register this (or a thin wrapper around it) as their
// Factory.
func NewCommandAdapter(def Definition) Adapter {
	return &commandAdapter{def: def}
}

func (a *commandAdapter) Spawn(ctx context.Context, req SpawnRequest) (Invocation, error) {
	model := req.Model
	if model == "" {
		if dm := a.def.DefaultModel(); dm != nil {
			model = dm.ID
		}
	}

	argv := a.def.Args
	if req.Yolo && len(a.def.YoloArgs) > 0 {
		argv = a.def.YoloArgs
	}
	args := make([]string, 0, len(argv))
	for _, arg := range argv {
		args = append(args, strings.ReplaceAll(arg, "%MODEL%", model))
	}

	cmdCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(cmdCtx, a.def.Command, args...)
	if req.WorkDir != "" {
		cmd.Dir = req.WorkDir
	}
	cmd.Env = os.Environ()
	for k, v := range a.def.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		cancel()
		return nil, pairerrors.ErrProviderFailed("failed to open provider stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, pairerrors.ErrProviderFailed("failed to open provider stdout", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, pairerrors.ErrProviderFailed("failed to start provider "+a.def.ID, err)
	}

	go func() {
		defer stdin.Close()
		if _, err := stdin.Write([]byte(req.Prompt)); err != nil {
			logger.Warn("provider: failed to write prompt to stdin",
				zap.String("provider", a.def.ID), zap.Error(err))
		}
	}()

	return &commandInvocation{
		providerID: a.def.ID,
		cmd:        cmd,
		stdout:     stdout,
		stderr:     &stderr,
		ctx:        cmdCtx,
		cancel:     cancel,
		events:     make(chan Event, 64),
	}, nil
}

type commandInvocation struct {
	providerID string
	cmd        *exec.Cmd
	stdout     io.ReadCloser
	stderr     *bytes.Buffer
	ctx        context.Context
	cancel     context.CancelFunc
	events     chan Event
}

func (i *commandInvocation) Parse() <-chan Event {
	go func() {
		defer close(i.events)
		parseStream(i.stdout, func(e Event) {
			select {
			case i.events <- e:
			case <-i.ctx.Done():
			}
		})
	}()
	return i.events
}

func (i *commandInvocation) Exit() error {
	defer i.cancel()

	waitErr := make(chan error, 1)
	go func() { waitErr <- i.cmd.Wait() }()

	select {
	case <-i.ctx.Done():
		if i.cmd.Process != nil {
			_ = i.cmd.Process.Signal(syscall.SIGTERM)
		}
		select {
		case <-waitErr:
		case <-time.After(killGracePeriod):
			if i.cmd.Process != nil {
				_ = i.cmd.Process.Kill()
			}
			<-waitErr
		}
		return pairerrors.ErrCancelled("provider " + i.providerID + " was cancelled")
	case err := <-waitErr:
		if err != nil {
			return pairerrors.ErrProviderFailed(
				"provider "+i.providerID+" exited with error, stderr: "+tail(i.stderr.String(), stderrTailBytes),
				err,
			)
		}
		return nil
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
