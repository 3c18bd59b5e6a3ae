package runner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"qaforge/internal/config"
	"qaforge/internal/logging"
)

// command wraps a running framework subprocess. Stdout and stderr are pumped
// line by line into a single channel; the consumer drains Lines until it
// closes, then calls Wait.
type command struct {
	cmd    *exec.Cmd
	lines  chan string
	cancel context.CancelFunc
	ctx    context.Context
}

// startCommand launches the framework runner in its own process group so a
// timeout kill reaches npm wrapper children, not just the wrapper.
func startCommand(ctx context.Context, spec config.FrameworkSpec, timeout time.Duration) (*command, error) {
	if len(spec.Command) == 0 {
		return nil, fmt.Errorf("framework %s: empty command", spec.Name)
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)

	cmd := exec.CommandContext(execCtx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.WorkingDir
	cmd.Env = os.Environ()
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("stdout pipe for %s: %w", spec.Name, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		stdoutPipe.Close()
		cancel()
		return nil, fmt.Errorf("stderr pipe for %s: %w", spec.Name, err)
	}

	if err := cmd.Start(); err != nil {
		stdoutPipe.Close()
		stderrPipe.Close()
		cancel()
		return nil, fmt.Errorf("failed to start %s (%v): %w", spec.Name, spec.Command, err)
	}

	logging.Runner("Started %s: pid=%d cmd=%v timeout=%v", spec.Name, cmd.Process.Pid, spec.Command, timeout)

	c := &command{
		cmd:    cmd,
		lines:  make(chan string, 64),
		cancel: cancel,
		ctx:    execCtx,
	}

	var g errgroup.Group
	g.Go(func() error {
		scanner := bufio.NewScanner(stdoutPipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			c.lines <- scanner.Text()
		}
		return scanner.Err()
	})
	g.Go(func() error {
		scanner := bufio.NewScanner(stderrPipe)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			c.lines <- scanner.Text()
		}
		return scanner.Err()
	})
	go func() {
		g.Wait()
		close(c.lines)
	}()

	return c, nil
}

// Lines returns the merged output channel. Closed when both pipes drain.
func (c *command) Lines() <-chan string {
	return c.lines
}

// Wait reaps the process after Lines closes. Reports the exit code and
// whether the run hit its deadline.
func (c *command) Wait() (exitCode int, timedOut bool, err error) {
	defer c.cancel()

	waitErr := c.cmd.Wait()
	timedOut = c.ctx.Err() == context.DeadlineExceeded

	if waitErr == nil {
		return 0, timedOut, nil
	}

	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		return exitErr.ExitCode(), timedOut, nil
	}

	return -1, timedOut, waitErr
}
