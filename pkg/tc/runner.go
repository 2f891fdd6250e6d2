package tc

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Runner is the packet-scheduler control surface for a named interface.
// An empty parent means the operation attaches at the interface root.
type Runner interface {
	// DelRoot removes the root qdisc. Callers decide whether a missing
	// root counts as failure; see IsNoRoot.
	DelRoot(ctx context.Context, iface string) error

	// AddQdisc attaches a qdisc. handle may be empty when the kernel
	// should assign one.
	AddQdisc(ctx context.Context, iface, parent, handle string, spec []string) error

	// AddClass adds a class under parent.
	AddClass(ctx context.Context, iface, parent, classid string, spec []string) error

	// Show returns the qdisc listing for the interface, with statistics
	// when stats is true.
	Show(ctx context.Context, iface string, stats bool) (string, error)
}

// CommandError carries the failed tc invocation and its combined output.
type CommandError struct {
	Args   []string
	Output string
	Err    error
}

// Error returns the error message.
func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out != "" {
		return fmt.Sprintf("tc %s: %v: %s", strings.Join(e.Args, " "), e.Err, out)
	}
	return fmt.Sprintf("tc %s: %v", strings.Join(e.Args, " "), e.Err)
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error {
	return e.Err
}

// IsNoRoot reports whether err is tc refusing to delete a root qdisc that
// was never configured. Deleting an absent root is the expected case when
// clearing an unshaped interface.
func IsNoRoot(err error) bool {
	cmdErr, ok := err.(*CommandError)
	if !ok {
		return false
	}
	out := cmdErr.Output
	// Messages vary across iproute2 versions.
	return strings.Contains(out, "Cannot delete qdisc with handle of zero") ||
		strings.Contains(out, "No such file or directory") ||
		strings.Contains(out, "Invalid handle")
}

// ExecRunner implements Runner by executing the tc binary.
type ExecRunner struct {
	tcPath string
	logger *slog.Logger
}

// NewExecRunner creates a Runner backed by the tc binary on PATH.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{
		tcPath: "tc",
		logger: logger.With("component", "tc"),
	}
}

// DelRoot implements Runner.
func (r *ExecRunner) DelRoot(ctx context.Context, iface string) error {
	return r.run(ctx, "qdisc", "del", "dev", iface, "root")
}

// AddQdisc implements Runner.
func (r *ExecRunner) AddQdisc(ctx context.Context, iface, parent, handle string, spec []string) error {
	args := []string{"qdisc", "add", "dev", iface}
	if parent == "" {
		args = append(args, "root")
	} else {
		args = append(args, "parent", parent)
	}
	if handle != "" {
		args = append(args, "handle", handle)
	}
	args = append(args, spec...)
	return r.run(ctx, args...)
}

// AddClass implements Runner.
func (r *ExecRunner) AddClass(ctx context.Context, iface, parent, classid string, spec []string) error {
	args := []string{"class", "add", "dev", iface, "parent", parent, "classid", classid}
	args = append(args, spec...)
	return r.run(ctx, args...)
}

// Show implements Runner.
func (r *ExecRunner) Show(ctx context.Context, iface string, stats bool) (string, error) {
	args := []string{"qdisc", "show", "dev", iface}
	if stats {
		args = []string{"-s", "qdisc", "show", "dev", iface}
	}
	out, err := exec.CommandContext(ctx, r.tcPath, args...).CombinedOutput()
	if err != nil {
		return "", &CommandError{Args: args, Output: string(out), Err: err}
	}
	return string(out), nil
}

func (r *ExecRunner) run(ctx context.Context, args ...string) error {
	r.logger.Debug("running tc", "args", strings.Join(args, " "))
	out, err := exec.CommandContext(ctx, r.tcPath, args...).CombinedOutput()
	if err != nil {
		return &CommandError{Args: args, Output: string(out), Err: err}
	}
	if len(out) > 0 {
		r.logger.Debug("tc output", "output", string(out))
	}
	return nil
}
