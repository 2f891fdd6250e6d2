package tc

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one Runner invocation on the fake.
type Call struct {
	Method string // "del-root", "add-qdisc", "add-class", "show"
	Iface  string
	Parent string
	Handle string
	Spec   []string
}

// String renders the call in tc-like form, useful in test failure output.
func (c Call) String() string {
	parts := []string{c.Method, "dev", c.Iface}
	if c.Parent != "" {
		parts = append(parts, "parent", c.Parent)
	}
	if c.Handle != "" {
		parts = append(parts, "handle", c.Handle)
	}
	parts = append(parts, c.Spec...)
	return strings.Join(parts, " ")
}

// FakeRunner is a scripted Runner for tests. It records every call and can
// be told to fail at a given call index (counting all calls, zero-based).
type FakeRunner struct {
	mu    sync.Mutex
	calls []Call

	// FailAt makes the call with this index return FailErr. Negative
	// means never fail.
	FailAt  int
	FailErr error

	// DelRootErr is returned by every DelRoot call when set; it takes
	// precedence over FailAt for that method.
	DelRootErr error

	// ShowOutput is returned by Show.
	ShowOutput string
}

// NewFakeRunner creates a fake that never fails.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{FailAt: -1}
}

// Calls returns a copy of the recorded calls.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeRunner) record(c Call) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := len(f.calls)
	f.calls = append(f.calls, c)
	if f.FailAt >= 0 && idx == f.FailAt {
		if f.FailErr != nil {
			return f.FailErr
		}
		return fmt.Errorf("scripted failure at call %d (%s)", idx, c)
	}
	return nil
}

// DelRoot implements Runner.
func (f *FakeRunner) DelRoot(ctx context.Context, iface string) error {
	err := f.record(Call{Method: "del-root", Iface: iface})
	if f.DelRootErr != nil {
		return f.DelRootErr
	}
	return err
}

// AddQdisc implements Runner.
func (f *FakeRunner) AddQdisc(ctx context.Context, iface, parent, handle string, spec []string) error {
	return f.record(Call{Method: "add-qdisc", Iface: iface, Parent: parent, Handle: handle, Spec: spec})
}

// AddClass implements Runner.
func (f *FakeRunner) AddClass(ctx context.Context, iface, parent, classid string, spec []string) error {
	return f.record(Call{Method: "add-class", Iface: iface, Parent: parent, Handle: classid, Spec: spec})
}

// Show implements Runner.
func (f *FakeRunner) Show(ctx context.Context, iface string, stats bool) (string, error) {
	if err := f.record(Call{Method: "show", Iface: iface}); err != nil {
		return "", err
	}
	return f.ShowOutput, nil
}
