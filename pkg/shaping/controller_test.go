package shaping

import (
	"context"
	"errors"
	"testing"

	"lanekit/shaperd/pkg/policy"
	"lanekit/shaperd/pkg/tc"
)

const testCatalogYAML = `
no_shaping:
  type: none
slow_link:
  type: netem
  delay: 100ms
  loss: 1%
tiered:
  type: htb
  total_bandwidth: 100mbit
  classes:
    - rate: 50mbit
    - rate: 30mbit
    - rate: 20mbit
`

func newTestController(t *testing.T, fake *tc.FakeRunner) *Controller {
	t.Helper()
	cat, err := policy.Parse([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("failed to parse test catalog: %v", err)
	}
	return NewController(cat, fake, ControllerConfig{DefaultInterface: "eth1"}, nil)
}

func TestController_ApplySuccess(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	res, err := ctrl.ApplyPolicy(context.Background(), "slow_link", "eth1")
	if err != nil {
		t.Fatalf("ApplyPolicy returned error: %v", err)
	}
	if res.Operations != 1 {
		t.Errorf("operations = %d, want 1", res.Operations)
	}

	// del-root then a single netem root qdisc.
	calls := fake.Calls()
	if len(calls) != 2 {
		t.Fatalf("recorded %d calls, want 2", len(calls))
	}
	if calls[1].Method != "add-qdisc" || calls[1].Parent != "" {
		t.Errorf("second call = %v, want root add-qdisc", calls[1])
	}
	wantSpec := "add-qdisc dev eth1 netem delay 100ms loss 1%"
	if calls[1].String() != wantSpec {
		t.Errorf("call = %q, want %q", calls[1], wantSpec)
	}

	rec := ctrl.Current("eth1")
	if rec.Status != StatusActive || rec.Name != "slow_link" {
		t.Errorf("record = %+v, want active slow_link", rec)
	}
	if rec.Config == nil || rec.Config.Delay != "100ms" {
		t.Errorf("record config = %+v, want resolved slow_link descriptor", rec.Config)
	}
}

func TestController_ApplyUnknownPolicy(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	if _, err := ctrl.ApplyPolicy(context.Background(), "tiered", ""); err != nil {
		t.Fatalf("seed apply failed: %v", err)
	}
	before := ctrl.Current("")

	_, err := ctrl.ApplyPolicy(context.Background(), "missing_policy", "")
	var notFound *policy.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	after := ctrl.Current("")
	if after.Name != before.Name || after.Status != before.Status {
		t.Errorf("record changed after not-found apply: before %+v, after %+v", before, after)
	}
}

func TestController_ApplyFailureResetsRecord(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	if _, err := ctrl.ApplyPolicy(context.Background(), "slow_link", "eth1"); err != nil {
		t.Fatalf("seed apply failed: %v", err)
	}

	// tiered compiles to 8 ops. Fail the second per-class add-class:
	// prior calls are 2 (slow_link) + del-root + 4 ops = 7, so index 7.
	fake.FailAt = 7
	_, err := ctrl.ApplyPolicy(context.Background(), "tiered", "eth1")
	var applyErr *ApplyError
	if !errors.As(err, &applyErr) {
		t.Fatalf("expected ApplyError, got %v", err)
	}
	if applyErr.Op.Handle != "1:11" {
		t.Errorf("failing op = %s, want add-class 1:11", applyErr.Op)
	}

	rec := ctrl.Current("eth1")
	if rec.Status != StatusInactive {
		t.Errorf("record after failed apply = %+v, want inactive", rec)
	}
	if rec.Name == "tiered" {
		t.Error("failed policy must never be recorded as active")
	}
}

func TestController_ApplyNonePolicy(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	res, err := ctrl.ApplyPolicy(context.Background(), "no_shaping", "eth1")
	if err != nil {
		t.Fatalf("ApplyPolicy returned error: %v", err)
	}
	if res.Operations != 0 {
		t.Errorf("operations = %d, want 0", res.Operations)
	}
	// The clear alone suffices; the policy still reads as active.
	if calls := fake.Calls(); len(calls) != 1 || calls[0].Method != "del-root" {
		t.Errorf("calls = %v, want single del-root", calls)
	}
	if rec := ctrl.Current("eth1"); rec.Status != StatusActive || rec.Name != "no_shaping" {
		t.Errorf("record = %+v, want active no_shaping", rec)
	}
}

func TestController_ClearResetsRecord(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	if _, err := ctrl.ApplyPolicy(context.Background(), "slow_link", "eth1"); err != nil {
		t.Fatalf("seed apply failed: %v", err)
	}
	if err := ctrl.ClearShaping(context.Background(), "eth1"); err != nil {
		t.Fatalf("ClearShaping returned error: %v", err)
	}

	rec := ctrl.Current("eth1")
	if rec.Status != StatusInactive || rec.Name != "none" {
		t.Errorf("record = %+v, want inactive none", rec)
	}
	if rec.Config != nil {
		t.Errorf("cleared record still carries config: %+v", rec.Config)
	}
}

func TestController_DefaultInterface(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	if _, err := ctrl.ApplyPolicy(context.Background(), "slow_link", ""); err != nil {
		t.Fatalf("ApplyPolicy returned error: %v", err)
	}
	for _, call := range fake.Calls() {
		if call.Iface != "eth1" {
			t.Errorf("call targeted %q, want default eth1", call.Iface)
		}
	}
}

func TestController_InterfacesAreIndependent(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	if _, err := ctrl.ApplyPolicy(context.Background(), "slow_link", "eth1"); err != nil {
		t.Fatalf("apply eth1 failed: %v", err)
	}
	if _, err := ctrl.ApplyPolicy(context.Background(), "tiered", "eth2"); err != nil {
		t.Fatalf("apply eth2 failed: %v", err)
	}

	if rec := ctrl.Current("eth1"); rec.Name != "slow_link" {
		t.Errorf("eth1 record = %+v, want slow_link", rec)
	}
	if rec := ctrl.Current("eth2"); rec.Name != "tiered" {
		t.Errorf("eth2 record = %+v, want tiered", rec)
	}

	if err := ctrl.ClearShaping(context.Background(), "eth2"); err != nil {
		t.Fatalf("clear eth2 failed: %v", err)
	}
	if rec := ctrl.Current("eth1"); rec.Name != "slow_link" {
		t.Errorf("clearing eth2 disturbed eth1: %+v", rec)
	}
}

func TestController_SwapCatalog(t *testing.T) {
	fake := tc.NewFakeRunner()
	ctrl := newTestController(t, fake)

	replacement, err := policy.Parse([]byte("fast_link:\n  type: cake\n  bandwidth: 1gbit\n"))
	if err != nil {
		t.Fatalf("parse replacement: %v", err)
	}
	ctrl.SwapCatalog(replacement)

	if _, err := ctrl.ApplyPolicy(context.Background(), "slow_link", ""); err == nil {
		t.Error("old catalog entry still resolvable after swap")
	}
	if _, err := ctrl.ApplyPolicy(context.Background(), "fast_link", ""); err != nil {
		t.Errorf("new catalog entry not resolvable: %v", err)
	}
}
