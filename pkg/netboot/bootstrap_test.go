package netboot

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeCommander scripts command results and records invocations.
type fakeCommander struct {
	invocations []string

	// existing marks iptables rule specs (joined with spaces) whose -C
	// check succeeds.
	existing map[string]bool

	// failSysctl makes the sysctl call fail.
	failSysctl bool

	// failAdd makes every iptables -A call fail.
	failAdd bool
}

func (f *fakeCommander) Run(ctx context.Context, name string, args ...string) (string, error) {
	line := name + " " + strings.Join(args, " ")
	f.invocations = append(f.invocations, line)

	if name == "sysctl" {
		if f.failSysctl {
			return "sysctl: permission denied", errors.New("exit status 1")
		}
		return "net.ipv4.ip_forward = 1", nil
	}

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "-C ") {
		key := strings.Replace(joined, "-C ", "", 1)
		if f.existing[key] {
			return "", nil
		}
		return "iptables: No chain/target/match by that name.", errors.New("exit status 1")
	}
	if strings.Contains(joined, "-A ") && f.failAdd {
		return "iptables: Permission denied", errors.New("exit status 3")
	}
	return "", nil
}

func testConfig() Config {
	return Config{WANInterface: "eth1", LANInterface: "eth0"}
}

func TestBootstrap_InstallsAllRules(t *testing.T) {
	fake := &fakeCommander{}

	if err := Bootstrap(context.Background(), fake, testConfig(), nil); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}

	// sysctl + 3 checks + 3 adds.
	if len(fake.invocations) != 7 {
		t.Fatalf("ran %d commands, want 7:\n%s", len(fake.invocations), strings.Join(fake.invocations, "\n"))
	}
	if !strings.Contains(fake.invocations[0], "net.ipv4.ip_forward=1") {
		t.Errorf("first command = %q, want sysctl ip_forward", fake.invocations[0])
	}

	adds := 0
	for _, line := range fake.invocations {
		if strings.Contains(line, "-A ") {
			adds++
		}
	}
	if adds != 3 {
		t.Errorf("added %d rules, want 3", adds)
	}
}

func TestBootstrap_SkipsExistingRules(t *testing.T) {
	fake := &fakeCommander{
		existing: map[string]bool{
			"-t nat POSTROUTING -o eth1 -j MASQUERADE": true,
		},
	}

	if err := Bootstrap(context.Background(), fake, testConfig(), nil); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}

	for _, line := range fake.invocations {
		if strings.Contains(line, "-A -t nat") || (strings.Contains(line, "MASQUERADE") && strings.Contains(line, "-A ")) {
			t.Errorf("existing masquerade rule was re-added: %q", line)
		}
	}
}

func TestBootstrap_SysctlFailureIsFatal(t *testing.T) {
	fake := &fakeCommander{failSysctl: true}

	err := Bootstrap(context.Background(), fake, testConfig(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "ip_forward") {
		t.Errorf("error %q does not mention ip_forward", err)
	}
	// No iptables calls after the fatal sysctl failure.
	if len(fake.invocations) != 1 {
		t.Errorf("ran %d commands, want 1", len(fake.invocations))
	}
}

func TestBootstrap_RuleInstallFailure(t *testing.T) {
	fake := &fakeCommander{failAdd: true}

	err := Bootstrap(context.Background(), fake, testConfig(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "masquerade shaped egress") {
		t.Errorf("error %q does not name the failing rule", err)
	}
}
