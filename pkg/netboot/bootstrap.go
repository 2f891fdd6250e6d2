// Package netboot performs the one-time networking setup for the shaped
// path: IPv4 forwarding plus the NAT and forwarding rules that route
// traffic from the LAN interface out through the shaped WAN interface.
//
// Bootstrap is idempotent: rules that already exist are left alone, so a
// process restart never duplicates them.
package netboot

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Commander runs one external command and returns its combined output.
// It exists so tests can script iptables/sysctl behavior.
type Commander interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecCommander runs commands through os/exec.
type ExecCommander struct{}

// Run implements Commander.
func (ExecCommander) Run(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}

// Config names the interfaces on either side of the shaped path.
type Config struct {
	// WANInterface carries shaped egress traffic and is NAT-masqueraded.
	WANInterface string

	// LANInterface is where forwarded traffic enters.
	LANInterface string
}

// Bootstrap enables IPv4 forwarding and installs the NAT/forwarding rules.
// Failing to enable forwarding is fatal; rule installation tolerates rules
// that are already present.
func Bootstrap(ctx context.Context, cmd Commander, cfg Config, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "netboot")

	if out, err := cmd.Run(ctx, "sysctl", "-w", "net.ipv4.ip_forward=1"); err != nil {
		return fmt.Errorf("failed to enable ip_forward: %w: %s", err, strings.TrimSpace(out))
	}
	logger.Info("ipv4 forwarding enabled")

	rules := []struct {
		desc  string
		table []string
		spec  []string
	}{
		{
			desc:  "masquerade shaped egress",
			table: []string{"-t", "nat"},
			spec:  []string{"POSTROUTING", "-o", cfg.WANInterface, "-j", "MASQUERADE"},
		},
		{
			desc: "forward lan to wan",
			spec: []string{"FORWARD", "-i", cfg.LANInterface, "-o", cfg.WANInterface, "-j", "ACCEPT"},
		},
		{
			desc: "forward established wan to lan",
			spec: []string{
				"FORWARD", "-i", cfg.WANInterface, "-o", cfg.LANInterface,
				"-m", "state", "--state", "RELATED,ESTABLISHED", "-j", "ACCEPT",
			},
		},
	}

	for _, rule := range rules {
		if err := ensureRule(ctx, cmd, rule.table, rule.spec); err != nil {
			return fmt.Errorf("failed to install rule (%s): %w", rule.desc, err)
		}
		logger.Info("iptables rule ensured", "rule", rule.desc)
	}
	return nil
}

// ensureRule checks for the rule with -C and appends it with -A only when
// absent.
func ensureRule(ctx context.Context, cmd Commander, table, spec []string) error {
	check := append(append([]string{}, table...), "-C")
	check = append(check, spec...)
	if _, err := cmd.Run(ctx, "iptables", check...); err == nil {
		return nil
	}

	add := append(append([]string{}, table...), "-A")
	add = append(add, spec...)
	if out, err := cmd.Run(ctx, "iptables", add...); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(out))
	}
	return nil
}
