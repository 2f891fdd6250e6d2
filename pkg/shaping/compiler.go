package shaping

import (
	"fmt"

	"lanekit/shaperd/pkg/policy"
)

const (
	// rootHandle is the handle of the htb root qdisc.
	rootHandle = "1:"

	// aggregateClassID is the classid carrying the total bandwidth; all
	// per-policy classes borrow from it.
	aggregateClassID = "1:1"

	// defaultClassMinor is the minor id unclassified traffic falls into.
	defaultClassMinor = "30"

	// classBaseID is the minor id of the first per-policy class.
	// Identifiers increase by one per class in descriptor order.
	classBaseID = 10
)

// Compile translates a descriptor into the ordered operation sequence that
// configures iface. It is pure and deterministic: the same descriptor
// always compiles to byte-identical operations. The mandatory pre-apply
// clear is not part of the sequence; Executor.Apply performs it
// unconditionally.
func Compile(desc *policy.Descriptor, iface string) ([]Operation, error) {
	switch desc.Kind {
	case policy.KindNone:
		return nil, nil
	case policy.KindCake:
		return compileCake(desc, iface), nil
	case policy.KindNetem:
		return compileNetem(desc, iface), nil
	case policy.KindHTB:
		return compileHTB(desc, iface), nil
	default:
		return nil, &UnsupportedKindError{Kind: desc.Kind}
	}
}

func compileCake(desc *policy.Descriptor, iface string) []Operation {
	spec := []string{"cake", "bandwidth", desc.Bandwidth}
	if desc.RTT != "" {
		spec = append(spec, "rtt", desc.RTT)
	}
	// Feature flags are appended in descriptor order; the order is part
	// of the policy's observable encoding.
	spec = append(spec, desc.Features...)
	return []Operation{{Kind: OpAddRootQdisc, Iface: iface, Spec: spec}}
}

func compileNetem(desc *policy.Descriptor, iface string) []Operation {
	// Field order is fixed regardless of which attributes are present:
	// delay, jitter, loss, rate. Jitter is a bare value token following
	// delay in netem syntax.
	spec := []string{"netem"}
	if desc.Delay != "" {
		spec = append(spec, "delay", desc.Delay)
		if desc.Jitter != "" {
			spec = append(spec, desc.Jitter)
		}
	}
	if desc.Loss != "" {
		spec = append(spec, "loss", desc.Loss)
	}
	if desc.Rate != "" {
		spec = append(spec, "rate", desc.Rate)
	}
	return []Operation{{Kind: OpAddRootQdisc, Iface: iface, Spec: spec}}
}

func compileHTB(desc *policy.Descriptor, iface string) []Operation {
	ops := make([]Operation, 0, 2+2*len(desc.Classes))

	ops = append(ops, Operation{
		Kind:   OpAddRootQdisc,
		Iface:  iface,
		Handle: rootHandle,
		Spec:   []string{"htb", "default", defaultClassMinor},
	})
	ops = append(ops, Operation{
		Kind:   OpAddClass,
		Iface:  iface,
		Parent: rootHandle,
		Handle: aggregateClassID,
		Spec:   []string{"htb", "rate", desc.TotalBandwidth},
	})

	for i, cls := range desc.Classes {
		minor := classBaseID + i
		classid := fmt.Sprintf("1:%d", minor)
		ops = append(ops, Operation{
			Kind:   OpAddClass,
			Iface:  iface,
			Parent: aggregateClassID,
			Handle: classid,
			Spec:   []string{"htb", "rate", cls.Rate, "ceil", cls.Ceiling()},
		})
		// fq_codel leaf keeps per-class latency low under load.
		ops = append(ops, Operation{
			Kind:   OpAddLeafQdisc,
			Iface:  iface,
			Parent: classid,
			Handle: fmt.Sprintf("%d:", minor),
			Spec:   []string{"fq_codel"},
		})
	}
	return ops
}
