package policy

import "fmt"

// Kind identifies the queueing discipline family a descriptor configures.
type Kind string

const (
	// KindNone applies no shaping; clearing the interface is sufficient.
	KindNone Kind = "none"

	// KindCake configures the cake qdisc (bandwidth, rtt, feature flags).
	KindCake Kind = "cake"

	// KindNetem configures the netem qdisc (delay, jitter, loss, rate).
	KindNetem Kind = "netem"

	// KindHTB configures a hierarchical token bucket with per-class rates
	// and fq_codel leaves.
	KindHTB Kind = "htb"
)

// Descriptor is one named shaping policy. The Kind discriminant decides
// which attribute group is meaningful; attributes are opaque tc parameter
// strings passed through verbatim.
type Descriptor struct {
	Name string `yaml:"-" json:"name"`
	Kind Kind   `yaml:"type" json:"type"`

	// cake
	Bandwidth string   `yaml:"bandwidth,omitempty" json:"bandwidth,omitempty"`
	RTT       string   `yaml:"rtt,omitempty" json:"rtt,omitempty"`
	Features  []string `yaml:"features,omitempty" json:"features,omitempty"`

	// netem
	Delay  string `yaml:"delay,omitempty" json:"delay,omitempty"`
	Jitter string `yaml:"jitter,omitempty" json:"jitter,omitempty"`
	Loss   string `yaml:"loss,omitempty" json:"loss,omitempty"`
	Rate   string `yaml:"rate,omitempty" json:"rate,omitempty"`

	// htb
	TotalBandwidth string  `yaml:"total_bandwidth,omitempty" json:"total_bandwidth,omitempty"`
	Classes        []Class `yaml:"classes,omitempty" json:"classes,omitempty"`
}

// Class is one bandwidth sub-allocation inside an htb descriptor. Its
// position in the Classes slice determines its class identifier.
type Class struct {
	Rate string `yaml:"rate" json:"rate"`

	// Ceil caps burst borrowing; defaults to Rate when empty.
	Ceil string `yaml:"ceil,omitempty" json:"ceil,omitempty"`
}

// Ceiling returns the effective ceiling for the class.
func (c Class) Ceiling() string {
	if c.Ceil != "" {
		return c.Ceil
	}
	return c.Rate
}

// Validate checks that the attributes required by the descriptor's kind are
// present. It does not interpret rate or duration strings; those are passed
// to tc verbatim.
func (d *Descriptor) Validate() error {
	switch d.Kind {
	case KindNone:
		return nil
	case KindCake:
		if d.Bandwidth == "" {
			return &LoadError{Entry: d.Name, Reason: "cake policy requires bandwidth"}
		}
		return nil
	case KindNetem:
		if d.Delay == "" && d.Loss == "" && d.Rate == "" {
			return &LoadError{Entry: d.Name, Reason: "netem policy requires at least one of delay, loss, rate"}
		}
		if d.Jitter != "" && d.Delay == "" {
			return &LoadError{Entry: d.Name, Reason: "netem jitter requires delay"}
		}
		return nil
	case KindHTB:
		if d.TotalBandwidth == "" {
			return &LoadError{Entry: d.Name, Reason: "htb policy requires total_bandwidth"}
		}
		if len(d.Classes) == 0 {
			return &LoadError{Entry: d.Name, Reason: "htb policy requires at least one class"}
		}
		for i, cls := range d.Classes {
			if cls.Rate == "" {
				return &LoadError{Entry: d.Name, Reason: fmt.Sprintf("htb class %d missing rate", i)}
			}
		}
		return nil
	case "":
		return &LoadError{Entry: d.Name, Reason: "missing type"}
	default:
		return &LoadError{Entry: d.Name, Reason: "unknown type " + string(d.Kind)}
	}
}
