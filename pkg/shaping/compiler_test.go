package shaping

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"lanekit/shaperd/pkg/policy"
)

func TestCompile_None(t *testing.T) {
	desc := &policy.Descriptor{Name: "no_shaping", Kind: policy.KindNone}

	for _, iface := range []string{"eth1", "eth0", "wlan0"} {
		ops, err := Compile(desc, iface)
		if err != nil {
			t.Fatalf("Compile(none, %s) returned error: %v", iface, err)
		}
		if len(ops) != 0 {
			t.Errorf("Compile(none, %s) = %d ops, want 0", iface, len(ops))
		}
	}
}

func TestCompile_Cake(t *testing.T) {
	desc := &policy.Descriptor{
		Name:      "home_link",
		Kind:      policy.KindCake,
		Bandwidth: "50mbit",
		RTT:       "20ms",
		Features:  []string{"diffserv4", "nat", "wash"},
	}

	ops, err := Compile(desc, "eth1")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}

	op := ops[0]
	if op.Kind != OpAddRootQdisc {
		t.Errorf("op kind = %s, want %s", op.Kind, OpAddRootQdisc)
	}
	want := []string{"cake", "bandwidth", "50mbit", "rtt", "20ms", "diffserv4", "nat", "wash"}
	if !reflect.DeepEqual(op.Spec, want) {
		t.Errorf("spec = %v, want %v", op.Spec, want)
	}
}

func TestCompile_Cake_FeatureOrderPreserved(t *testing.T) {
	desc := &policy.Descriptor{
		Name:      "ordered",
		Kind:      policy.KindCake,
		Bandwidth: "10mbit",
		Features:  []string{"wash", "nat", "diffserv4"},
	}

	ops, _ := Compile(desc, "eth1")
	want := []string{"cake", "bandwidth", "10mbit", "wash", "nat", "diffserv4"}
	if !reflect.DeepEqual(ops[0].Spec, want) {
		t.Errorf("feature order not preserved: got %v, want %v", ops[0].Spec, want)
	}
}

func TestCompile_Netem_FieldOrder(t *testing.T) {
	tests := []struct {
		name string
		desc *policy.Descriptor
		want []string
	}{
		{
			name: "delay and loss",
			desc: &policy.Descriptor{Kind: policy.KindNetem, Delay: "100ms", Loss: "1%"},
			want: []string{"netem", "delay", "100ms", "loss", "1%"},
		},
		{
			name: "all attributes",
			desc: &policy.Descriptor{Kind: policy.KindNetem, Delay: "50ms", Jitter: "10ms", Loss: "0.5%", Rate: "5mbit"},
			want: []string{"netem", "delay", "50ms", "10ms", "loss", "0.5%", "rate", "5mbit"},
		},
		{
			name: "rate only",
			desc: &policy.Descriptor{Kind: policy.KindNetem, Rate: "1mbit"},
			want: []string{"netem", "rate", "1mbit"},
		},
		{
			name: "loss only",
			desc: &policy.Descriptor{Kind: policy.KindNetem, Loss: "3%"},
			want: []string{"netem", "loss", "3%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := Compile(tt.desc, "eth1")
			if err != nil {
				t.Fatalf("Compile returned error: %v", err)
			}
			if len(ops) != 1 {
				t.Fatalf("expected 1 op, got %d", len(ops))
			}
			if !reflect.DeepEqual(ops[0].Spec, tt.want) {
				t.Errorf("spec = %v, want %v", ops[0].Spec, tt.want)
			}
		})
	}
}

func TestCompile_HTB_Structure(t *testing.T) {
	desc := &policy.Descriptor{
		Name:           "tiered",
		Kind:           policy.KindHTB,
		TotalBandwidth: "100mbit",
		Classes: []policy.Class{
			{Rate: "50mbit", Ceil: "80mbit"},
			{Rate: "30mbit"},
			{Rate: "20mbit", Ceil: "40mbit"},
		},
	}

	ops, err := Compile(desc, "eth1")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	// 1 root + 1 aggregate class + 2 per class.
	wantCount := 2 + 2*len(desc.Classes)
	if len(ops) != wantCount {
		t.Fatalf("expected %d ops, got %d", wantCount, len(ops))
	}

	if ops[0].Kind != OpAddRootQdisc || ops[0].Handle != "1:" {
		t.Errorf("op 0 = %s, want root qdisc with handle 1:", ops[0])
	}
	wantRoot := []string{"htb", "default", "30"}
	if !reflect.DeepEqual(ops[0].Spec, wantRoot) {
		t.Errorf("root spec = %v, want %v", ops[0].Spec, wantRoot)
	}

	if ops[1].Kind != OpAddClass || ops[1].Handle != "1:1" || ops[1].Parent != "1:" {
		t.Errorf("op 1 = %s, want aggregate class 1:1 under 1:", ops[1])
	}
	wantAgg := []string{"htb", "rate", "100mbit"}
	if !reflect.DeepEqual(ops[1].Spec, wantAgg) {
		t.Errorf("aggregate spec = %v, want %v", ops[1].Spec, wantAgg)
	}

	// Class identifiers run 10, 11, 12 in descriptor order; each class is
	// followed by its fq_codel leaf.
	for i := range desc.Classes {
		classOp := ops[2+2*i]
		leafOp := ops[3+2*i]
		wantID := fmt.Sprintf("1:%d", 10+i)

		if classOp.Kind != OpAddClass || classOp.Handle != wantID || classOp.Parent != "1:1" {
			t.Errorf("class %d op = %s, want add-class %s under 1:1", i, classOp, wantID)
		}
		if leafOp.Kind != OpAddLeafQdisc || leafOp.Parent != wantID {
			t.Errorf("leaf %d op = %s, want add-leaf-qdisc under %s", i, leafOp, wantID)
		}
		if leafOp.Handle != fmt.Sprintf("%d:", 10+i) {
			t.Errorf("leaf %d handle = %s, want %d:", i, leafOp.Handle, 10+i)
		}
		if !reflect.DeepEqual(leafOp.Spec, []string{"fq_codel"}) {
			t.Errorf("leaf %d spec = %v, want [fq_codel]", i, leafOp.Spec)
		}
	}

	// Ceiling defaults to rate when absent.
	wantClass1 := []string{"htb", "rate", "30mbit", "ceil", "30mbit"}
	if !reflect.DeepEqual(ops[4].Spec, wantClass1) {
		t.Errorf("class 1 spec = %v, want %v", ops[4].Spec, wantClass1)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	desc := &policy.Descriptor{
		Name:           "tiered",
		Kind:           policy.KindHTB,
		TotalBandwidth: "100mbit",
		Classes:        []policy.Class{{Rate: "60mbit"}, {Rate: "40mbit"}},
	}

	first, err := Compile(desc, "eth1")
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Compile(desc, "eth1")
		if err != nil {
			t.Fatalf("Compile returned error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("compilation not deterministic:\nfirst: %v\nagain: %v", first, again)
		}
	}
}

func TestCompile_UnsupportedKind(t *testing.T) {
	desc := &policy.Descriptor{Name: "weird", Kind: policy.Kind("tbf")}

	_, err := Compile(desc, "eth1")
	if err == nil {
		t.Fatal("expected error for unsupported kind")
	}

	var unsupported *UnsupportedKindError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedKindError, got %T", err)
	}
	if unsupported.Kind != "tbf" {
		t.Errorf("error kind = %q, want %q", unsupported.Kind, "tbf")
	}
}

func TestCompile_SupportedKindsNeverFail(t *testing.T) {
	descs := []*policy.Descriptor{
		{Kind: policy.KindNone},
		{Kind: policy.KindCake, Bandwidth: "10mbit"},
		{Kind: policy.KindNetem, Delay: "10ms"},
		{Kind: policy.KindHTB, TotalBandwidth: "10mbit", Classes: []policy.Class{{Rate: "5mbit"}}},
	}
	for _, desc := range descs {
		if _, err := Compile(desc, "eth1"); err != nil {
			t.Errorf("Compile(%s) returned error: %v", desc.Kind, err)
		}
	}
}
