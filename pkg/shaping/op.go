package shaping

import (
	"fmt"
	"strings"
)

// OpKind discriminates the compiled operation variants.
type OpKind string

const (
	// OpAddRootQdisc attaches a qdisc at the interface root.
	OpAddRootQdisc OpKind = "add-root-qdisc"

	// OpAddClass adds a class under Parent.
	OpAddClass OpKind = "add-class"

	// OpAddLeafQdisc attaches a child qdisc under Parent.
	OpAddLeafQdisc OpKind = "add-leaf-qdisc"
)

// Operation is one compiled unit of scheduler work. Operations from one
// descriptor form an ordered sequence: classes attach to the root qdisc
// created before them, leaf qdiscs to the class created before them.
type Operation struct {
	Kind  OpKind
	Iface string

	// Parent is the attach point (classid or qdisc handle); empty for
	// root operations.
	Parent string

	// Handle is the qdisc handle or classid this operation creates;
	// empty when the kernel may assign one.
	Handle string

	// Spec is the discipline or class parameter list in tc argument
	// order, passed through verbatim.
	Spec []string
}

// String renders the operation for logs and error messages.
func (o Operation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s dev %s", o.Kind, o.Iface)
	if o.Parent != "" {
		fmt.Fprintf(&b, " parent %s", o.Parent)
	}
	if o.Handle != "" {
		fmt.Fprintf(&b, " handle %s", o.Handle)
	}
	if len(o.Spec) > 0 {
		b.WriteByte(' ')
		b.WriteString(strings.Join(o.Spec, " "))
	}
	return b.String()
}
