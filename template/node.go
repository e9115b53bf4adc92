package template

// Node is a serializable view of a [Token].
type Node struct {
	Type  string     `json:"type"            yaml:"type"`
	Text  string     `json:"text,omitempty"  yaml:"text,omitempty"`
	Value *ValueNode `json:"value,omitempty" yaml:"value,omitempty"`
}

// ValueNode is a serializable view of a [Value].
type ValueNode struct {
	Type string    `json:"type"           yaml:"type"`
	Text string    `json:"text,omitempty" yaml:"text,omitempty"`
	Name string    `json:"name,omitempty" yaml:"name,omitempty"`
	Args []ArgNode `json:"args,omitempty" yaml:"args,omitempty"`
}

// ArgNode is a serializable view of a [FnArg].
type ArgNode struct {
	Name  string    `json:"name"  yaml:"name"`
	Value ValueNode `json:"value" yaml:"value"`
}

// Nodes returns the serializable view of ts.
func (ts Tokens) Nodes() []Node {
	nodes := make([]Node, len(ts))

	for i, t := range ts {
		nodes[i].Type = t.Kind.String()

		switch t.Kind {
		case KindRaw:
			nodes[i].Text = t.Text

		case KindTag:
			v := t.Value.node()
			nodes[i].Value = &v
		}
	}

	return nodes
}

func (v Value) node() ValueNode {
	n := ValueNode{
		Type: v.Kind.String(),
		Text: v.Text,
		Name: v.Name,
	}

	for _, a := range v.Args {
		n.Args = append(n.Args, ArgNode{Name: a.Name, Value: a.Value.node()})
	}

	return n
}
