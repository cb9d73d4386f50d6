package stats

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// ConditionTypeKey is the discriminator field of an encoded condition.
// Encoders always write it first so readers can peek it cheaply.
const ConditionTypeKey = "condition_type"

type conditionHeader struct {
	Not                  bool       `yaml:"not"`
	ReupOnMet            bool       `yaml:"reup_on_met"`
	IgnoreModsWithSource bool       `yaml:"ignore_mods_with_source"`
	And                  yaml.Node `yaml:"and"`
	Or                   yaml.Node `yaml:"or"`
}

type modifierDoc struct {
	Stat     string    `yaml:"stat"`
	Op       string    `yaml:"op"`
	Value    float64   `yaml:"value"`
	Hidden   bool      `yaml:"hidden,omitempty"`
	Duration yaml.Node `yaml:"duration,omitempty"`
}

type growthDoc struct {
	Type  string  `yaml:"type"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type statDoc struct {
	Stat      string      `yaml:"stat"`
	Base      float64     `yaml:"base"`
	Current   *float64    `yaml:"current,omitempty"`
	Growth    *growthDoc  `yaml:"growth,omitempty"`
	Modifiers []yaml.Node `yaml:"modifiers,omitempty"`
}

type effectDoc struct {
	ID        string      `yaml:"id"`
	Duration  yaml.Node   `yaml:"duration,omitempty"`
	Modifiers []yaml.Node `yaml:"modifiers"`
}

// unwrap skips document and alias wrappers. A zero node is an absent
// field and, like an explicit null, unwraps to nil.
func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case 0:
			return nil
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		case yaml.ScalarNode:
			if n.ShortTag() == "!!null" {
				return nil
			}
			return n
		default:
			return n
		}
	}
	return nil
}

// PeekConditionType scans the keys of a mapping for the discriminator
// without decoding anything else.
func PeekConditionType(n *yaml.Node) (string, bool) {
	n = unwrap(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return "", false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == ConditionTypeKey {
			v := n.Content[i+1].Value
			return v, v != ""
		}
	}
	return "", false
}

// DecodeCondition builds a pooled condition tree from n.
//
// The discriminator is peeked first to pick the variant. A missing or
// unregistered tag is a lookup miss: the result is nil with no error,
// and the caller skips the condition. Malformed input is an error.
func (a *Arena) DecodeCondition(n *yaml.Node) (*Condition, error) {
	n = unwrap(n)
	if n == nil {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: condition must be a mapping", n.Line)
	}

	typeID, ok := PeekConditionType(n)
	if !ok {
		slog.Warn("condition without type skipped", "line", n.Line)
		return nil, nil
	}
	c, ok := a.NewCondition(typeID)
	if !ok {
		return nil, nil
	}

	if err := a.decodeConditionInto(c, n); err != nil {
		a.ReleaseCondition(c)
		return nil, fmt.Errorf("line %d: decoding %s condition: %w", n.Line, typeID, err)
	}
	return c, nil
}

func (a *Arena) decodeConditionInto(c *Condition, n *yaml.Node) error {
	var h conditionHeader
	if err := n.Decode(&h); err != nil {
		return err
	}
	if err := n.Decode(c.variant); err != nil {
		return err
	}

	c.Not = h.Not
	c.ReupOnMet = h.ReupOnMet
	c.IgnoreModsWithSource = h.IgnoreModsWithSource

	and, err := a.DecodeCondition(&h.And)
	if err != nil {
		return err
	}
	c.And = and

	or, err := a.DecodeCondition(&h.Or)
	if err != nil {
		return err
	}
	c.Or = or
	return nil
}

// EncodeCondition writes c and its subtree as a mapping whose first key
// is the discriminator, followed by flags, variant fields, and and/or.
// Registration state and cached results are not encoded.
func EncodeCondition(c *Condition) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	appendPair(n, ConditionTypeKey, strNode(c.typeID))

	if c.Not {
		appendPair(n, "not", boolNode(true))
	}
	if c.ReupOnMet {
		appendPair(n, "reup_on_met", boolNode(true))
	}
	if c.IgnoreModsWithSource {
		appendPair(n, "ignore_mods_with_source", boolNode(true))
	}

	var fields yaml.Node
	if err := fields.Encode(c.variant); err != nil {
		return nil, fmt.Errorf("encoding %s condition: %w", c.typeID, err)
	}
	if fields.Kind == yaml.MappingNode {
		n.Content = append(n.Content, fields.Content...)
	}

	if c.And != nil {
		and, err := EncodeCondition(c.And)
		if err != nil {
			return nil, err
		}
		appendPair(n, "and", and)
	}
	if c.Or != nil {
		or, err := EncodeCondition(c.Or)
		if err != nil {
			return nil, err
		}
		appendPair(n, "or", or)
	}
	return n, nil
}

// DecodeModifier builds a pooled, unregistered modifier from n.
// Unknown operators are kept and logged; they leave values unchanged.
func (a *Arena) DecodeModifier(n *yaml.Node) (*Modifier, error) {
	n = unwrap(n)
	if n == nil {
		return nil, fmt.Errorf("empty modifier")
	}

	var doc modifierDoc
	if err := n.Decode(&doc); err != nil {
		return nil, fmt.Errorf("line %d: decoding modifier: %w", n.Line, err)
	}
	if doc.Stat == "" {
		return nil, fmt.Errorf("line %d: modifier without stat", n.Line)
	}
	if _, ok := a.ops.Lookup(doc.Op); !ok {
		slog.Warn("modifier with unknown operator", "op", doc.Op, "stat", doc.Stat, "line", n.Line)
	}

	duration, err := a.DecodeCondition(&doc.Duration)
	if err != nil {
		return nil, err
	}
	return a.NewModifier(doc.Stat, doc.Op, doc.Value, duration, doc.Hidden), nil
}

// EncodeModifier writes the authored fields of m.
func EncodeModifier(m *Modifier) (*yaml.Node, error) {
	doc := modifierDoc{
		Stat:   m.StatTypeID,
		Op:     m.Op,
		Value:  m.Value,
		Hidden: m.Hidden,
	}
	if m.Duration != nil {
		d, err := EncodeCondition(m.Duration)
		if err != nil {
			return nil, err
		}
		doc.Duration = *d
	}

	var n yaml.Node
	if err := n.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding modifier: %w", err)
	}
	return &n, nil
}

// DecodeStat builds a pooled stat with its modifiers from n.
// A missing current value starts at base.
func (a *Arena) DecodeStat(n *yaml.Node) (*Stat, error) {
	n = unwrap(n)
	if n == nil {
		return nil, fmt.Errorf("empty stat")
	}

	var doc statDoc
	if err := n.Decode(&doc); err != nil {
		return nil, fmt.Errorf("line %d: decoding stat: %w", n.Line, err)
	}
	if doc.Stat == "" {
		return nil, fmt.Errorf("line %d: stat without id", n.Line)
	}

	st := a.NewStat(doc.Stat, doc.Base)
	if doc.Current != nil {
		st.CurrentValue = *doc.Current
	}
	if doc.Growth != nil {
		st.Growth = Growth{TypeID: doc.Growth.Type, Start: doc.Growth.Start, End: doc.Growth.End}
	}

	for i := range doc.Modifiers {
		mod, err := a.DecodeModifier(&doc.Modifiers[i])
		if err != nil {
			a.ReleaseStat(st)
			return nil, fmt.Errorf("stat %s: %w", doc.Stat, err)
		}
		mod.StatTypeID = st.StatTypeID
		st.Modifiers = append(st.Modifiers, mod)
	}
	st.SortModifiers()
	return st, nil
}

// EncodeStat writes st. Sourced modifiers are runtime state and are left
// out when ignoreModsWithSource is set.
func EncodeStat(st *Stat, ignoreModsWithSource bool) (*yaml.Node, error) {
	current := st.CurrentValue
	doc := statDoc{
		Stat:    st.StatTypeID,
		Base:    st.BaseValue,
		Current: &current,
	}
	if st.Growth.TypeID != "" {
		doc.Growth = &growthDoc{Type: st.Growth.TypeID, Start: st.Growth.Start, End: st.Growth.End}
	}

	for _, mod := range st.Modifiers {
		if ignoreModsWithSource && mod.HasSource() {
			continue
		}
		mn, err := EncodeModifier(mod)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", st.StatTypeID, err)
		}
		doc.Modifiers = append(doc.Modifiers, *mn)
	}

	var n yaml.Node
	if err := n.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encoding stat %s: %w", st.StatTypeID, err)
	}
	return &n, nil
}

// DecodeEffect builds an effect definition whose templates are drawn
// from a.
func (a *Arena) DecodeEffect(n *yaml.Node) (*EffectDef, error) {
	n = unwrap(n)
	if n == nil {
		return nil, fmt.Errorf("empty effect")
	}

	var doc effectDoc
	if err := n.Decode(&doc); err != nil {
		return nil, fmt.Errorf("line %d: decoding effect: %w", n.Line, err)
	}

	def := &EffectDef{ID: doc.ID}

	duration, err := a.DecodeCondition(&doc.Duration)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", doc.ID, err)
	}
	def.DefaultDuration = duration

	for i := range doc.Modifiers {
		mod, err := a.DecodeModifier(&doc.Modifiers[i])
		if err != nil {
			a.ReleaseEffect(def)
			return nil, fmt.Errorf("effect %s: %w", doc.ID, err)
		}
		def.Modifiers = append(def.Modifiers, mod)
	}
	return def, nil
}

// ReleaseEffect returns the templates of def to the pool.
func (a *Arena) ReleaseEffect(def *EffectDef) {
	for _, mod := range def.Modifiers {
		a.ReleaseModifier(mod)
	}
	def.Modifiers = nil
	a.ReleaseCondition(def.DefaultDuration)
	def.DefaultDuration = nil
}

func appendPair(n *yaml.Node, key string, value *yaml.Node) {
	n.Content = append(n.Content, strNode(key), value)
}

func strNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func boolNode(v bool) *yaml.Node {
	if v {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}
}
