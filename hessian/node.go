// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package hessian

import "fmt"

// Kind identifies which variant of the Hessian node tagged union a
// [Node] holds. Only one set of the Node's fields is meaningful for
// a given Kind; see the field comments on Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt32
	KindInt64
	KindDouble
	KindDate
	KindString
	KindBinary
	KindList
	KindMap
	KindRef
)

// String returns the Kind's name, matching the wire tag it corresponds to.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindInt32:
		return "Int32"
	case KindInt64:
		return "Int64"
	case KindDouble:
		return "Double"
	case KindDate:
		return "Date"
	case KindString:
		return "String"
	case KindBinary:
		return "Binary"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindRef:
		return "Ref"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Node is a tagged value in the Hessian node tree. Construct one with
// the Kind-specific constructors below rather than setting Kind
// directly; they guarantee consistent field usage.
type Node struct {
	Kind Kind

	// BoolValue is meaningful for KindBool.
	BoolValue bool
	// Int32Value is meaningful for KindInt32.
	Int32Value int32
	// Int64Value is meaningful for KindInt64.
	Int64Value int64
	// DoubleValue is meaningful for KindDouble.
	DoubleValue float64
	// DateMillis is meaningful for KindDate: milliseconds since the
	// Unix epoch, matching the wire's signed 64-bit field.
	DateMillis int64
	// StringValue is meaningful for KindString.
	StringValue string
	// BinaryValue is meaningful for KindBinary.
	BinaryValue []byte

	// TypeName is the optional `t` block for KindList and KindMap.
	// HasTypeName distinguishes an absent type name from an empty one.
	TypeName    string
	HasTypeName bool

	// DeclaredLength is the optional `l` block for KindList. It is
	// advisory; decoders are not required to validate Items against
	// it. HasLength distinguishes an absent length from a declared
	// zero length.
	DeclaredLength int
	HasLength      bool

	// Items holds the child nodes of a KindList, in wire order.
	Items []Node

	// Keys and Values hold the entries of a KindMap, in wire order.
	// len(Keys) == len(Values) is an invariant enforced by MapNode
	// and by the decoder.
	Keys   []Node
	Values []Node

	// RefIndex is the raw wire index for KindRef.
	RefIndex int
	// Resolved points at the container Node registered at RefIndex in
	// the decoding stream's reference table. It shares identity with
	// that container — mutations visible through one are visible
	// through the other — so a self- or forward-reference resolves to
	// the same object the rest of the tree eventually converges on.
	// Only populated by the decoder; nil on Ref nodes built by hand.
	Resolved *Node
}

// NullNode returns a Null node.
func NullNode() Node { return Node{Kind: KindNull} }

// IsNull reports whether n is a Null node.
func (n Node) IsNull() bool { return n.Kind == KindNull }

// BoolNode returns a Bool node.
func BoolNode(v bool) Node { return Node{Kind: KindBool, BoolValue: v} }

// Int32Node returns an Int32 node.
func Int32Node(v int32) Node { return Node{Kind: KindInt32, Int32Value: v} }

// Int64Node returns an Int64 node.
func Int64Node(v int64) Node { return Node{Kind: KindInt64, Int64Value: v} }

// DoubleNode returns a Double node.
func DoubleNode(v float64) Node { return Node{Kind: KindDouble, DoubleValue: v} }

// DateNode returns a Date node from milliseconds since the Unix epoch.
func DateNode(millis int64) Node { return Node{Kind: KindDate, DateMillis: millis} }

// StringNode returns a String node.
func StringNode(v string) Node { return Node{Kind: KindString, StringValue: v} }

// BinaryNode returns a Binary node.
func BinaryNode(v []byte) Node { return Node{Kind: KindBinary, BinaryValue: v} }

// ListNode returns a List node with no declared length. Pass "" for
// typeName to omit the `t` block.
func ListNode(typeName string, items []Node) Node {
	return Node{
		Kind:        KindList,
		TypeName:    typeName,
		HasTypeName: typeName != "",
		Items:       items,
	}
}

// ListNodeWithLength returns a List node carrying an advisory
// declared length in its `l` block.
func ListNodeWithLength(typeName string, length int, items []Node) Node {
	node := ListNode(typeName, items)
	node.DeclaredLength = length
	node.HasLength = true
	return node
}

// MapNode returns a Map node. Pass "" for typeName to omit the `t`
// block. Panics if len(keys) != len(values); that is a programmer
// error, not a runtime condition this package's callers can trigger
// through normal use.
func MapNode(typeName string, keys, values []Node) Node {
	if len(keys) != len(values) {
		panic(fmt.Sprintf("hessian.MapNode: %d keys but %d values", len(keys), len(values)))
	}
	return Node{
		Kind:        KindMap,
		TypeName:    typeName,
		HasTypeName: typeName != "",
		Keys:        keys,
		Values:      values,
	}
}

// RefNode returns a Ref node pointing at index. Resolved is left nil;
// it is populated only by the decoder.
func RefNode(index int) Node { return Node{Kind: KindRef, RefIndex: index} }

// MapGet linearly scans a Map node's entries for a String key equal
// to key and returns the associated value and true. Map entries are
// small (typically under ten) so linear scan is the documented
// lookup strategy rather than building an index.
func (n Node) MapGet(key string) (Node, bool) {
	for i, k := range n.Keys {
		if k.Kind == KindString && k.StringValue == key {
			return n.Values[i], true
		}
	}
	return Node{}, false
}
