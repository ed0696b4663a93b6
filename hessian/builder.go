// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package hessian

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Builder appends Hessian-encoded bytes for a Node tree. It does not
// track container identity and never emits a Ref: nothing in this
// module's domain mapping constructs aliased or cyclic graphs, so
// every container is written out in full at every occurrence. A
// caller that does build a Ref node by hand (RefNode) can still have
// it encoded literally, for testing the decoder's reference-table
// handling against hand-crafted streams.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Bytes returns the bytes written so far. The returned slice aliases
// the Builder's internal buffer; callers that continue writing to
// the Builder should copy it first.
func (b *Builder) Bytes() []byte { return b.buf }

func (b *Builder) writeByte(v byte) { b.buf = append(b.buf, v) }

func (b *Builder) writeRaw(v []byte) { b.buf = append(b.buf, v...) }

func (b *Builder) writeUint16(v uint16) {
	b.buf = append(b.buf, byte(v>>8), byte(v))
}

func (b *Builder) writeInt32(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) writeInt64(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.buf = append(b.buf, tmp[:]...)
}

func (b *Builder) writeDouble(v float64) {
	b.writeInt64(int64(math.Float64bits(v)))
}

// EncodeNode appends node's wire encoding to the Builder.
func (b *Builder) EncodeNode(node Node) error {
	switch node.Kind {
	case KindNull:
		b.writeByte('N')
		return nil
	case KindBool:
		if node.BoolValue {
			b.writeByte('T')
		} else {
			b.writeByte('F')
		}
		return nil
	case KindInt32:
		b.writeByte('I')
		b.writeInt32(node.Int32Value)
		return nil
	case KindInt64:
		b.writeByte('L')
		b.writeInt64(node.Int64Value)
		return nil
	case KindDouble:
		b.writeByte('D')
		b.writeDouble(node.DoubleValue)
		return nil
	case KindDate:
		b.writeByte('d')
		b.writeInt64(node.DateMillis)
		return nil
	case KindString:
		return b.encodeString(node.StringValue)
	case KindBinary:
		return b.encodeBinary(node.BinaryValue)
	case KindList:
		return b.encodeList(node)
	case KindMap:
		return b.encodeMap(node)
	case KindRef:
		b.writeByte('R')
		b.writeInt32(int32(node.RefIndex))
		return nil
	default:
		panic(fmt.Sprintf("hessian: unhandled node kind %v", node.Kind))
	}
}

func (b *Builder) encodeString(s string) error {
	chunks := splitStringChunks(s)
	var cumulative int64
	for i, chunk := range chunks {
		units := countUTF16Units(chunk)
		cumulative += int64(len(chunk))
		if cumulative > DefaultMaxCumulativeBytes {
			return &EncodeError{Kind: EncodeOversize, Detail: "string exceeds the stream-size cap once chunked"}
		}
		tag := byte('S')
		if i < len(chunks)-1 {
			tag = 's'
		}
		b.writeByte(tag)
		b.writeUint16(uint16(units))
		b.writeRaw([]byte(chunk))
	}
	return nil
}

func (b *Builder) encodeBinary(data []byte) error {
	if len(data) > DefaultMaxCumulativeBytes {
		return &EncodeError{Kind: EncodeOversize, Detail: "binary value exceeds the stream-size cap once chunked"}
	}
	if len(data) == 0 {
		b.writeByte('B')
		b.writeUint16(0)
		return nil
	}
	for offset := 0; offset < len(data); offset += MaxChunkLength {
		end := offset + MaxChunkLength
		final := end >= len(data)
		if final {
			end = len(data)
		}
		tag := byte('B')
		if !final {
			tag = 'b'
		}
		b.writeByte(tag)
		b.writeUint16(uint16(end - offset))
		b.writeRaw(data[offset:end])
	}
	return nil
}

func (b *Builder) writeTypeName(name string) {
	b.writeByte('t')
	b.writeUint16(uint16(len(name)))
	b.writeRaw([]byte(name))
}

func (b *Builder) encodeList(node Node) error {
	b.writeByte('V')
	if node.HasTypeName {
		b.writeTypeName(node.TypeName)
	}
	if node.HasLength {
		b.writeByte('l')
		b.writeInt32(int32(node.DeclaredLength))
	}
	for _, item := range node.Items {
		if err := b.EncodeNode(item); err != nil {
			return err
		}
	}
	b.writeByte('z')
	return nil
}

func (b *Builder) encodeMap(node Node) error {
	if len(node.Keys) != len(node.Values) {
		panic(fmt.Sprintf("hessian: map node has %d keys but %d values", len(node.Keys), len(node.Values)))
	}
	b.writeByte('M')
	if node.HasTypeName {
		b.writeTypeName(node.TypeName)
	}
	for i := range node.Keys {
		if err := b.EncodeNode(node.Keys[i]); err != nil {
			return err
		}
		if err := b.EncodeNode(node.Values[i]); err != nil {
			return err
		}
	}
	b.writeByte('z')
	return nil
}

// countUTF16Units returns the number of UTF-16 code units s would
// occupy (runes above the Basic Multilingual Plane count as two,
// matching a surrogate pair).
func countUTF16Units(s string) int {
	units := 0
	for _, r := range s {
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
	}
	return units
}

// splitStringChunks splits s into pieces each containing at most
// MaxChunkLength UTF-16 code units, never splitting a surrogate pair
// across a chunk boundary. An empty string yields one empty chunk.
func splitStringChunks(s string) []string {
	if s == "" {
		return []string{""}
	}

	var chunks []string
	start := 0
	units := 0
	for i, r := range s {
		unitWidth := 1
		if r > 0xFFFF {
			unitWidth = 2
		}
		if units+unitWidth > MaxChunkLength {
			chunks = append(chunks, s[start:i])
			start = i
			units = 0
		}
		units += unitWidth
	}
	chunks = append(chunks, s[start:])
	return chunks
}
