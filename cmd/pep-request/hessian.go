// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/glite-authz/pep-client/hessian"
	"github.com/glite-authz/pep-client/internal/cli"
)

func hessianCommand() *cli.Command {
	return &cli.Command{
		Name:    "hessian",
		Summary: "Inspect raw Hessian streams",
		Subcommands: []*cli.Command{
			hessianDumpCommand(),
		},
	}
}

func hessianDumpCommand() *cli.Command {
	return &cli.Command{
		Name:    "dump",
		Summary: "Decode a Hessian stream on stdin to an indented node tree",
		Usage:   "pep-request hessian dump",
		Description: `Read a single Hessian-encoded value from stdin and print its node
tree as indented text: one line per node, showing its kind, value,
and — for a reference — the index it resolves to. Each map entry's
key and value are preceded by "key:" and "value:" label lines.

This is a debugging aid for comparing byte-exact wire output against
a reference PEPd, the Hessian-codec analogue of inspecting a CBOR
message in diagnostic notation.`,
		Examples: []cli.Example{
			{
				Description: "Inspect a captured request",
				Command:     "pep-request hessian dump < request.hessian",
			},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("dump takes no positional arguments, got %q", args[0])
			}
			return dumpHessian(os.Stdin, os.Stdout)
		},
	}
}

func dumpHessian(r io.Reader, w io.Writer) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty input: expected a Hessian-encoded value on stdin")
	}

	node, err := hessian.Deserialize(data)
	if err != nil {
		return fmt.Errorf("decode hessian: %w", err)
	}

	printNode(w, node, 0)
	return nil
}

// printNode writes one line per node, indenting children under their
// parent. For a Map or List, the type name (if any) is shown next to
// the kind; for a Ref, the resolved container's kind is shown too.
func printNode(w io.Writer, n hessian.Node, depth int) {
	prefix := strings.Repeat("  ", depth)

	switch n.Kind {
	case hessian.KindNull:
		fmt.Fprintf(w, "%sNull\n", prefix)
	case hessian.KindBool:
		fmt.Fprintf(w, "%sBool %t\n", prefix, n.BoolValue)
	case hessian.KindInt32:
		fmt.Fprintf(w, "%sInt32 %d\n", prefix, n.Int32Value)
	case hessian.KindInt64:
		fmt.Fprintf(w, "%sInt64 %d\n", prefix, n.Int64Value)
	case hessian.KindDouble:
		fmt.Fprintf(w, "%sDouble %s\n", prefix, strconv.FormatFloat(n.DoubleValue, 'g', -1, 64))
	case hessian.KindDate:
		fmt.Fprintf(w, "%sDate %d (ms since epoch)\n", prefix, n.DateMillis)
	case hessian.KindString:
		fmt.Fprintf(w, "%sString %q\n", prefix, n.StringValue)
	case hessian.KindBinary:
		fmt.Fprintf(w, "%sBinary %d bytes\n", prefix, len(n.BinaryValue))
	case hessian.KindList:
		fmt.Fprintf(w, "%sList%s (%d items)\n", prefix, typeSuffix(n), len(n.Items))
		for _, item := range n.Items {
			printNode(w, item, depth+1)
		}
	case hessian.KindMap:
		fmt.Fprintf(w, "%sMap%s (%d entries)\n", prefix, typeSuffix(n), len(n.Keys))
		for i := range n.Keys {
			fmt.Fprintf(w, "%s  key:\n", prefix)
			printNode(w, n.Keys[i], depth+2)
			fmt.Fprintf(w, "%s  value:\n", prefix)
			printNode(w, n.Values[i], depth+2)
		}
	case hessian.KindRef:
		if n.Resolved != nil {
			fmt.Fprintf(w, "%sRef -> #%d (%s)\n", prefix, n.RefIndex, n.Resolved.Kind)
		} else {
			fmt.Fprintf(w, "%sRef -> #%d (unresolved)\n", prefix, n.RefIndex)
		}
	default:
		fmt.Fprintf(w, "%s%s\n", prefix, n.Kind)
	}
}

func typeSuffix(n hessian.Node) string {
	if !n.HasTypeName {
		return ""
	}
	return fmt.Sprintf(" type=%q", n.TypeName)
}
