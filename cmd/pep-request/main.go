// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/glite-authz/pep-client/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	slog.SetDefault(cli.NewCommandLogger())
	return root().Execute(os.Args[1:])
}

func root() *cli.Command {
	return &cli.Command{
		Name:    "pep-request",
		Summary: "Send XACML authorization requests to a glite-authz PEP daemon",
		Description: `pep-request is a companion tool for the pep-client library.

"authorize" builds a request from flags, sends it to one of the
configured PEP daemon endpoints, and prints the decision.

"hessian dump" decodes a raw Hessian stream from stdin into an
indented, human-readable node tree, for comparing byte-exact output
against a reference PEPd.`,
		Examples: []cli.Example{
			{
				Description: "Check a subject's access to a resource",
				Command:     "pep-request authorize --config pep-client.yaml --subject-dn /C=CH/O=CERN/CN=Alice --resource-id urn:example:res --action-id read",
			},
			{
				Description: "Inspect a captured request on the wire",
				Command:     "pep-request hessian dump < request.hessian",
			},
		},
		Subcommands: []*cli.Command{
			authorizeCommand(),
			hessianCommand(),
		},
	}
}
