// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

import (
	"fmt"
	"strings"
)

// Well-known obligation and attribute-assignment identifiers this
// package knows how to render in human-readable form. The table is
// additive: an obligation with an unrecognized ID still renders, just
// more generically, and marshal/unmarshal never consult it.
const (
	ObligationPosixUIDGID = "urn:glite:authz:obligation:posix-uidgid"
	AttrPosixUID          = "urn:glite:authz:attribute:posix-uid"
	AttrPosixGID          = "urn:glite:authz:attribute:posix-gid"
)

var obligationRenderers = map[string]func(Obligation) string{
	ObligationPosixUIDGID: renderPosixUIDGID,
}

func renderPosixUIDGID(o Obligation) string {
	uid := assignmentValue(o, AttrPosixUID)
	gid := assignmentValue(o, AttrPosixGID)
	if uid == "" || gid == "" {
		return renderGenericObligation(o)
	}
	return fmt.Sprintf("map to POSIX UID %s / GID %s", uid, gid)
}

func assignmentValue(o Obligation, id string) string {
	for _, a := range o.Assignments {
		if a.ID == id && len(a.Values) > 0 {
			return a.Values[0]
		}
	}
	return ""
}

func renderGenericObligation(o Obligation) string {
	parts := make([]string, len(o.Assignments))
	for i, a := range o.Assignments {
		parts[i] = fmt.Sprintf("%s=%s", a.ID, strings.Join(a.Values, ","))
	}
	return fmt.Sprintf("%s[on=%s] %s", o.ID, o.FulfillOn, strings.Join(parts, " "))
}

// String renders o using the well-known obligation table when o.ID is
// recognized, falling back to a generic id=value rendering otherwise.
func (o Obligation) String() string {
	if render, ok := obligationRenderers[o.ID]; ok {
		return render(o)
	}
	return renderGenericObligation(o)
}

func (s *Status) render() string {
	if s == nil {
		return ""
	}
	var codes []string
	s.Code.Walk(func(c *StatusCode) { codes = append(codes, c.Code) })
	if s.Message == "" {
		return strings.Join(codes, " -> ")
	}
	return fmt.Sprintf("%s (%s)", strings.Join(codes, " -> "), s.Message)
}

// Summary renders r for a terminal or log line: its Decision, the
// resource it applies to (if any), a non-OK status (if any), and each
// obligation.
func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", r.Decision)
	if r.ResourceID != "" {
		fmt.Fprintf(&b, " resource=%s", r.ResourceID)
	}
	if r.Status != nil && !r.Status.Code.IsOK() {
		fmt.Fprintf(&b, " status=%s", r.Status.render())
	}
	for _, ob := range r.Obligations {
		fmt.Fprintf(&b, " obligation=%s", ob.String())
	}
	return b.String()
}

// String renders the Response's results, one Summary per line.
func (resp Response) String() string {
	lines := make([]string, len(resp.Results))
	for i, r := range resp.Results {
		lines[i] = r.Summary()
	}
	return strings.Join(lines, "\n")
}
