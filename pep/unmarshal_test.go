// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

import (
	"errors"
	"testing"

	"github.com/glite-authz/pep-client/hessian"
)

func responseBytes(t *testing.T, resultsNode hessian.Node) []byte {
	t.Helper()
	node := hessian.MapNode(classResponse,
		[]hessian.Node{hessian.StringNode("request"), hessian.StringNode("results")},
		[]hessian.Node{hessian.NullNode(), resultsNode},
	)
	data, err := hessian.Serialize(node)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	return data
}

func resultNode(decision int32, extra ...hessian.Node) hessian.Node {
	keys := []hessian.Node{hessian.StringNode("decision")}
	values := []hessian.Node{hessian.Int32Node(decision)}
	for i := 0; i+1 < len(extra); i += 2 {
		keys = append(keys, extra[i])
		values = append(values, extra[i+1])
	}
	return hessian.MapNode(classResult, keys, values)
}

func TestUnmarshalResponse_Permit(t *testing.T) {
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{
		resultNode(1, hessian.StringNode("resourceId"), hessian.StringNode("urn:example:res")),
	}))

	resp, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatalf("UnmarshalResponse() error: %v", err)
	}
	if len(resp.Results) != 1 {
		t.Fatalf("Results = %+v", resp.Results)
	}
	if resp.Results[0].Decision != Permit {
		t.Errorf("Decision = %v, want Permit", resp.Results[0].Decision)
	}
	if resp.Results[0].ResourceID != "urn:example:res" {
		t.Errorf("ResourceID = %q", resp.Results[0].ResourceID)
	}
}

func TestUnmarshalResponse_DenyWithObligation(t *testing.T) {
	obligation := hessian.MapNode(classObligation,
		[]hessian.Node{hessian.StringNode("id"), hessian.StringNode("fulfillOn"), hessian.StringNode("assignments")},
		[]hessian.Node{
			hessian.StringNode("urn:example:obligation:log"),
			hessian.Int32Node(0),
			hessian.ListNode("", []hessian.Node{
				hessian.MapNode(classAttributeAssignment,
					[]hessian.Node{hessian.StringNode("id"), hessian.StringNode("values")},
					[]hessian.Node{hessian.StringNode("urn:example:reason"), hessian.ListNode("", []hessian.Node{hessian.StringNode("no matching policy")})},
				),
			}),
		},
	)
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{
		resultNode(0, hessian.StringNode("obligations"), hessian.ListNode("", []hessian.Node{obligation})),
	}))

	resp, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatalf("UnmarshalResponse() error: %v", err)
	}
	r := resp.Results[0]
	if r.Decision != Deny {
		t.Errorf("Decision = %v, want Deny", r.Decision)
	}
	if len(r.Obligations) != 1 || r.Obligations[0].FulfillOn != FulfillOnDeny {
		t.Fatalf("Obligations = %+v", r.Obligations)
	}
	if len(r.Obligations[0].Assignments) != 1 || r.Obligations[0].Assignments[0].Values[0] != "no matching policy" {
		t.Fatalf("Assignments = %+v", r.Obligations[0].Assignments)
	}
}

func TestUnmarshalResponse_IndeterminateWithNestedStatus(t *testing.T) {
	innerCode := hessian.MapNode(classStatusCode,
		[]hessian.Node{hessian.StringNode("code")},
		[]hessian.Node{hessian.StringNode(StatusMissingAttribute)},
	)
	outerCode := hessian.MapNode(classStatusCode,
		[]hessian.Node{hessian.StringNode("code"), hessian.StringNode("subcode")},
		[]hessian.Node{hessian.StringNode(StatusProcessingError), innerCode},
	)
	status := hessian.MapNode(classStatus,
		[]hessian.Node{hessian.StringNode("message"), hessian.StringNode("code")},
		[]hessian.Node{hessian.StringNode("required attribute missing"), outerCode},
	)
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{
		resultNode(2, hessian.StringNode("status"), status),
	}))

	resp, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatalf("UnmarshalResponse() error: %v", err)
	}
	r := resp.Results[0]
	if r.Decision != Indeterminate {
		t.Errorf("Decision = %v, want Indeterminate", r.Decision)
	}
	if r.Status == nil || r.Status.Code == nil || r.Status.Code.Subcode == nil {
		t.Fatalf("Status = %+v", r.Status)
	}
	if r.Status.Code.Code != StatusProcessingError {
		t.Errorf("Code = %q", r.Status.Code.Code)
	}
	if r.Status.Code.Subcode.Code != StatusMissingAttribute {
		t.Errorf("Subcode = %q", r.Status.Code.Subcode.Code)
	}
	if r.Status.Code.Depth() != 2 {
		t.Errorf("Depth() = %d, want 2", r.Status.Code.Depth())
	}
}

func TestUnmarshalResponse_UnknownDecisionMapsToIndeterminate(t *testing.T) {
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{resultNode(99)}))

	resp, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatalf("UnmarshalResponse() error: %v", err)
	}
	if resp.Results[0].Decision != Indeterminate {
		t.Errorf("Decision = %v, want Indeterminate", resp.Results[0].Decision)
	}
}

func TestUnmarshalResponse_InvalidFulfillOnRejected(t *testing.T) {
	obligation := hessian.MapNode(classObligation,
		[]hessian.Node{hessian.StringNode("id"), hessian.StringNode("fulfillOn")},
		[]hessian.Node{hessian.StringNode("urn:example:obligation"), hessian.Int32Node(5)},
	)
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{
		resultNode(1, hessian.StringNode("obligations"), hessian.ListNode("", []hessian.Node{obligation})),
	}))

	_, err := UnmarshalResponse(data)
	var decodeErr *hessian.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v (%T), want one wrapping *hessian.DecodeError", err, err)
	}
	if decodeErr.Kind != hessian.EnumOutOfRange {
		t.Errorf("Kind = %v, want EnumOutOfRange", decodeErr.Kind)
	}
}

func TestUnmarshalResponse_MissingDecisionRejected(t *testing.T) {
	result := hessian.MapNode(classResult, nil, nil)
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{result}))

	_, err := UnmarshalResponse(data)
	var decodeErr *hessian.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v (%T), want one wrapping *hessian.DecodeError", err, err)
	}
	if decodeErr.Kind != hessian.MissingRequired {
		t.Errorf("Kind = %v, want MissingRequired", decodeErr.Kind)
	}
	if decodeErr.Path != "Response.results[0].decision" {
		t.Errorf("Path = %q", decodeErr.Path)
	}
}

func TestUnmarshalResponse_WrongClassNameRejected(t *testing.T) {
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{
		hessian.MapNode("org.glite.authz.pep.model.NotAResult",
			[]hessian.Node{hessian.StringNode("decision")},
			[]hessian.Node{hessian.Int32Node(1)},
		),
	}))

	_, err := UnmarshalResponse(data)
	var decodeErr *hessian.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v (%T), want one wrapping *hessian.DecodeError", err, err)
	}
	if decodeErr.Kind != hessian.ShapeMismatch {
		t.Errorf("Kind = %v, want ShapeMismatch", decodeErr.Kind)
	}
}

func buildStatusCodeChain(subcodeCount int) hessian.Node {
	node := hessian.MapNode(classStatusCode,
		[]hessian.Node{hessian.StringNode("code")},
		[]hessian.Node{hessian.StringNode("urn:example:leaf")},
	)
	for i := 0; i < subcodeCount; i++ {
		node = hessian.MapNode(classStatusCode,
			[]hessian.Node{hessian.StringNode("code"), hessian.StringNode("subcode")},
			[]hessian.Node{hessian.StringNode("urn:example:mid"), node},
		)
	}
	return node
}

func TestStatusCodeDepth_WithinCapDecodes(t *testing.T) {
	node := buildStatusCodeChain(31)
	code, err := statusCodeFromNode(node, "Status.code", 0)
	if err != nil {
		t.Fatalf("statusCodeFromNode() error: %v", err)
	}
	if got := code.Depth(); got != 32 {
		t.Errorf("Depth() = %d, want 32", got)
	}
}

func TestStatusCodeDepth_ExceedsCapFails(t *testing.T) {
	node := buildStatusCodeChain(33)
	_, err := statusCodeFromNode(node, "Status.code", 0)
	var decodeErr *hessian.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v (%T), want one wrapping *hessian.DecodeError", err, err)
	}
	if decodeErr.Kind != hessian.DepthExceeded {
		t.Errorf("Kind = %v, want DepthExceeded", decodeErr.Kind)
	}
}

func TestUnmarshalResponse_UnknownWireKeyTolerated(t *testing.T) {
	result := resultNode(3, hessian.StringNode("somethingFuture"), hessian.StringNode("ignored"))
	data := responseBytes(t, hessian.ListNode("", []hessian.Node{result}))

	resp, err := UnmarshalResponse(data)
	if err != nil {
		t.Fatalf("UnmarshalResponse() error: %v", err)
	}
	if resp.Results[0].Decision != NotApplicable {
		t.Errorf("Decision = %v, want NotApplicable", resp.Results[0].Decision)
	}
}
