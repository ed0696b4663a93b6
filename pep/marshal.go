// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

import (
	"fmt"

	"github.com/glite-authz/pep-client/hessian"
)

// MarshalRequest encodes req to Hessian bytes ready to send to a PEP
// daemon. It reports an oversize field with its full path (e.g.
// "Request.subjects[2].attributes[0].id") before attempting to build
// the node tree, since the encoder itself has no field-name context
// to attach to a failure discovered mid-build.
func MarshalRequest(req *Request) ([]byte, error) {
	if req == nil {
		return nil, &MarshalError{Err: &hessian.EncodeError{Kind: hessian.EncodeMissingRequired, Path: "Request", Detail: "request is nil"}}
	}
	if err := validateRequestSizes(req); err != nil {
		return nil, err
	}
	data, err := hessian.Serialize(requestNode(req))
	if err != nil {
		if encErr, ok := err.(*hessian.EncodeError); ok {
			return nil, &MarshalError{Err: encErr}
		}
		return nil, err
	}
	return data, nil
}

func validateRequestSizes(req *Request) error {
	for i, s := range req.Subjects {
		if err := validateAttributeSizes(s.Attributes, fmt.Sprintf("Request.subjects[%d]", i)); err != nil {
			return err
		}
	}
	for i, r := range req.Resources {
		path := fmt.Sprintf("Request.resources[%d]", i)
		if len(r.Content) > hessian.DefaultMaxCumulativeBytes {
			return oversizeEncode(path+".content", "resource content exceeds the stream-size cap")
		}
		if err := validateAttributeSizes(r.Attributes, path); err != nil {
			return err
		}
	}
	if req.Action != nil {
		if err := validateAttributeSizes(req.Action.Attributes, "Request.action"); err != nil {
			return err
		}
	}
	if req.Environment != nil {
		if err := validateAttributeSizes(req.Environment.Attributes, "Request.environment"); err != nil {
			return err
		}
	}
	return nil
}

func validateAttributeSizes(attrs []Attribute, basePath string) error {
	for i, a := range attrs {
		path := fmt.Sprintf("%s.attributes[%d]", basePath, i)
		if len(a.ID) > hessian.DefaultMaxCumulativeBytes {
			return oversizeEncode(path+".id", "attribute id exceeds the stream-size cap")
		}
		for j, v := range a.Values {
			if len(v) > hessian.DefaultMaxCumulativeBytes {
				return oversizeEncode(fmt.Sprintf("%s.values[%d]", path, j), "attribute value exceeds the stream-size cap")
			}
		}
	}
	return nil
}

func optionalStringNode(s string) hessian.Node {
	if s == "" {
		return hessian.NullNode()
	}
	return hessian.StringNode(s)
}

func stringListNode(values []string) hessian.Node {
	items := make([]hessian.Node, len(values))
	for i, v := range values {
		items[i] = hessian.StringNode(v)
	}
	return hessian.ListNode("", items)
}

func attributeNode(a Attribute) hessian.Node {
	return hessian.MapNode(classAttribute,
		[]hessian.Node{
			hessian.StringNode("id"),
			hessian.StringNode("dataType"),
			hessian.StringNode("issuer"),
			hessian.StringNode("values"),
		},
		[]hessian.Node{
			hessian.StringNode(a.ID),
			optionalStringNode(a.DataType),
			optionalStringNode(a.Issuer),
			stringListNode(a.Values),
		},
	)
}

func attributesListNode(attrs []Attribute) hessian.Node {
	items := make([]hessian.Node, len(attrs))
	for i, a := range attrs {
		items[i] = attributeNode(a)
	}
	return hessian.ListNode("", items)
}

func subjectNode(s Subject) hessian.Node {
	return hessian.MapNode(classSubject,
		[]hessian.Node{hessian.StringNode("category"), hessian.StringNode("attributes")},
		[]hessian.Node{optionalStringNode(s.Category), attributesListNode(s.Attributes)},
	)
}

func resourceNode(r Resource) hessian.Node {
	return hessian.MapNode(classResource,
		[]hessian.Node{hessian.StringNode("content"), hessian.StringNode("attributes")},
		[]hessian.Node{optionalStringNode(r.Content), attributesListNode(r.Attributes)},
	)
}

func actionNode(a *Action) hessian.Node {
	if a == nil {
		return hessian.NullNode()
	}
	return hessian.MapNode(classAction,
		[]hessian.Node{hessian.StringNode("attributes")},
		[]hessian.Node{attributesListNode(a.Attributes)},
	)
}

func environmentNode(e *Environment) hessian.Node {
	if e == nil {
		return hessian.NullNode()
	}
	return hessian.MapNode(classEnvironment,
		[]hessian.Node{hessian.StringNode("attributes")},
		[]hessian.Node{attributesListNode(e.Attributes)},
	)
}

func requestNode(req *Request) hessian.Node {
	subjects := make([]hessian.Node, len(req.Subjects))
	for i, s := range req.Subjects {
		subjects[i] = subjectNode(s)
	}
	resources := make([]hessian.Node, len(req.Resources))
	for i, r := range req.Resources {
		resources[i] = resourceNode(r)
	}
	return hessian.MapNode(classRequest,
		[]hessian.Node{
			hessian.StringNode("subjects"),
			hessian.StringNode("resources"),
			hessian.StringNode("action"),
			hessian.StringNode("environment"),
		},
		[]hessian.Node{
			hessian.ListNode("", subjects),
			hessian.ListNode("", resources),
			actionNode(req.Action),
			environmentNode(req.Environment),
		},
	)
}
