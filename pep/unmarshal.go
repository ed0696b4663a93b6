// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

import (
	"fmt"
	"log/slog"

	"github.com/glite-authz/pep-client/hessian"
)

// UnmarshalResponse decodes bytes (a Hessian stream from a PEP
// daemon) into a Response.
func UnmarshalResponse(data []byte) (*Response, error) {
	node, err := hessian.Deserialize(data)
	if err != nil {
		if decodeErr, ok := err.(*hessian.DecodeError); ok {
			return nil, &UnmarshalError{Err: decodeErr.WithPath("Response")}
		}
		return nil, err
	}
	return responseFromNode(node, "Response")
}

func warnUnknownKeys(node hessian.Node, known map[string]bool, path string) {
	for _, key := range node.Keys {
		if key.Kind != hessian.KindString {
			continue
		}
		if !known[key.StringValue] {
			slog.Warn("pep: unknown wire key, ignoring", "path", path, "key", key.StringValue)
		}
	}
}

func checkClassName(node hessian.Node, want string, path string) error {
	if node.Kind != hessian.KindMap {
		return shapeMismatch(path, fmt.Sprintf("expected a %s map, got %s", want, node.Kind))
	}
	if node.HasTypeName && node.TypeName != want {
		return shapeMismatch(path, fmt.Sprintf("unexpected class name %q, want %q", node.TypeName, want))
	}
	return nil
}

func getRequiredString(node hessian.Node, key, path string) (string, error) {
	value, ok := node.MapGet(key)
	if !ok || value.IsNull() {
		return "", missingRequired(path+"."+key, "required field is absent or Null")
	}
	if value.Kind != hessian.KindString {
		return "", shapeMismatch(path+"."+key, fmt.Sprintf("expected a String, got %s", value.Kind))
	}
	return value.StringValue, nil
}

func getOptionalString(node hessian.Node, key string) (string, error) {
	value, ok := node.MapGet(key)
	if !ok || value.IsNull() {
		return "", nil
	}
	if value.Kind != hessian.KindString {
		return "", shapeMismatch(key, fmt.Sprintf("expected a String or Null, got %s", value.Kind))
	}
	return value.StringValue, nil
}

func getStringList(node hessian.Node, key, path string) ([]string, error) {
	value, ok := node.MapGet(key)
	if !ok || value.IsNull() {
		return nil, nil
	}
	if value.Kind != hessian.KindList {
		return nil, shapeMismatch(path, fmt.Sprintf("expected a List, got %s", value.Kind))
	}
	out := make([]string, len(value.Items))
	for i, item := range value.Items {
		if item.Kind != hessian.KindString {
			return nil, shapeMismatch(fmt.Sprintf("%s[%d]", path, i), fmt.Sprintf("expected a String, got %s", item.Kind))
		}
		out[i] = item.StringValue
	}
	return out, nil
}

var knownAttributeKeys = map[string]bool{"id": true, "dataType": true, "issuer": true, "values": true}

func attributeFromNode(node hessian.Node, path string) (Attribute, error) {
	if err := checkClassName(node, classAttribute, path); err != nil {
		return Attribute{}, err
	}
	warnUnknownKeys(node, knownAttributeKeys, path)

	id, err := getRequiredString(node, "id", path)
	if err != nil {
		return Attribute{}, err
	}
	dataType, err := getOptionalString(node, "dataType")
	if err != nil {
		return Attribute{}, err
	}
	issuer, err := getOptionalString(node, "issuer")
	if err != nil {
		return Attribute{}, err
	}
	values, err := getStringList(node, "values", path+".values")
	if err != nil {
		return Attribute{}, err
	}
	return Attribute{ID: id, DataType: dataType, Issuer: issuer, Values: values}, nil
}

func attributesFromNode(value hessian.Node, path string) ([]Attribute, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind != hessian.KindList {
		return nil, shapeMismatch(path, fmt.Sprintf("expected a List, got %s", value.Kind))
	}
	out := make([]Attribute, len(value.Items))
	for i, item := range value.Items {
		a, err := attributeFromNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

var knownSubjectKeys = map[string]bool{"category": true, "attributes": true}

func subjectFromNode(node hessian.Node, path string) (Subject, error) {
	if err := checkClassName(node, classSubject, path); err != nil {
		return Subject{}, err
	}
	warnUnknownKeys(node, knownSubjectKeys, path)

	category, err := getOptionalString(node, "category")
	if err != nil {
		return Subject{}, err
	}
	attrsNode, _ := node.MapGet("attributes")
	attrs, err := attributesFromNode(attrsNode, path+".attributes")
	if err != nil {
		return Subject{}, err
	}
	return Subject{Category: category, Attributes: attrs}, nil
}

var knownResourceKeys = map[string]bool{"content": true, "attributes": true}

func resourceFromNode(node hessian.Node, path string) (Resource, error) {
	if err := checkClassName(node, classResource, path); err != nil {
		return Resource{}, err
	}
	warnUnknownKeys(node, knownResourceKeys, path)

	content, err := getOptionalString(node, "content")
	if err != nil {
		return Resource{}, err
	}
	attrsNode, _ := node.MapGet("attributes")
	attrs, err := attributesFromNode(attrsNode, path+".attributes")
	if err != nil {
		return Resource{}, err
	}
	return Resource{Content: content, Attributes: attrs}, nil
}

var knownActionKeys = map[string]bool{"attributes": true}

func actionFromNode(value hessian.Node, path string) (*Action, error) {
	if value.IsNull() {
		return nil, nil
	}
	if err := checkClassName(value, classAction, path); err != nil {
		return nil, err
	}
	warnUnknownKeys(value, knownActionKeys, path)

	attrsNode, _ := value.MapGet("attributes")
	attrs, err := attributesFromNode(attrsNode, path+".attributes")
	if err != nil {
		return nil, err
	}
	return &Action{Attributes: attrs}, nil
}

var knownEnvironmentKeys = map[string]bool{"attributes": true}

func environmentFromNode(value hessian.Node, path string) (*Environment, error) {
	if value.IsNull() {
		return nil, nil
	}
	if err := checkClassName(value, classEnvironment, path); err != nil {
		return nil, err
	}
	warnUnknownKeys(value, knownEnvironmentKeys, path)

	attrsNode, _ := value.MapGet("attributes")
	attrs, err := attributesFromNode(attrsNode, path+".attributes")
	if err != nil {
		return nil, err
	}
	return &Environment{Attributes: attrs}, nil
}

var knownRequestKeys = map[string]bool{"subjects": true, "resources": true, "action": true, "environment": true}

func requestFromNode(value hessian.Node, path string) (*Request, error) {
	if value.IsNull() {
		return nil, nil
	}
	if err := checkClassName(value, classRequest, path); err != nil {
		return nil, err
	}
	warnUnknownKeys(value, knownRequestKeys, path)

	subjectsNode, _ := value.MapGet("subjects")
	var subjects []Subject
	if !subjectsNode.IsNull() {
		if subjectsNode.Kind != hessian.KindList {
			return nil, shapeMismatch(path+".subjects", fmt.Sprintf("expected a List, got %s", subjectsNode.Kind))
		}
		subjects = make([]Subject, len(subjectsNode.Items))
		for i, item := range subjectsNode.Items {
			s, err := subjectFromNode(item, fmt.Sprintf("%s.subjects[%d]", path, i))
			if err != nil {
				return nil, err
			}
			subjects[i] = s
		}
	}

	resourcesNode, _ := value.MapGet("resources")
	var resources []Resource
	if !resourcesNode.IsNull() {
		if resourcesNode.Kind != hessian.KindList {
			return nil, shapeMismatch(path+".resources", fmt.Sprintf("expected a List, got %s", resourcesNode.Kind))
		}
		resources = make([]Resource, len(resourcesNode.Items))
		for i, item := range resourcesNode.Items {
			r, err := resourceFromNode(item, fmt.Sprintf("%s.resources[%d]", path, i))
			if err != nil {
				return nil, err
			}
			resources[i] = r
		}
	}

	actionNodeVal, _ := value.MapGet("action")
	action, err := actionFromNode(actionNodeVal, path+".action")
	if err != nil {
		return nil, err
	}

	envNodeVal, _ := value.MapGet("environment")
	environment, err := environmentFromNode(envNodeVal, path+".environment")
	if err != nil {
		return nil, err
	}

	return &Request{Subjects: subjects, Resources: resources, Action: action, Environment: environment}, nil
}

func decisionFromInt32(v int32) Decision {
	switch v {
	case 0:
		return Deny
	case 1:
		return Permit
	case 2:
		return Indeterminate
	case 3:
		return NotApplicable
	default:
		// Unknown decision codes degrade to Indeterminate rather than
		// failing the decode outright.
		return Indeterminate
	}
}

func fulfillOnFromInt32(v int32, path string) (FulfillOn, error) {
	switch v {
	case 0:
		return FulfillOnDeny, nil
	case 1:
		return FulfillOnPermit, nil
	default:
		return 0, enumOutOfRange(path, fmt.Sprintf("fulfillOn value %d is not 0 (Deny) or 1 (Permit)", v))
	}
}

var knownStatusCodeKeys = map[string]bool{"code": true, "subcode": true}

func statusCodeFromNode(value hessian.Node, path string, depth int) (*StatusCode, error) {
	if value.IsNull() {
		return nil, nil
	}
	if depth >= maxStatusCodeDepth {
		return nil, depthExceeded(path, "status code subcode chain nests too deep")
	}
	if err := checkClassName(value, classStatusCode, path); err != nil {
		return nil, err
	}
	warnUnknownKeys(value, knownStatusCodeKeys, path)

	code, err := getRequiredString(value, "code", path)
	if err != nil {
		return nil, err
	}

	var subcode *StatusCode
	subcodeNode, hasSubcode := value.MapGet("subcode")
	if hasSubcode {
		subcode, err = statusCodeFromNode(subcodeNode, path+".subcode", depth+1)
		if err != nil {
			return nil, err
		}
	}

	return &StatusCode{Code: code, Subcode: subcode}, nil
}

var knownStatusKeys = map[string]bool{"message": true, "code": true}

func statusFromNode(value hessian.Node, path string) (*Status, error) {
	if value.IsNull() {
		return nil, nil
	}
	if err := checkClassName(value, classStatus, path); err != nil {
		return nil, err
	}
	warnUnknownKeys(value, knownStatusKeys, path)

	message, err := getRequiredString(value, "message", path)
	if err != nil {
		return nil, err
	}
	codeNode, _ := value.MapGet("code")
	code, err := statusCodeFromNode(codeNode, path+".code", 0)
	if err != nil {
		return nil, err
	}
	return &Status{Message: message, Code: code}, nil
}

var knownAttributeAssignmentKeys = map[string]bool{"id": true, "values": true}

func attributeAssignmentFromNode(node hessian.Node, path string) (AttributeAssignment, error) {
	if err := checkClassName(node, classAttributeAssignment, path); err != nil {
		return AttributeAssignment{}, err
	}
	warnUnknownKeys(node, knownAttributeAssignmentKeys, path)

	id, err := getRequiredString(node, "id", path)
	if err != nil {
		return AttributeAssignment{}, err
	}
	values, err := getStringList(node, "values", path+".values")
	if err != nil {
		return AttributeAssignment{}, err
	}
	return AttributeAssignment{ID: id, Values: values}, nil
}

func attributeAssignmentsFromNode(value hessian.Node, path string) ([]AttributeAssignment, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind != hessian.KindList {
		return nil, shapeMismatch(path, fmt.Sprintf("expected a List, got %s", value.Kind))
	}
	out := make([]AttributeAssignment, len(value.Items))
	for i, item := range value.Items {
		a, err := attributeAssignmentFromNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

var knownObligationKeys = map[string]bool{"id": true, "fulfillOn": true, "assignments": true}

func obligationFromNode(node hessian.Node, path string) (Obligation, error) {
	if err := checkClassName(node, classObligation, path); err != nil {
		return Obligation{}, err
	}
	warnUnknownKeys(node, knownObligationKeys, path)

	id, err := getRequiredString(node, "id", path)
	if err != nil {
		return Obligation{}, err
	}

	fulfillOn := FulfillOnDeny
	fulfillOnNode, ok := node.MapGet("fulfillOn")
	if ok && !fulfillOnNode.IsNull() {
		if fulfillOnNode.Kind != hessian.KindInt32 {
			return Obligation{}, shapeMismatch(path+".fulfillOn", fmt.Sprintf("expected an Int32, got %s", fulfillOnNode.Kind))
		}
		fulfillOn, err = fulfillOnFromInt32(fulfillOnNode.Int32Value, path+".fulfillOn")
		if err != nil {
			return Obligation{}, err
		}
	}

	assignmentsNode, _ := node.MapGet("assignments")
	assignments, err := attributeAssignmentsFromNode(assignmentsNode, path+".assignments")
	if err != nil {
		return Obligation{}, err
	}

	return Obligation{ID: id, FulfillOn: fulfillOn, Assignments: assignments}, nil
}

func obligationsFromNode(value hessian.Node, path string) ([]Obligation, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind != hessian.KindList {
		return nil, shapeMismatch(path, fmt.Sprintf("expected a List, got %s", value.Kind))
	}
	out := make([]Obligation, len(value.Items))
	for i, item := range value.Items {
		o, err := obligationFromNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = o
	}
	return out, nil
}

var knownResultKeys = map[string]bool{"decision": true, "resourceId": true, "status": true, "obligations": true}

func resultFromNode(node hessian.Node, path string) (Result, error) {
	if err := checkClassName(node, classResult, path); err != nil {
		return Result{}, err
	}
	warnUnknownKeys(node, knownResultKeys, path)

	decisionNode, ok := node.MapGet("decision")
	if !ok || decisionNode.IsNull() {
		return Result{}, missingRequired(path+".decision", "required field is absent or Null")
	}
	if decisionNode.Kind != hessian.KindInt32 {
		return Result{}, shapeMismatch(path+".decision", fmt.Sprintf("expected an Int32, got %s", decisionNode.Kind))
	}
	decision := decisionFromInt32(decisionNode.Int32Value)

	resourceID, err := getOptionalString(node, "resourceId")
	if err != nil {
		return Result{}, err
	}

	statusNode, _ := node.MapGet("status")
	status, err := statusFromNode(statusNode, path+".status")
	if err != nil {
		return Result{}, err
	}

	obligationsNode, _ := node.MapGet("obligations")
	obligations, err := obligationsFromNode(obligationsNode, path+".obligations")
	if err != nil {
		return Result{}, err
	}

	return Result{Decision: decision, ResourceID: resourceID, Status: status, Obligations: obligations}, nil
}

func resultsFromNode(value hessian.Node, path string) ([]Result, error) {
	if value.IsNull() {
		return nil, nil
	}
	if value.Kind != hessian.KindList {
		return nil, shapeMismatch(path, fmt.Sprintf("expected a List, got %s", value.Kind))
	}
	out := make([]Result, len(value.Items))
	for i, item := range value.Items {
		r, err := resultFromNode(item, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

var knownResponseKeys = map[string]bool{"request": true, "results": true}

func responseFromNode(node hessian.Node, path string) (*Response, error) {
	if err := checkClassName(node, classResponse, path); err != nil {
		return nil, err
	}
	warnUnknownKeys(node, knownResponseKeys, path)

	requestNodeVal, _ := node.MapGet("request")
	req, err := requestFromNode(requestNodeVal, path+".request")
	if err != nil {
		return nil, err
	}

	resultsNode, _ := node.MapGet("results")
	results, err := resultsFromNode(resultsNode, path+".results")
	if err != nil {
		return nil, err
	}

	return &Response{Request: req, Results: results}, nil
}
