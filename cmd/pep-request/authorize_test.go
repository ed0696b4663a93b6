// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"testing"

	"github.com/glite-authz/pep-client/pep"
)

func TestBuildRequest_SubjectDN(t *testing.T) {
	flags := &authorizeFlags{
		subjectDN:  "/C=CH/O=CERN/CN=Alice",
		resourceID: "urn:example:res",
		actionID:   "read",
	}

	request, err := buildRequest(flags)
	if err != nil {
		t.Fatalf("buildRequest() error: %v", err)
	}

	if len(request.Subjects) != 1 {
		t.Fatalf("Subjects = %v, want 1 entry", request.Subjects)
	}
	attr, ok := request.Subjects[0].Attribute(pep.AttrSubjectID)
	if !ok || attr.FirstValue() != "/C=CH/O=CERN/CN=Alice" {
		t.Errorf("subject-id attribute = %+v, ok=%v", attr, ok)
	}

	resourceAttr, ok := request.Resources[0].Attribute(pep.AttrResourceID)
	if !ok || resourceAttr.FirstValue() != "urn:example:res" {
		t.Errorf("resource-id attribute = %+v, ok=%v", resourceAttr, ok)
	}

	if request.Action == nil {
		t.Fatal("Action = nil, want non-nil with --action-id set")
	}
	var actionAttr pep.Attribute
	var found bool
	for _, a := range request.Action.Attributes {
		if a.ID == pep.AttrActionID {
			actionAttr, found = a, true
		}
	}
	if !found || actionAttr.FirstValue() != "read" {
		t.Errorf("action-id attribute = %+v, found=%v", actionAttr, found)
	}
}

func TestBuildRequest_RequiresSubjectDNOrCert(t *testing.T) {
	flags := &authorizeFlags{resourceID: "urn:example:res"}
	if _, err := buildRequest(flags); err == nil {
		t.Fatal("buildRequest() with neither --subject-dn nor --cert, want error")
	}
}

func TestBuildRequest_WithFQANs(t *testing.T) {
	flags := &authorizeFlags{
		subjectDN:  "/C=CH/O=CERN/CN=Alice",
		resourceID: "urn:example:res",
		fqans:      []string{"/atlas/Role=production", "/atlas/Role=pilot"},
	}

	request, err := buildRequest(flags)
	if err != nil {
		t.Fatalf("buildRequest() error: %v", err)
	}

	primary, ok := request.Subjects[0].Attribute(pep.AttrVOMSPrimaryFQAN)
	if !ok || primary.FirstValue() != "/atlas/Role=production" {
		t.Errorf("primary FQAN = %+v, ok=%v", primary, ok)
	}
	additional, ok := request.Subjects[0].Attribute(pep.AttrVOMSFQAN)
	if !ok || additional.FirstValue() != "/atlas/Role=pilot" {
		t.Errorf("additional FQAN = %+v, ok=%v", additional, ok)
	}
}

func TestBuildRequest_AdditionalAttributes(t *testing.T) {
	flags := &authorizeFlags{
		subjectDN:  "/C=CH/O=CERN/CN=Alice",
		resourceID: "urn:example:res",
		attrs:      []string{"owner=alice", "group=atlas"},
	}

	request, err := buildRequest(flags)
	if err != nil {
		t.Fatalf("buildRequest() error: %v", err)
	}

	owner, ok := request.Resources[0].Attribute("owner")
	if !ok || owner.FirstValue() != "alice" {
		t.Errorf("owner attribute = %+v, ok=%v", owner, ok)
	}
}

func TestBuildRequest_MalformedAttribute(t *testing.T) {
	flags := &authorizeFlags{
		subjectDN:  "/C=CH/O=CERN/CN=Alice",
		resourceID: "urn:example:res",
		attrs:      []string{"no-equals-sign"},
	}

	if _, err := buildRequest(flags); err == nil {
		t.Fatal("buildRequest() with a malformed --attr, want error")
	}
}

func TestLoadCertificateChain_NoCertificates(t *testing.T) {
	path := t.TempDir() + "/empty.pem"
	if err := os.WriteFile(path, []byte("not a certificate\n"), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	if _, err := loadCertificateChain(path); err == nil {
		t.Fatal("loadCertificateChain() with no certificates, want error")
	}
}
