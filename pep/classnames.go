// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

// Wire class names carried in the `t` block of every typed Map this
// package reads or writes, matching the Java model classes a
// glite-authz PEP daemon deserializes against.
const (
	classRequest             = "org.glite.authz.pep.model.Request"
	classSubject             = "org.glite.authz.pep.model.Subject"
	classResource            = "org.glite.authz.pep.model.Resource"
	classAction              = "org.glite.authz.pep.model.Action"
	classEnvironment         = "org.glite.authz.pep.model.Environment"
	classAttribute           = "org.glite.authz.pep.model.Attribute"
	classResponse            = "org.glite.authz.pep.model.Response"
	classResult              = "org.glite.authz.pep.model.Result"
	classStatus              = "org.glite.authz.pep.model.Status"
	classStatusCode          = "org.glite.authz.pep.model.StatusCode"
	classObligation          = "org.glite.authz.pep.model.Obligation"
	classAttributeAssignment = "org.glite.authz.pep.model.AttributeAssignment"
)
