// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

// Package pep maps XACML-shaped authorization requests and responses
// to and from the Hessian wire objects a glite-authz PEP daemon
// speaks. It sits directly on top of package hessian: MarshalRequest
// builds a [hessian.Node] tree from a [Request] and serializes it;
// UnmarshalResponse deserializes bytes into a [hessian.Node] tree and
// walks it into a [Response].
//
// Every wire Map this package reads or writes carries the `t` class
// name org.glite.authz.pep.model.* the PEP daemon expects; see
// classnames.go. Unmarshal tolerates and logs unknown map keys rather
// than failing, and rejects a class name mismatch on a typed slot.
// Decode and encode failures are returned as [UnmarshalError] and
// [MarshalError], which wrap a [hessian.DecodeError] or
// [hessian.EncodeError] carrying a field path such as
// "Request.subjects[2].attributes[0].id". A caller can errors.As
// against either the pep-level type or the wrapped hessian type;
// Unwrap makes both work the same way regardless of which layer
// actually raised the error.
package pep
