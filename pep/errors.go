// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

import "github.com/glite-authz/pep-client/hessian"

// maxStatusCodeDepth bounds StatusCode.Subcode chain depth during
// decode. XACML status codes nest at most two or three deep in
// practice; this cap exists purely against a pathological or
// malicious stream.
const maxStatusCodeDepth = 32

// MarshalError is returned by MarshalRequest. It wraps the underlying
// [hessian.EncodeError]; callers wanting the structured Kind/Path use
// errors.As with a *hessian.EncodeError target, which unwraps through
// this type transparently.
type MarshalError struct {
	Err *hessian.EncodeError
}

func (e *MarshalError) Error() string { return e.Err.Error() }
func (e *MarshalError) Unwrap() error { return e.Err }

// UnmarshalError is returned by UnmarshalResponse. It wraps the
// underlying [hessian.DecodeError]; callers wanting the structured
// Kind/Path/Offset use errors.As with a *hessian.DecodeError target,
// which unwraps through this type transparently.
type UnmarshalError struct {
	Err *hessian.DecodeError
}

func (e *UnmarshalError) Error() string { return e.Err.Error() }
func (e *UnmarshalError) Unwrap() error { return e.Err }

func missingRequired(path, detail string) *UnmarshalError {
	return &UnmarshalError{Err: &hessian.DecodeError{Offset: -1, Kind: hessian.MissingRequired, Path: path, Detail: detail}}
}

func shapeMismatch(path, detail string) *UnmarshalError {
	return &UnmarshalError{Err: &hessian.DecodeError{Offset: -1, Kind: hessian.ShapeMismatch, Path: path, Detail: detail}}
}

func enumOutOfRange(path, detail string) *UnmarshalError {
	return &UnmarshalError{Err: &hessian.DecodeError{Offset: -1, Kind: hessian.EnumOutOfRange, Path: path, Detail: detail}}
}

func depthExceeded(path, detail string) *UnmarshalError {
	return &UnmarshalError{Err: &hessian.DecodeError{Offset: -1, Kind: hessian.DepthExceeded, Path: path, Detail: detail}}
}

func oversizeEncode(path, detail string) *MarshalError {
	return &MarshalError{Err: &hessian.EncodeError{Kind: hessian.EncodeOversize, Path: path, Detail: detail}}
}
