// Copyright 2026 The glite-authz PEP Client Authors
// SPDX-License-Identifier: Apache-2.0

package pep

import "crypto/x509"

// Well-known XACML and glite-authz attribute identifiers, for callers
// building a Request by hand rather than decoding one.
const (
	AttrSubjectID      = "urn:oasis:names:tc:xacml:1.0:subject:subject-id"
	AttrSubjectKeyInfo = "urn:oasis:names:tc:xacml:1.0:subject:key-info"
	// AttrVOMSPrimaryFQAN and AttrVOMSFQAN carry a VOMS FQAN such as
	// "/vo/experiment/Role=production"; the daemon distinguishes a
	// proxy's primary FQAN from any additional ones.
	AttrVOMSPrimaryFQAN = "voms-primary-fqan"
	AttrVOMSFQAN        = "voms-fqan"
	AttrResourceID      = "urn:oasis:names:tc:xacml:1.0:resource:resource-id"
	AttrActionID        = "urn:oasis:names:tc:xacml:1.0:action:action-id"

	// DataTypeX500Name is the XACML data type for an X.500 distinguished name.
	DataTypeX500Name = "urn:oasis:names:tc:xacml:1.0:data-type:x500Name"
	DataTypeString   = "http://www.w3.org/2001/XMLSchema#string"
)

// NewSubjectFromDN returns a Subject carrying a single X.509 subject
// DN attribute, the shape a gLite/EMI PEP expects for certificate-based
// identity.
func NewSubjectFromDN(dn string) Subject {
	return Subject{
		Attributes: []Attribute{
			{ID: AttrSubjectID, DataType: DataTypeX500Name, Values: []string{dn}},
		},
	}
}

// NewSubjectFromCertificateChain builds a Subject from an X.509
// certificate chain, the leaf certificate's subject DN supplying
// AttrSubjectID. chain[0] must be the end-entity certificate; any
// issuers after it are not otherwise inspected here (the daemon does
// its own chain validation).
func NewSubjectFromCertificateChain(chain []*x509.Certificate) Subject {
	if len(chain) == 0 {
		return Subject{}
	}
	return NewSubjectFromDN(chain[0].Subject.String())
}

// AddVOMSFQANs returns a copy of s with VOMS FQAN attributes appended:
// the first fqan as the primary, any remaining ones as additional
// FQANs. Calling it with no arguments returns s unchanged.
func AddVOMSFQANs(s Subject, fqans ...string) Subject {
	if len(fqans) == 0 {
		return s
	}
	s.Attributes = append(append([]Attribute{}, s.Attributes...),
		Attribute{ID: AttrVOMSPrimaryFQAN, DataType: DataTypeString, Values: []string{fqans[0]}},
	)
	if len(fqans) > 1 {
		s.Attributes = append(s.Attributes, Attribute{
			ID: AttrVOMSFQAN, DataType: DataTypeString, Values: fqans[1:],
		})
	}
	return s
}

// Attribute returns the first attribute on s with the given id and
// whether one was found.
func (s Subject) Attribute(id string) (Attribute, bool) {
	return findAttribute(s.Attributes, id)
}

// Attribute returns the first attribute on r with the given id and
// whether one was found.
func (r Resource) Attribute(id string) (Attribute, bool) {
	return findAttribute(r.Attributes, id)
}

func findAttribute(attrs []Attribute, id string) (Attribute, bool) {
	for _, a := range attrs {
		if a.ID == id {
			return a, true
		}
	}
	return Attribute{}, false
}

// FirstValue returns a's first value, or "" if it has none.
func (a Attribute) FirstValue() string {
	if len(a.Values) == 0 {
		return ""
	}
	return a.Values[0]
}
