package projectdump

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
)

// Kind is the type attribute of an output element.
type Kind string

const (
	// KindSubdivision groups other elements (one per library, one per group)
	KindSubdivision Kind = "subdivision"

	// KindDataType is an enumerated data type with its equivalence classes
	KindDataType Kind = "datatype"

	// KindInteraction is a keyword with its parameters
	KindInteraction Kind = "interaction"

	// KindCondition is part of the format but never produced here
	KindCondition Kind = "condition"
)

// uidHashLength is the number of digest hex characters kept in an external id.
// 40 bits: collisions are possible and accepted, external ids are advisory.
const uidHashLength = 10

// Abbreviation returns the short kind code used inside external ids.
func (k Kind) Abbreviation() string {
	switch k {
	case KindSubdivision:
		return "SD"
	case KindDataType:
		return "DT"
	case KindInteraction:
		return "IA"
	case KindCondition:
		return "CD"
	}
	return strings.ToUpper(string(k))
}

// ExternalID derives the stable uid of an element from its kind, name,
// owning library and repository. It does not depend on key allocation, so the
// same element gets the same uid in every run.
//
// Format: {repository}-{abbrev}-{first 10 hex of sha1("{library}.{normalized name}")}
func ExternalID(kind Kind, name, library, repository string) string {
	sum := sha1.Sum([]byte(library + "." + normalizeName(name)))
	digest := hex.EncodeToString(sum[:])
	return fmt.Sprintf("%s-%s-%s", repository, kind.Abbreviation(), digest[:uidHashLength])
}

// normalizeName makes "My Keyword", "my_keyword" and "MyKeyword" equal.
func normalizeName(name string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "").Replace(name))
}
