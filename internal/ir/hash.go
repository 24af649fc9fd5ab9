package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// DomainManifest separates manifest digests from any other SHA-256 use.
// The version suffix allows a future change of encoding.
const DomainManifest = "funcbind/manifest/v1"

// FunctionNamespace is the UUID namespace for function identifiers.
var FunctionNamespace = uuid.MustParse("7c0f6c2e-5f9b-4a8e-9d59-3c1f8a4b2e61")

// FunctionID returns the stable identifier of a function name.
// It is a UUIDv5, so regenerating a manifest never changes it.
func FunctionID(name string) string {
	return uuid.NewSHA1(FunctionNamespace, []byte(name)).String()
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestDigest returns the content digest of m's canonical JSON.
// Equal manifests always have equal digests.
func ManifestDigest(m *Manifest) (string, error) {
	canonical, err := MarshalCanonical(m)
	if err != nil {
		return "", fmt.Errorf("ManifestDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

// DomainRegistrations separates registration table digests from manifest digests.
const DomainRegistrations = "funcbind/registrations/v1"

// RegistrationDigest returns the digest of a registration table generated
// into pkg with the given bindings qualifier, from functions whose manifest
// digests are keyed by function name.
func RegistrationDigest(pkg, qualifier string, manifests map[string]string) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"package":   pkg,
		"qualifier": qualifier,
		"manifests": manifests,
	})
	if err != nil {
		return "", fmt.Errorf("RegistrationDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRegistrations, canonical), nil
}
