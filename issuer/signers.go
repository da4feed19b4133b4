/*
 * Copyright (C) 2024 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package issuer

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/go-did/vc"
)

// sign routes the signing options to the signer for their format and wraps the
// result in the response envelope. The switch is exhaustive over the SignOptions variants.
func (i *openidIssuer) sign(ctx context.Context, signOptions SignOptions, binding HolderBinding) (*SignedCredential, error) {
	switch options := signOptions.(type) {
	case JWTVCSignOptions:
		return i.signJWTVC(ctx, options, binding)
	case LDPVCSignOptions:
		return i.signLDPVC(ctx, options, binding)
	case SDJWTVCSignOptions:
		if i.sdjwtService == nil {
			return nil, serverError(noSignerConfigured(openid4vci.SDJWTVCFormat))
		}
		signed, err := i.sdjwtService.SignSDJWTCredential(ctx, options, binding)
		if err != nil {
			return nil, serverError(fmt.Errorf("sd-jwt signer failed: %w", err))
		}
		return signed, nil
	case MSOMDocSignOptions:
		return i.signMSOMDoc(ctx, options, binding)
	}
	return nil, serverError(fmt.Errorf("unknown signing options type: %T", signOptions))
}

func (i *openidIssuer) signJWTVC(ctx context.Context, options JWTVCSignOptions, binding HolderBinding) (*SignedCredential, error) {
	if i.w3cService == nil {
		return nil, serverError(noSignerConfigured(openid4vci.VerifiableCredentialJWTFormat))
	}
	key, err := i.resolveSigningKey(ctx, options.VerificationMethod)
	if err != nil {
		return nil, serverError(err)
	}
	algorithms := supportedSignatureAlgorithms(key)
	if len(algorithms) == 0 {
		return nil, serverError(fmt.Errorf("%w (verificationMethod=%s)", openid4vci.ErrNoSupportedAlgorithm, options.VerificationMethod))
	}
	credential := options.Credential
	imprintSubjectID(&credential, binding)
	signed, err := i.w3cService.SignJWTCredential(ctx, credential, algorithms[0], options.VerificationMethod)
	if err != nil {
		return nil, serverError(fmt.Errorf("jwt credential signer failed: %w", err))
	}
	return signed, nil
}

func (i *openidIssuer) signLDPVC(ctx context.Context, options LDPVCSignOptions, binding HolderBinding) (*SignedCredential, error) {
	if i.w3cService == nil {
		return nil, serverError(noSignerConfigured(openid4vci.VerifiableCredentialJSONLDFormat))
	}
	proofType := options.ProofType
	if proofType == "" {
		key, err := i.resolveSigningKey(ctx, options.VerificationMethod)
		if err != nil {
			return nil, serverError(err)
		}
		proofType = proofTypeForKey(key)
	}
	credential := options.Credential
	imprintSubjectID(&credential, binding)
	signed, err := i.w3cService.SignLDCredential(ctx, credential, proofType, options.VerificationMethod)
	if err != nil {
		return nil, serverError(fmt.Errorf("json-ld credential signer failed: %w", err))
	}
	return signed, nil
}

func (i *openidIssuer) signMSOMDoc(ctx context.Context, options MSOMDocSignOptions, binding HolderBinding) (*SignedCredential, error) {
	if i.mdocService == nil {
		return nil, serverError(noSignerConfigured(openid4vci.MSOMDocFormat))
	}
	signed, err := i.mdocService.SignMDocCredential(ctx, options, binding)
	if err != nil {
		return nil, serverError(fmt.Errorf("mdoc signer failed: %w", err))
	}
	raw, ok := signed.Credential.([]byte)
	if !ok {
		return signed, nil
	}
	// The issued document is opaque CBOR, but the docType must be the one that was requested.
	var document struct {
		DocType string `cbor:"docType"`
	}
	if err := cbor.Unmarshal(raw, &document); err != nil {
		return nil, serverError(fmt.Errorf("mdoc signer returned invalid CBOR: %w", err))
	}
	if document.DocType != "" && document.DocType != options.DocType {
		return nil, serverError(fmt.Errorf("mdoc signer returned unexpected docType: %s", document.DocType))
	}
	result := *signed
	result.Credential = base64.RawURLEncoding.EncodeToString(raw)
	return &result, nil
}

// resolveSigningKey dereferences the issuer's signing verification method under assertionMethod.
func (i *openidIssuer) resolveSigningKey(ctx context.Context, verificationMethod string) (crypto.PublicKey, error) {
	keyID, err := did.ParseDIDURL(verificationMethod)
	if err != nil {
		return nil, fmt.Errorf("invalid verification method (id=%s): %w", verificationMethod, err)
	}
	if keyID.Fragment == "" {
		return nil, fmt.Errorf("verification method does not reference a key (id=%s)", verificationMethod)
	}
	document, err := i.didResolver.Resolve(ctx, keyID.DID)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve signing DID document (did=%s): %w", keyID.DID, err)
	}
	for _, method := range document.AssertionMethod {
		if method.ID.String() == verificationMethod {
			return method.PublicKey()
		}
	}
	return nil, fmt.Errorf("signing key not found in DID document (id=%s)", verificationMethod)
}

// supportedSignatureAlgorithms returns the JWA signature algorithms usable with the key,
// preferred algorithm first.
func supportedSignatureAlgorithms(key crypto.PublicKey) []jwa.SignatureAlgorithm {
	switch typed := key.(type) {
	case *ecdsa.PublicKey:
		switch typed.Curve {
		case elliptic.P256():
			return []jwa.SignatureAlgorithm{jwa.ES256}
		case elliptic.P384():
			return []jwa.SignatureAlgorithm{jwa.ES384}
		case elliptic.P521():
			return []jwa.SignatureAlgorithm{jwa.ES512}
		}
		return nil
	case ed25519.PublicKey:
		return []jwa.SignatureAlgorithm{jwa.EdDSA}
	case *rsa.PublicKey:
		return []jwa.SignatureAlgorithm{jwa.PS256, jwa.RS256}
	}
	return nil
}

// proofTypeForKey derives the Data Integrity proof type from the signing key type.
func proofTypeForKey(key crypto.PublicKey) string {
	switch key.(type) {
	case ed25519.PublicKey:
		return "Ed25519Signature2018"
	default:
		return "JsonWebSignature2020"
	}
}

// imprintSubjectID sets the credential subject ID to the holder's DID when it is not set.
// An existing subject ID is never overwritten, and raw JWK bindings carry no DID to imprint.
func imprintSubjectID(credential *vc.VerifiableCredential, binding HolderBinding) {
	if binding.Method != HolderBindingMethodDID {
		return
	}
	keyID, err := did.ParseDIDURL(binding.DIDUrl)
	if err != nil {
		return
	}
	holder := keyID.DID.String()
	if len(credential.CredentialSubject) == 0 {
		credential.CredentialSubject = []map[string]interface{}{{"id": holder}}
		return
	}
	subject := credential.CredentialSubject[0]
	if id, _ := subject["id"].(string); id != "" {
		return
	}
	// Copy before mutating: subjects are shared with the mapper's credential.
	copied := make(map[string]interface{}, len(subject)+1)
	for k, v := range subject {
		copied[k] = v
	}
	copied["id"] = holder
	subjects := make([]map[string]interface{}, len(credential.CredentialSubject))
	copy(subjects, credential.CredentialSubject)
	subjects[0] = copied
	credential.CredentialSubject = subjects
}

func noSignerConfigured(format openid4vci.CredentialFormat) error {
	return fmt.Errorf("no signer configured for format %s", format)
}
