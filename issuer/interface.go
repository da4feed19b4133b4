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

//go:generate mockgen -source=interface.go -destination=mock.go -package=issuer

import (
	"context"
	"time"

	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/go-did/vc"
)

// OpenIDIssuer drives OpenID4VCI credential issuance flows for one or more issuers:
// offer creation, offer retrieval, the token-endpoint state bridge, and credential requests.
type OpenIDIssuer interface {
	// CreateOffer builds a credential offer for the given configuration IDs, persists a new
	// issuance session and returns it together with the openid-credential-offer:// deep link.
	CreateOffer(ctx context.Context, issuerID string, offeredCredentials []string, preAuthCfg PreAuthorizedCodeConfig,
		metadata map[string]interface{}, version openid4vci.SpecVersion) (*IssuanceSession, string, error)
	// GetOfferPayload returns the offer payload behind a credential offer URI,
	// in the draft shape the offer was created under.
	GetOfferPayload(ctx context.Context, issuerID string, offerURI string) (*openid4vci.CredentialOffer, error)
	// RegisterAccessToken is called by the token endpoint after it validated the pre-authorized
	// code grant. It mints the c_nonce for the session and returns it with its expiry.
	RegisterAccessToken(ctx context.Context, issuerID string, preAuthorizedCode string) (string, time.Time, error)
	// HandleCredentialRequest resolves the session for the request, validates it, matches the
	// requested credential against the offer, and routes signing to the configured signers.
	HandleCredentialRequest(ctx context.Context, issuerID string, request openid4vci.CredentialRequest) (*openid4vci.CredentialResponse, error)
	// RotateAccessTokenKey records a new access token signing key fingerprint for the issuer.
	// Tokens signed with the previous key remain valid until they expire.
	RotateAccessTokenKey(ctx context.Context, issuerID string, fingerprint string) error
}

// DIDResolver resolves DID documents. Resolution is performed when extracting
// the holder binding and when verifying proof JWT signatures.
type DIDResolver interface {
	Resolve(ctx context.Context, id did.DID) (*did.Document, error)
}

// SignOptions is what the host's CredentialRequestMapper returns: the payload and key
// reference for one credential, tagged by output format through its concrete type
// (JWTVCSignOptions, LDPVCSignOptions, SDJWTVCSignOptions or MSOMDocSignOptions).
type SignOptions interface {
	// ConfigurationID returns the credential configuration this credential is issued under.
	ConfigurationID() string
	// Format returns the output format family of the options.
	Format() openid4vci.CredentialFormat
}

// JWTVCSignOptions requests signing of a W3C credential as a JWT.
type JWTVCSignOptions struct {
	CredentialConfigurationID string
	// Credential is the unsigned credential payload.
	Credential vc.VerifiableCredential
	// VerificationMethod is the DID URL of the issuer key to sign with.
	VerificationMethod string
}

func (o JWTVCSignOptions) ConfigurationID() string { return o.CredentialConfigurationID }
func (o JWTVCSignOptions) Format() openid4vci.CredentialFormat {
	return openid4vci.VerifiableCredentialJWTFormat
}

// LDPVCSignOptions requests signing of a W3C credential with a Data Integrity proof.
type LDPVCSignOptions struct {
	CredentialConfigurationID string
	Credential                vc.VerifiableCredential
	VerificationMethod        string
	// ProofType overrides the proof type; when empty it is derived from the signing key type.
	ProofType string
}

func (o LDPVCSignOptions) ConfigurationID() string { return o.CredentialConfigurationID }
func (o LDPVCSignOptions) Format() openid4vci.CredentialFormat {
	return openid4vci.VerifiableCredentialJSONLDFormat
}

// SDJWTVCSignOptions requests signing of an SD-JWT credential.
type SDJWTVCSignOptions struct {
	CredentialConfigurationID string
	// Payload holds the claims, including the vct claim.
	Payload map[string]interface{}
	// DisclosureFrame lists the claim names to make selectively disclosable.
	DisclosureFrame    []string
	VerificationMethod string
}

func (o SDJWTVCSignOptions) ConfigurationID() string { return o.CredentialConfigurationID }
func (o SDJWTVCSignOptions) Format() openid4vci.CredentialFormat {
	return openid4vci.SDJWTVCFormat
}

// Vct returns the vct claim of the payload.
func (o SDJWTVCSignOptions) Vct() string {
	vct, _ := o.Payload["vct"].(string)
	return vct
}

// MSOMDocSignOptions requests signing of an ISO mdoc.
type MSOMDocSignOptions struct {
	CredentialConfigurationID string
	DocType                   string
	// Namespaces holds the data elements per namespace.
	Namespaces         map[string]map[string]interface{}
	VerificationMethod string
	ValidFrom          time.Time
	ValidUntil         time.Time
}

func (o MSOMDocSignOptions) ConfigurationID() string { return o.CredentialConfigurationID }
func (o MSOMDocSignOptions) Format() openid4vci.CredentialFormat {
	return openid4vci.MSOMDocFormat
}

// CredentialRequestMapperInput is everything the host needs to map an accepted
// credential request onto signing options.
type CredentialRequestMapperInput struct {
	Session       IssuanceSession
	HolderBinding HolderBinding
	// CredentialOffer is the stored offer payload, in the session's draft shape.
	CredentialOffer   openid4vci.CredentialOffer
	CredentialRequest openid4vci.CredentialRequest
	// CredentialConfigurationsSupported holds the matched configurations in draft 13 shape.
	CredentialConfigurationsSupported map[string]openid4vci.CredentialConfiguration
	// CredentialsSupported holds the matched configurations in draft 11 shape
	// when the session was created under draft 11, nil otherwise.
	CredentialsSupported []openid4vci.CredentialConfiguration
	// CredentialConfigurationIDs lists the matched configuration IDs in offer order.
	CredentialConfigurationIDs []string
}

// CredentialRequestMapper is supplied by the host. Given an accepted credential request
// and the matched configurations, it decides the credential payload and signing key.
type CredentialRequestMapper interface {
	Map(ctx context.Context, input CredentialRequestMapperInput) (SignOptions, error)
}

// CredentialRequestMapperFunc adapts a function to the CredentialRequestMapper interface.
type CredentialRequestMapperFunc func(ctx context.Context, input CredentialRequestMapperInput) (SignOptions, error)

func (f CredentialRequestMapperFunc) Map(ctx context.Context, input CredentialRequestMapperInput) (SignOptions, error) {
	return f(ctx, input)
}

// SignedCredential is the envelope returned by the format signers.
type SignedCredential struct {
	Format openid4vci.CredentialFormat
	// Credential holds the signed credential; compact JWS for jwt_vc_json, a JSON-LD document
	// for ldp_vc, SD-JWT combined format for vc+sd-jwt, raw CBOR bytes for mso_mdoc.
	Credential interface{}
	// AcceptanceToken and TransactionID signal deferred issuance by the signer, which is rejected.
	AcceptanceToken string
	TransactionID   string
}

// W3CCredentialService signs W3C credentials. The caller selects the signature
// algorithm (JWT) or proof type (Data Integrity) before invoking it.
type W3CCredentialService interface {
	SignJWTCredential(ctx context.Context, credential vc.VerifiableCredential, alg jwa.SignatureAlgorithm, verificationMethod string) (*SignedCredential, error)
	SignLDCredential(ctx context.Context, credential vc.VerifiableCredential, proofType string, verificationMethod string) (*SignedCredential, error)
}

// SDJWTVCService signs SD-JWT credentials with holder binding.
type SDJWTVCService interface {
	SignSDJWTCredential(ctx context.Context, options SDJWTVCSignOptions, holder HolderBinding) (*SignedCredential, error)
}

// MDocService signs ISO mdocs with holder (device) binding. The credential in the
// returned envelope is the CBOR-encoded issuer-signed document.
type MDocService interface {
	SignMDocCredential(ctx context.Context, options MSOMDocSignOptions, holder HolderBinding) (*SignedCredential, error)
}
