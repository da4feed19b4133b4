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

package openid4vci

import (
	"net/url"
)

// PreAuthorizedCodeGrantType holds the grant type identifier of the pre-authorized code grant.
const PreAuthorizedCodeGrantType = "urn:ietf:params:oauth:grant-type:pre-authorized_code"

// ProofTypeJWT is the proof type of a JWT proof of possession.
const ProofTypeJWT = "jwt"

// JWTTypeProof defines the JWT subtype (typ header) of an OpenID4VCI proof JWT.
const JWTTypeProof = "openid4vci-proof+jwt"

// CredentialOfferScheme is the URI scheme wallets register for credential offer deep links.
const CredentialOfferScheme = "openid-credential-offer://"

// CredentialOfferURIParam is the query parameter carrying the offer URI in a deep link.
const CredentialOfferURIParam = "credential_offer_uri"

// CredentialOffer is a credential offer as sent by the issuer to the wallet.
// Draft 13 offers carry CredentialConfigurationIDs, draft 11 offers carry Credentials.
type CredentialOffer struct {
	// CredentialIssuer is the URL identifying the Credential Issuer the offer originates from.
	CredentialIssuer string `json:"credential_issuer"`
	// CredentialConfigurationIDs references entries in the issuer's credential_configurations_supported (draft 13).
	CredentialConfigurationIDs []string `json:"credential_configuration_ids,omitempty"`
	// Credentials references entries in the issuer's credentials_supported (draft 11).
	Credentials []string `json:"credentials,omitempty"`
	// Grants holds the grants the wallet can use to obtain an access token for this offer.
	Grants Grants `json:"grants"`
}

// Grants holds the grant objects of a credential offer, keyed by grant type.
type Grants struct {
	PreAuthorizedCode *PreAuthorizedCodeGrant `json:"urn:ietf:params:oauth:grant-type:pre-authorized_code,omitempty"`
}

// PreAuthorizedCodeGrant is the pre-authorized code grant object of a credential offer.
type PreAuthorizedCodeGrant struct {
	// PreAuthorizedCode is exchanged at the token endpoint for an access token.
	PreAuthorizedCode string `json:"pre-authorized_code"`
	// TxCode describes the out-of-band transaction code the wallet must collect from the user (draft 13).
	TxCode *TxCode `json:"tx_code,omitempty"`
	// UserPinRequired signals that a user PIN must accompany the token request (draft 11).
	UserPinRequired *bool `json:"user_pin_required,omitempty"`
}

// TxCode describes the transaction code expected alongside the pre-authorized code.
// All fields are optional; an empty descriptor just signals that a code is required.
type TxCode struct {
	Length      int    `json:"length,omitempty"`
	InputMode   string `json:"input_mode,omitempty"`
	Description string `json:"description,omitempty"`
}

// CredentialDefinition describes the type constraints of a W3C credential, in offers, requests and issuer metadata.
type CredentialDefinition struct {
	Context []string `json:"@context,omitempty"`
	Type    []string `json:"type,omitempty"`
	// Types is the draft 11 spelling of Type, sent by some wallets.
	Types []string `json:"types,omitempty"`
}

// TypeList returns the credential types regardless of which spelling the sender used.
func (d *CredentialDefinition) TypeList() []string {
	if d == nil {
		return nil
	}
	if len(d.Type) > 0 {
		return d.Type
	}
	return d.Types
}

// CredentialRequest is a request for a credential, posted by the wallet to the credential endpoint.
type CredentialRequest struct {
	// Format identifies the requested credential format. Either Format or CredentialIdentifier is required.
	Format CredentialFormat `json:"format,omitempty"`
	// CredentialIdentifier directly references an offered credential configuration.
	CredentialIdentifier string `json:"credential_identifier,omitempty"`
	// CredentialDefinition constrains the requested W3C credential types.
	CredentialDefinition *CredentialDefinition `json:"credential_definition,omitempty"`
	// Types is the draft 11 top-level spelling of the requested types for jwt_vc_json.
	Types []string `json:"types,omitempty"`
	// Vct is the requested SD-JWT Verifiable Credential Type.
	Vct string `json:"vct,omitempty"`
	// DocType is the requested mdoc document type.
	DocType string `json:"doctype,omitempty"`
	// Proof is the proof of possession of the key the credential shall be bound to.
	Proof *CredentialRequestProof `json:"proof,omitempty"`
	// CNonce is a nonce echoed at the top level by some wallets.
	CNonce string `json:"c_nonce,omitempty"`
}

// CredentialRequestProof is the proof of possession inside a credential request.
type CredentialRequestProof struct {
	ProofType string `json:"proof_type"`
	Jwt       string `json:"jwt"`
	// CNonce is a nonce echoed inside the proof object by some wallets.
	CNonce string `json:"c_nonce,omitempty"`
}

// CredentialResponse is the response of the credential endpoint.
type CredentialResponse struct {
	// Format is the format of the issued credential. Draft 13 omits it, but it is kept
	// for wallets that still expect draft 11 shaped responses.
	Format CredentialFormat `json:"format,omitempty"`
	// Credential holds the issued credential; its type depends on the format
	// (compact JWS string, JSON-LD document, SD-JWT combined format, base64url mdoc).
	Credential interface{} `json:"credential,omitempty"`
	// CNonce is a fresh nonce for the next proof of possession.
	CNonce string `json:"c_nonce,omitempty"`
	// CNonceExpiresIn is the lifetime of CNonce in seconds.
	CNonceExpiresIn int `json:"c_nonce_expires_in,omitempty"`
	// AcceptanceToken and TransactionID signal deferred issuance by the inner signer. Not supported.
	AcceptanceToken string `json:"acceptance_token,omitempty"`
	TransactionID   string `json:"transaction_id,omitempty"`
}

// CredentialConfiguration is a credential the issuer can issue, as published in the issuer metadata.
// A configuration is identified by its key in credential_configurations_supported (draft 13)
// or by its ID field within credentials_supported (draft 11).
type CredentialConfiguration struct {
	// ID identifies the configuration in draft 11 credentials_supported lists.
	ID string `json:"id,omitempty"`
	// Format is the format this configuration will be issued in.
	Format CredentialFormat `json:"format"`
	// CredentialDefinition constrains W3C credential types (jwt_vc_json, jwt_vc_json-ld, ldp_vc).
	CredentialDefinition *CredentialDefinition `json:"credential_definition,omitempty"`
	// Types is the draft 11 top-level spelling of the W3C credential types.
	Types []string `json:"types,omitempty"`
	// Vct is the SD-JWT Verifiable Credential Type (vc+sd-jwt).
	Vct string `json:"vct,omitempty"`
	// DocType is the mdoc document type (mso_mdoc).
	DocType string `json:"doctype,omitempty"`
	// CryptographicBindingMethodsSupported lists supported holder binding methods, e.g. "did:key", "jwk".
	CryptographicBindingMethodsSupported []string `json:"cryptographic_binding_methods_supported,omitempty"`
	// CredentialSigningAlgValuesSupported lists the signature algorithms the issuer can sign with.
	CredentialSigningAlgValuesSupported []string `json:"credential_signing_alg_values_supported,omitempty"`
	// Display holds display properties for wallets.
	Display []map[string]interface{} `json:"display,omitempty"`
}

// TypeList returns the W3C credential types regardless of which draft's spelling is populated.
func (c CredentialConfiguration) TypeList() []string {
	if types := c.CredentialDefinition.TypeList(); len(types) > 0 {
		return types
	}
	return c.Types
}

// CredentialOfferDeepLink builds the deep link that opens the offer in a wallet.
// It only ever contains the offer URI as query parameter, never the inlined offer payload.
func CredentialOfferDeepLink(offerURI string) string {
	return CredentialOfferScheme + "?" + CredentialOfferURIParam + "=" + url.QueryEscape(offerURI)
}
