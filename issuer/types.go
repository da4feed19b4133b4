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
	"crypto"
	"time"

	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// SessionState is the state of an issuance session. States advance monotonically;
// Error is terminal and only entered on server-side signing failures.
type SessionState string

const (
	// SessionStateOfferCreated means the offer exists but has not been retrieved by a wallet yet.
	SessionStateOfferCreated SessionState = "OfferCreated"
	// SessionStateOfferURIRetrieved means a wallet dereferenced the credential offer URI.
	SessionStateOfferURIRetrieved SessionState = "OfferUriRetrieved"
	// SessionStateAccessTokenRequested means the wallet presented the pre-authorized code at the token endpoint.
	SessionStateAccessTokenRequested SessionState = "AccessTokenRequested"
	// SessionStateAccessTokenCreated means an access token and c_nonce were handed to the wallet.
	SessionStateAccessTokenCreated SessionState = "AccessTokenCreated"
	// SessionStateCredentialRequestReceived means a credential request for this session arrived.
	SessionStateCredentialRequestReceived SessionState = "CredentialRequestReceived"
	// SessionStateCredentialsPartiallyIssued means some but not all offered credentials were issued.
	SessionStateCredentialsPartiallyIssued SessionState = "CredentialsPartiallyIssued"
	// SessionStateCompleted means every offered credential was issued.
	SessionStateCompleted SessionState = "Completed"
	// SessionStateError means issuance failed server-side; ErrorMessage holds the cause.
	SessionStateError SessionState = "Error"
)

// IssuerRecord is the persistent identity of a credential issuer.
// It is created once and mutated only by explicit updates such as key rotation.
type IssuerRecord struct {
	// IssuerID is the opaque, unique identifier of the issuer. It doubles as the issuer URL.
	IssuerID string `json:"issuer_id"`
	// Display holds wallet-facing display properties.
	Display []map[string]interface{} `json:"display,omitempty"`
	// DPoPSigningAlgValuesSupported lists the DPoP algorithms accepted at the token endpoint.
	DPoPSigningAlgValuesSupported []string `json:"dpop_signing_alg_values_supported,omitempty"`
	// AccessTokenPublicKeyFingerprint identifies the key access tokens are currently signed with.
	// Rotation replaces the fingerprint; tokens signed with the previous key stay valid until they expire.
	AccessTokenPublicKeyFingerprint string `json:"access_token_public_key_fingerprint,omitempty"`
	// CredentialConfigurationsSupported holds the issuable credentials in draft 13 shape.
	CredentialConfigurationsSupported map[string]openid4vci.CredentialConfiguration `json:"credential_configurations_supported,omitempty"`
	// CredentialsSupported holds the issuable credentials in legacy draft 11 shape.
	// Exactly one of CredentialConfigurationsSupported and CredentialsSupported is populated.
	CredentialsSupported []openid4vci.CredentialConfiguration `json:"credentials_supported,omitempty"`
}

// Configurations returns the issuer's supported credentials as a draft 13 map,
// converting from the legacy list shape when needed.
func (r IssuerRecord) Configurations() map[string]openid4vci.CredentialConfiguration {
	if r.CredentialConfigurationsSupported != nil {
		return r.CredentialConfigurationsSupported
	}
	return openid4vci.ConfigurationsToDraft13(r.CredentialsSupported)
}

// IssuanceSession is the persistent state of one issuance flow, from offer creation
// until every offered credential has been delivered.
type IssuanceSession struct {
	ID       string `json:"id"`
	IssuerID string `json:"issuer_id"`
	// State is the current protocol state of this session.
	State SessionState `json:"state"`
	// Version is the OpenID4VCI draft version the offer was created under.
	Version openid4vci.SpecVersion `json:"version"`
	// CredentialOfferURI is the URL the wallet dereferences to obtain the offer payload.
	// Unique per issuer.
	CredentialOfferURI string `json:"credential_offer_uri"`
	// CredentialOfferPayload is the offer in the shape of Version.
	CredentialOfferPayload openid4vci.CredentialOffer `json:"credential_offer_payload"`
	// PreAuthorizedCode is the one-use secret exchanged for an access token.
	PreAuthorizedCode string `json:"pre_authorized_code"`
	// UserPinRequired mirrors the tx_code descriptor: it is true exactly when TxCode is set.
	UserPinRequired bool `json:"user_pin_required"`
	// TxCode describes the transaction code required alongside the pre-authorized code, if any.
	TxCode *openid4vci.TxCode `json:"tx_code,omitempty"`
	// IssuanceMetadata is an opaque map the host passes in at offer creation and
	// receives back in the credential request mapper.
	IssuanceMetadata map[string]interface{} `json:"issuance_metadata,omitempty"`
	// CNonce is the challenge the wallet must echo in its proof JWT.
	CNonce string `json:"c_nonce,omitempty"`
	// CNonceExpiresAt bounds the use of CNonce; requests after this moment are rejected.
	CNonceExpiresAt time.Time `json:"c_nonce_expires_at,omitempty"`
	// IssuedCredentials lists the configuration IDs already delivered in this session, in issuance order.
	IssuedCredentials []string `json:"issued_credentials,omitempty"`
	// ErrorMessage holds the failure cause; set exactly when State is Error.
	ErrorMessage string `json:"error_message,omitempty"`
	// Expiry is the moment the session may be pruned from the store.
	Expiry time.Time `json:"exp"`
}

// OfferedConfigurationIDs returns the configuration IDs offered in this session.
func (s IssuanceSession) OfferedConfigurationIDs() []string {
	return openid4vci.OfferConfigurationIDs(s.CredentialOfferPayload)
}

// HasIssued returns whether the given configuration was already issued in this session.
func (s IssuanceSession) HasIssued(configurationID string) bool {
	for _, issued := range s.IssuedCredentials {
		if issued == configurationID {
			return true
		}
	}
	return false
}

// HolderBindingMethod discriminates how the wallet identified its proof-of-possession key.
type HolderBindingMethod string

const (
	// HolderBindingMethodDID binds the credential to a DID verification method.
	HolderBindingMethodDID HolderBindingMethod = "did"
	// HolderBindingMethodJWK binds the credential to a raw JWK.
	HolderBindingMethodJWK HolderBindingMethod = "jwk"
)

// HolderBinding is the cryptographic link between the credential under issuance
// and a key controlled by the wallet, extracted from the proof JWT header.
type HolderBinding struct {
	Method HolderBindingMethod
	// DIDUrl is the kid of the proof, a DID URL with a verification method fragment (Method == did).
	DIDUrl string
	// JWK is the raw key from the proof header (Method == jwk).
	JWK jwk.Key
	// Key is the extracted public key, in both binding methods.
	Key crypto.PublicKey
}

// PreAuthorizedCodeConfig configures the pre-authorized code grant of a new offer.
type PreAuthorizedCodeConfig struct {
	// PreAuthorizedCode is used as-is when set; a random code is generated otherwise.
	PreAuthorizedCode string
	// UserPinRequired requires a transaction code alongside the pre-authorized code.
	// When nil it is derived from TxCode presence.
	UserPinRequired *bool
	// TxCode describes the expected transaction code. Setting it implies UserPinRequired.
	TxCode *openid4vci.TxCode
}
