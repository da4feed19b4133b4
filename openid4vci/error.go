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

import "errors"

// ErrorCode specifies error codes as defined by the OpenID4VCI spec.
type ErrorCode string

const (
	// InvalidRequest is returned when the Credential Request was malformed,
	// e.g. one or more of the parameters (format, proof) are missing or malformed.
	InvalidRequest ErrorCode = "invalid_request"
	// InvalidGrant is returned when (in addition to cases defined by OAuth2)
	// the provided pre-authorized code or nonce is invalid or has expired.
	InvalidGrant ErrorCode = "invalid_grant"
	// InvalidToken is returned when the Credential Request contains the wrong access token or it is missing.
	InvalidToken ErrorCode = "invalid_token"
	// InvalidProof is returned when the Credential Request did not contain a proof,
	// or the proof was invalid, i.e. it was not bound to a Credential Issuer provided nonce.
	InvalidProof ErrorCode = "invalid_proof"
	// UnsupportedCredentialType is returned when the requested credential type is not offered.
	UnsupportedCredentialType ErrorCode = "unsupported_credential_type"
	// UnsupportedCredentialFormat is returned when the requested credential format is not supported.
	UnsupportedCredentialFormat ErrorCode = "unsupported_credential_format"
	// ServerError is returned when the Credential Issuer encounters an unexpected condition
	// that prevents it from fulfilling the request.
	ServerError ErrorCode = "server_error"
)

// Failure conditions of the issuance flow. They are wrapped in an Error carrying the
// protocol error code, so callers can test for the specific condition with errors.Is
// while transports serialize the protocol code.
var (
	// ErrInvalidOffer is returned when offer construction constraints are violated. No session is written.
	ErrInvalidOffer = errors.New("invalid credential offer")
	// ErrInvalidState is returned when the session is not in a state that allows credential requests.
	ErrInvalidState = errors.New("session not in a state that allows credential retrieval")
	// ErrMissingProof is returned when the credential request does not contain a proof of possession.
	ErrMissingProof = errors.New("missing proof")
	// ErrMissingNonce is returned when no c_nonce can be located in the credential request.
	ErrMissingNonce = errors.New("missing nonce")
	// ErrNonceMismatch is returned when the nonce in the request does not belong to the session.
	ErrNonceMismatch = errors.New("nonce does not match session")
	// ErrNonceExpired is returned when the session's c_nonce is past its expiry.
	ErrNonceExpired = errors.New("nonce has expired")
	// ErrNotOffered is returned when the requested credential_identifier is not part of the offer.
	ErrNotOffered = errors.New("credential is not offered")
	// ErrNoMatchingOffer is returned when no offered configuration satisfies the credential request.
	ErrNoMatchingOffer = errors.New("no offered credential matches the request")
	// ErrFormatMismatch is returned when the mapped signing options disagree with the requested format.
	ErrFormatMismatch = errors.New("credential format does not match request")
	// ErrAlreadyIssued is returned when the matched configuration was already issued in this session.
	ErrAlreadyIssued = errors.New("credential was already issued in this session")
	// ErrSignerProducedNothing is returned when the signer yielded a response without a credential.
	ErrSignerProducedNothing = errors.New("signer did not produce a credential")
	// ErrDeferredUnsupported is returned when the signer requested deferred issuance.
	ErrDeferredUnsupported = errors.New("deferred credential issuance is not supported")
	// ErrUnsupportedKidScheme is returned when the proof kid is not a DID URL.
	ErrUnsupportedKidScheme = errors.New("proof kid is not a did")
	// ErrAmbiguousKid is returned when the proof kid does not reference a specific verification method.
	ErrAmbiguousKid = errors.New("proof kid does not reference a verification method")
	// ErrNoSupportedAlgorithm is returned when no JWA signature algorithm is available for the signing key.
	ErrNoSupportedAlgorithm = errors.New("no supported signature algorithm for key")
)

// Error is an OpenID4VCI protocol error. It carries the protocol error code and HTTP status
// to return to the wallet, and wraps the underlying condition for errors.Is checks.
type Error struct {
	// Code is the error code as defined by the OpenID4VCI spec.
	Code ErrorCode `json:"error"`
	// Description is the optional human-readable error description returned to the wallet.
	Description string `json:"error_description,omitempty"`
	// Err is the underlying error. It is not returned to the client.
	Err error `json:"-"`
	// StatusCode is the HTTP status code that should be returned to the client.
	StatusCode int `json:"-"`
}

// Error returns the error message: the code followed by the underlying error, or just the code if there is no underlying error.
func (e Error) Error() string {
	if e.Err == nil {
		return string(e.Code)
	}
	return string(e.Code) + " - " + e.Err.Error()
}

// Unwrap exposes the underlying condition, so errors.Is matches the sentinels above through an Error.
func (e Error) Unwrap() error {
	return e.Err
}
