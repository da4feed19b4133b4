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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/go-did/did"
)

// JWSVerifier verifies a compact JWS and returns its claims. The key is resolved
// from the protected header by the supplied callback.
type JWSVerifier interface {
	Verify(ctx context.Context, compact string, resolveKey func(headers jws.Headers) (crypto.PublicKey, error)) (jwt.Token, error)
}

// verificationRelationship selects the DID document relationships a key may be dereferenced under.
type verificationRelationship int

const (
	assertionMethodRelationship verificationRelationship = iota
	authenticationRelationship
)

// extractHolderBinding derives the holder binding from the proof JWT's protected header.
// The header must contain exactly one of kid and jwk; a kid must be a DID URL with a
// verification method fragment, resolvable under assertionMethod.
func (i *openidIssuer) extractHolderBinding(ctx context.Context, request openid4vci.CredentialRequest) (HolderBinding, error) {
	headers, err := parseProofHeaders(request.Proof.Jwt)
	if err != nil {
		return HolderBinding{}, err
	}
	kid := headers.KeyID()
	headerJWK := headers.JWK()
	if (kid == "") == (headerJWK == nil) {
		return HolderBinding{}, invalidProof(errors.New("proof header must contain exactly one of kid and jwk"))
	}

	if headerJWK != nil {
		var key crypto.PublicKey
		if err := headerJWK.Raw(&key); err != nil {
			return HolderBinding{}, invalidProof(fmt.Errorf("invalid jwk in proof header: %w", err))
		}
		return HolderBinding{Method: HolderBindingMethodJWK, JWK: headerJWK, Key: key}, nil
	}

	key, err := i.resolveDIDKey(ctx, kid, assertionMethodRelationship)
	if err != nil {
		return HolderBinding{}, err
	}
	return HolderBinding{Method: HolderBindingMethodDID, DIDUrl: kid, Key: key}, nil
}

// resolveDIDKey dereferences the verification method kid points at and returns its public key.
func (i *openidIssuer) resolveDIDKey(ctx context.Context, kid string, relationships ...verificationRelationship) (crypto.PublicKey, error) {
	if !strings.HasPrefix(kid, "did:") {
		return nil, openid4vci.Error{
			Err:        fmt.Errorf("%w: %s", openid4vci.ErrUnsupportedKidScheme, kid),
			Code:       openid4vci.InvalidProof,
			StatusCode: http.StatusBadRequest,
		}
	}
	keyID, err := did.ParseDIDURL(kid)
	if err != nil {
		return nil, invalidProof(fmt.Errorf("invalid kid in proof header: %w", err))
	}
	if keyID.Fragment == "" {
		return nil, openid4vci.Error{
			Err:        fmt.Errorf("%w: %s", openid4vci.ErrAmbiguousKid, kid),
			Code:       openid4vci.InvalidProof,
			StatusCode: http.StatusBadRequest,
		}
	}
	document, err := i.didResolver.Resolve(ctx, keyID.DID)
	if err != nil {
		return nil, invalidProof(fmt.Errorf("unable to resolve DID document (did=%s): %w", keyID.DID, err))
	}
	for _, relationship := range relationships {
		var methods did.VerificationRelationships
		switch relationship {
		case assertionMethodRelationship:
			methods = document.AssertionMethod
		case authenticationRelationship:
			methods = document.Authentication
		}
		for _, method := range methods {
			if method.ID.String() == kid {
				return method.PublicKey()
			}
		}
	}
	return nil, invalidProof(fmt.Errorf("kid does not reference a usable verification method: %s", kid))
}

// verifyProof verifies the proof JWT's signature and claims against the session:
// the typ header must mark it as an OpenID4VCI proof, the audience must be this issuer,
// and the nonce claim must be the session's c_nonce. The signing key is resolved by the
// same rule as the holder binding, additionally allowing authentication keys.
func (i *openidIssuer) verifyProof(ctx context.Context, session IssuanceSession, request openid4vci.CredentialRequest) (jwt.Token, error) {
	token, err := i.jwsVerifier.Verify(ctx, request.Proof.Jwt, func(headers jws.Headers) (crypto.PublicKey, error) {
		if typ := headers.Type(); typ != openid4vci.JWTTypeProof {
			return nil, fmt.Errorf("invalid typ header (expected: %s): %s", openid4vci.JWTTypeProof, typ)
		}
		if headerJWK := headers.JWK(); headerJWK != nil {
			var key crypto.PublicKey
			if err := headerJWK.Raw(&key); err != nil {
				return nil, err
			}
			return key, nil
		}
		return i.resolveDIDKey(ctx, headers.KeyID(), authenticationRelationship, assertionMethodRelationship)
	})
	if err != nil {
		var protocolError openid4vci.Error
		if errors.As(err, &protocolError) {
			return nil, err
		}
		return nil, invalidProof(err)
	}
	audienceMatches := false
	for _, audience := range token.Audience() {
		if audience == session.IssuerID {
			audienceMatches = true
			break
		}
	}
	if !audienceMatches {
		return nil, invalidProof(fmt.Errorf("audience doesn't match credential issuer (aud=%s)", token.Audience()))
	}
	nonce, ok := token.Get("nonce")
	if !ok {
		return nil, invalidProof(errors.New("missing nonce claim"))
	}
	if value, _ := nonce.(string); value != session.CNonce {
		return nil, openid4vci.Error{
			Err:        openid4vci.ErrNonceMismatch,
			Code:       openid4vci.InvalidProof,
			StatusCode: http.StatusBadRequest,
		}
	}
	return token, nil
}

func parseProofHeaders(compact string) (jws.Headers, error) {
	message, err := jws.ParseString(compact)
	if err != nil {
		return nil, invalidProof(fmt.Errorf("invalid proof jwt: %w", err))
	}
	if len(message.Signatures()) != 1 {
		return nil, invalidProof(errors.New("expected exactly one signature on proof jwt"))
	}
	return message.Signatures()[0].ProtectedHeaders(), nil
}

func invalidProof(err error) error {
	return openid4vci.Error{
		Err:        err,
		Code:       openid4vci.InvalidProof,
		StatusCode: http.StatusBadRequest,
	}
}

var _ JWSVerifier = jwxVerifier{}

// jwxVerifier is the default JWSVerifier, backed by jwx.
type jwxVerifier struct {
	clock clock.Clock
}

func (v jwxVerifier) Verify(_ context.Context, compact string, resolveKey func(headers jws.Headers) (crypto.PublicKey, error)) (jwt.Token, error) {
	headers, err := parseProofHeaders(compact)
	if err != nil {
		return nil, err
	}
	key, err := resolveKey(headers)
	if err != nil {
		return nil, err
	}
	return jwt.ParseString(compact,
		jwt.WithKey(headers.Algorithm(), key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(v.clock.Now)),
		jwt.WithAcceptableSkew(5*time.Second))
}
