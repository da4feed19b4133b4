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
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/lestrrat-go/jwx/v2/jwa"
	ssi "github.com/nuts-foundation/go-did"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/go-did/vc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var issuerDID = did.MustParseDID("did:example:university")
var issuerKeyID = issuerDID.String() + "#signing-key"

func issuerDocument(t *testing.T, publicKey interface{}) *did.Document {
	document := &did.Document{ID: issuerDID}
	verificationMethod, err := did.NewVerificationMethod(did.MustParseDIDURL(issuerKeyID), ssi.JsonWebKey2020, issuerDID, publicKey)
	require.NoError(t, err)
	document.AddAssertionMethod(verificationMethod)
	return document
}

// startSession runs the flow up to an authorized wallet: offer, token, c_nonce.
func startSession(t *testing.T, test *testContext, configurationIDs ...string) (*IssuanceSession, string) {
	session, _, err := test.issuer.CreateOffer(context.Background(), testIssuerURL, configurationIDs,
		PreAuthorizedCodeConfig{}, map[string]interface{}{"student": "alice"}, openid4vci.SpecVersionDraft13)
	require.NoError(t, err)
	cNonce, _, err := test.issuer.RegisterAccessToken(context.Background(), testIssuerURL, session.PreAuthorizedCode)
	require.NoError(t, err)
	return session, cNonce
}

func TestOpenidIssuer_HandleCredentialRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("ok - sd-jwt", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, input CredentialRequestMapperInput) (SignOptions, error) {
				assert.Equal(t, []string{sdJwtConfigID}, input.CredentialConfigurationIDs)
				assert.Equal(t, "alice", input.Session.IssuanceMetadata["student"])
				assert.Equal(t, HolderBindingMethodDID, input.HolderBinding.Method)
				assert.Nil(t, input.CredentialsSupported)
				return SDJWTVCSignOptions{
					CredentialConfigurationID: sdJwtConfigID,
					Payload:                   map[string]interface{}{"vct": sdJwtConfigID, "degree": "Bachelor of Science"},
					DisclosureFrame:           []string{"degree"},
					VerificationMethod:        issuerKeyID,
				}, nil
			})
		test.sdjwt.EXPECT().SignSDJWTCredential(gomock.Any(), gomock.Any(), gomock.Any()).Return(
			&SignedCredential{Format: openid4vci.SDJWTVCFormat, Credential: "header.payload.signature~disclosure~"}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		response, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		require.NoError(t, err)
		assert.Equal(t, "header.payload.signature~disclosure~", response.Credential)
		assert.Equal(t, openid4vci.SDJWTVCFormat, response.Format)
		assert.NotEmpty(t, response.CNonce)
		assert.NotEqual(t, cNonce, response.CNonce)
		assert.Equal(t, int((15 * time.Minute).Seconds()), response.CNonceExpiresIn)

		stored, err := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, SessionStateCompleted, stored.State)
		assert.Equal(t, []string{sdJwtConfigID}, stored.IssuedCredentials)
		assert.Equal(t, response.CNonce, stored.CNonce)
	})

	t.Run("ok - jwt_vc_json with subject imprinting", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		_, issuerPublicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		test.didResolver.EXPECT().Resolve(gomock.Any(), issuerDID).AnyTimes().Return(issuerDocument(t, issuerPublicKey), nil)
		_, cNonce := startSession(t, test, jwtVcConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(JWTVCSignOptions{
			CredentialConfigurationID: jwtVcConfigID,
			Credential: vc.VerifiableCredential{
				Type: []ssi.URI{ssi.MustParseURI("VerifiableCredential"), ssi.MustParseURI("UniversityDegreeCredential")},
				CredentialSubject: []map[string]interface{}{
					{"degree": "Bachelor of Science"},
				},
			},
			VerificationMethod: issuerKeyID,
		}, nil)
		test.w3cService.EXPECT().SignJWTCredential(gomock.Any(), gomock.Any(), jwa.EdDSA, issuerKeyID).DoAndReturn(
			func(_ context.Context, credential vc.VerifiableCredential, _ jwa.SignatureAlgorithm, _ string) (*SignedCredential, error) {
				subject := credential.CredentialSubject[0]
				assert.Equal(t, holderDID.String(), subject["id"])
				return &SignedCredential{Format: openid4vci.VerifiableCredentialJWTFormat, Credential: "header.payload.signature"}, nil
			})

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		request := openid4vci.CredentialRequest{
			Format: openid4vci.VerifiableCredentialJWTFormat,
			Types:  degreeTypes,
			Proof:  &openid4vci.CredentialRequestProof{ProofType: openid4vci.ProofTypeJWT, Jwt: proof},
		}
		response, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, request)

		require.NoError(t, err)
		assert.Equal(t, "header.payload.signature", response.Credential)
		assert.Equal(t, openid4vci.VerifiableCredentialJWTFormat, response.Format)
	})

	t.Run("ok - partial issuance keeps session open", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID, mdocConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(SDJWTVCSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			Payload:                   map[string]interface{}{"vct": sdJwtConfigID},
			VerificationMethod:        issuerKeyID,
		}, nil)
		test.sdjwt.EXPECT().SignSDJWTCredential(gomock.Any(), gomock.Any(), gomock.Any()).Return(
			&SignedCredential{Format: openid4vci.SDJWTVCFormat, Credential: "sd-jwt~"}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		require.NoError(t, err)
		stored, err := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, SessionStateCredentialsPartiallyIssued, stored.State)
		assert.Equal(t, []string{sdJwtConfigID}, stored.IssuedCredentials)
	})

	t.Run("expired nonce leaves session state untouched", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID)

		test.clock.Add(16 * time.Minute)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		assert.ErrorIs(t, err, openid4vci.ErrNonceExpired)
		stored, storeErr := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, storeErr)
		assert.Equal(t, SessionStateAccessTokenCreated, stored.State)
		assert.Empty(t, stored.IssuedCredentials)
	})

	t.Run("requested format not offered", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		request := openid4vci.CredentialRequest{
			Format:  openid4vci.MSOMDocFormat,
			DocType: mdocDocType,
			Proof:   &openid4vci.CredentialRequestProof{ProofType: openid4vci.ProofTypeJWT, Jwt: proof},
		}
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, request)

		assert.ErrorIs(t, err, openid4vci.ErrNoMatchingOffer)
		stored, storeErr := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, storeErr)
		assert.NotEqual(t, SessionStateError, stored.State)
	})

	t.Run("repeated request for an issued credential", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		_, cNonce := startSession(t, test, sdJwtConfigID, mdocConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(SDJWTVCSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			Payload:                   map[string]interface{}{"vct": sdJwtConfigID},
			VerificationMethod:        issuerKeyID,
		}, nil)
		test.sdjwt.EXPECT().SignSDJWTCredential(gomock.Any(), gomock.Any(), gomock.Any()).Return(
			&SignedCredential{Format: openid4vci.SDJWTVCFormat, Credential: "sd-jwt~"}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		response, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))
		require.NoError(t, err)

		// Retry with the rotated nonce: the credential is no longer matchable.
		retryProof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: response.CNonce})
		_, err = test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(retryProof))

		assert.ErrorIs(t, err, openid4vci.ErrNoMatchingOffer)
	})

	t.Run("concurrent requests for the same configuration", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID)

		var mapperCalls atomic.Int32
		firstMapped := make(chan struct{})
		winnerSigned := make(chan struct{})
		options := SDJWTVCSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			Payload:                   map[string]interface{}{"vct": sdJwtConfigID},
			VerificationMethod:        issuerKeyID,
		}
		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
			func(_ context.Context, _ CredentialRequestMapperInput) (SignOptions, error) {
				if mapperCalls.Add(1) == 1 {
					// Hold the first request until the other one has recorded its issuance.
					close(firstMapped)
					<-winnerSigned
				}
				return options, nil
			})
		test.sdjwt.EXPECT().SignSDJWTCredential(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ SDJWTVCSignOptions, _ HolderBinding) (*SignedCredential, error) {
				close(winnerSigned)
				return &SignedCredential{Format: openid4vci.SDJWTVCFormat, Credential: "sd-jwt~"}, nil
			})

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		var wg sync.WaitGroup
		results := make([]error, 2)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[0] = test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))
		}()
		<-firstMapped
		_, results[1] = test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))
		wg.Wait()

		require.ErrorIs(t, results[0], openid4vci.ErrAlreadyIssued)
		require.NoError(t, results[1])
		stored, err := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{sdJwtConfigID}, stored.IssuedCredentials)
	})

	t.Run("ok - request by credential_identifier", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		_, cNonce := startSession(t, test, sdJwtConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(SDJWTVCSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			Payload:                   map[string]interface{}{"vct": sdJwtConfigID},
			VerificationMethod:        issuerKeyID,
		}, nil)
		test.sdjwt.EXPECT().SignSDJWTCredential(gomock.Any(), gomock.Any(), gomock.Any()).Return(
			&SignedCredential{Format: openid4vci.SDJWTVCFormat, Credential: "sd-jwt~"}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		request := openid4vci.CredentialRequest{
			CredentialIdentifier: sdJwtConfigID,
			Proof:                &openid4vci.CredentialRequestProof{ProofType: openid4vci.ProofTypeJWT, Jwt: proof},
		}
		response, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, request)

		require.NoError(t, err)
		assert.Equal(t, "sd-jwt~", response.Credential)
		assert.Equal(t, openid4vci.SDJWTVCFormat, response.Format)
	})

	t.Run("mapper output format disagrees with request", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(MSOMDocSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			DocType:                   mdocDocType,
			VerificationMethod:        issuerKeyID,
		}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		assert.ErrorIs(t, err, openid4vci.ErrFormatMismatch)
		stored, storeErr := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, storeErr)
		assert.NotEqual(t, SessionStateError, stored.State)
	})

	t.Run("sd-jwt vct disagreement", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		_, cNonce := startSession(t, test, sdJwtConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(SDJWTVCSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			Payload:                   map[string]interface{}{"vct": "SomethingElse"},
			VerificationMethod:        issuerKeyID,
		}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		assert.ErrorIs(t, err, openid4vci.ErrFormatMismatch)
	})

	t.Run("signer requests deferred issuance", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(SDJWTVCSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			Payload:                   map[string]interface{}{"vct": sdJwtConfigID},
			VerificationMethod:        issuerKeyID,
		}, nil)
		test.sdjwt.EXPECT().SignSDJWTCredential(gomock.Any(), gomock.Any(), gomock.Any()).Return(
			&SignedCredential{Format: openid4vci.SDJWTVCFormat, AcceptanceToken: "come-back-later"}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		assert.ErrorIs(t, err, openid4vci.ErrDeferredUnsupported)
		stored, storeErr := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, storeErr)
		assert.Equal(t, SessionStateError, stored.State)
		assert.NotEmpty(t, stored.ErrorMessage)
	})

	t.Run("signer produces no credential", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		session, cNonce := startSession(t, test, sdJwtConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(SDJWTVCSignOptions{
			CredentialConfigurationID: sdJwtConfigID,
			Payload:                   map[string]interface{}{"vct": sdJwtConfigID},
			VerificationMethod:        issuerKeyID,
		}, nil)
		test.sdjwt.EXPECT().SignSDJWTCredential(gomock.Any(), gomock.Any(), gomock.Any()).Return(
			&SignedCredential{Format: openid4vci.SDJWTVCFormat}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		assert.ErrorIs(t, err, openid4vci.ErrSignerProducedNothing)
		stored, storeErr := test.store.FindSessionByID(ctx, session.ID)
		require.NoError(t, storeErr)
		assert.Equal(t, SessionStateError, stored.State)
	})

	t.Run("mapper selects a credential outside the match", func(t *testing.T) {
		test := newTestContext(t)
		privateKey, publicKey := newHolderKey(t)
		test.didResolver.EXPECT().Resolve(gomock.Any(), holderDID).AnyTimes().Return(holderDocument(t, publicKey), nil)
		_, cNonce := startSession(t, test, sdJwtConfigID)

		test.mapper.EXPECT().Map(gomock.Any(), gomock.Any()).Return(SDJWTVCSignOptions{
			CredentialConfigurationID: mdocConfigID,
			Payload:                   map[string]interface{}{"vct": sdJwtConfigID},
			VerificationMethod:        issuerKeyID,
		}, nil)

		proof := signProof(t, privateKey, proofParams{kid: holderKeyID, audience: testIssuerURL, nonce: cNonce})
		_, err := test.issuer.HandleCredentialRequest(ctx, testIssuerURL, proofRequest(proof))

		require.Error(t, err)
		var protocolError openid4vci.Error
		require.ErrorAs(t, err, &protocolError)
		assert.Equal(t, openid4vci.ServerError, protocolError.Code)
	})
}
