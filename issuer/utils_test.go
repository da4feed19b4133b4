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
	"crypto/ed25519"
	"crypto/rand"
	"path"
	"testing"
	"time"

	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	ssi "github.com/nuts-foundation/go-did"
	"github.com/nuts-foundation/go-did/did"
	"github.com/nuts-foundation/go-stoabs"
	"github.com/nuts-foundation/go-stoabs/bbolt"
	"github.com/stretchr/testify/require"
)

const testIssuerURL = "https://issuer.example.com"

var holderDID = did.MustParseDID("did:example:alice")
var holderKeyID = holderDID.String() + "#key-1"

const sdJwtConfigID = "UniversityDegree_SD"
const jwtVcConfigID = "UniversityDegree_JWT"
const ldpVcConfigID = "UniversityDegree_LDP"
const mdocConfigID = "UniversityDegree_mdoc"
const mdocDocType = "org.example.university_degree.1"

var degreeTypes = []string{"VerifiableCredential", "UniversityDegreeCredential"}

func testIssuerRecord() IssuerRecord {
	return IssuerRecord{
		IssuerID: testIssuerURL,
		CredentialConfigurationsSupported: map[string]openid4vci.CredentialConfiguration{
			sdJwtConfigID: {
				Format: openid4vci.SDJWTVCFormat,
				Vct:    sdJwtConfigID,
			},
			jwtVcConfigID: {
				Format:               openid4vci.VerifiableCredentialJWTFormat,
				CredentialDefinition: &openid4vci.CredentialDefinition{Type: degreeTypes},
			},
			ldpVcConfigID: {
				Format:               openid4vci.VerifiableCredentialJSONLDFormat,
				CredentialDefinition: &openid4vci.CredentialDefinition{Type: degreeTypes},
			},
			mdocConfigID: {
				Format:  openid4vci.MSOMDocFormat,
				DocType: mdocDocType,
			},
		},
	}
}

func newTestStore(t *testing.T) Store {
	kv, err := bbolt.CreateBBoltStore(path.Join(t.TempDir(), "issuer.db"), stoabs.WithNoSync())
	require.NoError(t, err)
	store := NewStoabsStore(kv)
	t.Cleanup(store.Close)
	return store
}

func newHolderKey(t *testing.T) (ed25519.PrivateKey, ed25519.PublicKey) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return privateKey, publicKey
}

func holderDocument(t *testing.T, publicKey ed25519.PublicKey) *did.Document {
	document := &did.Document{ID: holderDID}
	verificationMethod, err := did.NewVerificationMethod(did.MustParseDIDURL(holderKeyID), ssi.JsonWebKey2020, holderDID, publicKey)
	require.NoError(t, err)
	document.AddAssertionMethod(verificationMethod)
	return document
}

type proofParams struct {
	kid      string
	jwk      jwk.Key
	typ      string
	audience string
	nonce    string
}

// signProof builds the wallet's proof of possession JWT.
func signProof(t *testing.T, privateKey ed25519.PrivateKey, params proofParams) string {
	builder := jwt.NewBuilder().
		IssuedAt(time.Now()).
		Audience([]string{params.audience})
	if params.nonce != "" {
		builder = builder.Claim("nonce", params.nonce)
	}
	token, err := builder.Build()
	require.NoError(t, err)

	headers := jws.NewHeaders()
	if params.typ == "" {
		params.typ = openid4vci.JWTTypeProof
	}
	require.NoError(t, headers.Set(jws.TypeKey, params.typ))
	if params.kid != "" {
		require.NoError(t, headers.Set(jws.KeyIDKey, params.kid))
	}
	if params.jwk != nil {
		require.NoError(t, headers.Set(jws.JWKKey, params.jwk))
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.EdDSA, privateKey, jws.WithProtectedHeaders(headers)))
	require.NoError(t, err)
	return string(signed)
}

func publicJWK(t *testing.T, publicKey ed25519.PublicKey) jwk.Key {
	key, err := jwk.FromRaw(publicKey)
	require.NoError(t, err)
	return key
}
