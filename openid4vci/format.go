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
	"fmt"
)

// CredentialFormat identifies the format of an offered, requested or issued credential.
// The set of formats is closed: code dispatching on a CredentialFormat can switch exhaustively
// over the constants below, anything else is rejected at the wire boundary by ParseCredentialFormat.
type CredentialFormat string

const (
	// VerifiableCredentialJWTFormat is the format identifier of a W3C Verifiable Credential secured as a JWT.
	VerifiableCredentialJWTFormat CredentialFormat = "jwt_vc_json"
	// VerifiableCredentialJWTJSONLDFormat is the format identifier of a JSON-LD W3C Verifiable Credential secured as a JWT.
	VerifiableCredentialJWTJSONLDFormat CredentialFormat = "jwt_vc_json-ld"
	// VerifiableCredentialJSONLDFormat is the format identifier of a W3C Verifiable Credential with a Data Integrity proof.
	VerifiableCredentialJSONLDFormat CredentialFormat = "ldp_vc"
	// SDJWTVCFormat is the format identifier of an IETF SD-JWT Verifiable Credential.
	SDJWTVCFormat CredentialFormat = "vc+sd-jwt"
	// MSOMDocFormat is the format identifier of an ISO/IEC 18013-5 mdoc.
	MSOMDocFormat CredentialFormat = "mso_mdoc"
)

// CredentialFormats lists every supported credential format.
var CredentialFormats = []CredentialFormat{
	VerifiableCredentialJWTFormat,
	VerifiableCredentialJWTJSONLDFormat,
	VerifiableCredentialJSONLDFormat,
	SDJWTVCFormat,
	MSOMDocFormat,
}

// ParseCredentialFormat parses s as a credential format identifier.
func ParseCredentialFormat(s string) (CredentialFormat, error) {
	for _, format := range CredentialFormats {
		if s == string(format) {
			return format, nil
		}
	}
	return "", fmt.Errorf("unsupported credential format: %s", s)
}

// IsW3C returns whether the format is one of the W3C Verifiable Credential formats.
func (f CredentialFormat) IsW3C() bool {
	switch f {
	case VerifiableCredentialJWTFormat, VerifiableCredentialJWTJSONLDFormat, VerifiableCredentialJSONLDFormat:
		return true
	case SDJWTVCFormat, MSOMDocFormat:
		return false
	}
	return false
}

func (f CredentialFormat) String() string {
	return string(f)
}
