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
	"errors"
	"net/http"
)

// ValidateCredentialRequest performs shape validation of an incoming credential request:
// it must identify the requested credential by format or by credential_identifier,
// and a proof object must be syntactically complete if present.
func ValidateCredentialRequest(request CredentialRequest) error {
	if request.Format == "" && request.CredentialIdentifier == "" {
		return Error{
			Err:        errors.New("missing format and credential_identifier"),
			Code:       InvalidRequest,
			StatusCode: http.StatusBadRequest,
		}
	}
	if request.Format != "" {
		if _, err := ParseCredentialFormat(string(request.Format)); err != nil {
			return Error{
				Err:        err,
				Code:       UnsupportedCredentialFormat,
				StatusCode: http.StatusBadRequest,
			}
		}
	}
	if request.Proof != nil {
		if request.Proof.ProofType != ProofTypeJWT {
			return Error{
				Err:        errors.New("proof type not supported"),
				Code:       InvalidProof,
				StatusCode: http.StatusBadRequest,
			}
		}
		if request.Proof.Jwt == "" {
			return Error{
				Err:        errors.New("missing proof jwt"),
				Code:       InvalidProof,
				StatusCode: http.StatusBadRequest,
			}
		}
	}
	return nil
}

// ValidateOffer checks structural sanity of a credential offer before it is handed to a wallet.
func ValidateOffer(offer CredentialOffer) error {
	if offer.CredentialIssuer == "" {
		return errors.New("invalid offer: missing credential_issuer")
	}
	if len(OfferConfigurationIDs(offer)) == 0 {
		return errors.New("invalid offer: no credentials offered")
	}
	if offer.Grants.PreAuthorizedCode == nil {
		return errors.New("invalid offer: missing pre-authorized code grant")
	}
	if offer.Grants.PreAuthorizedCode.PreAuthorizedCode == "" {
		return errors.New("invalid offer: missing pre-authorized code")
	}
	return nil
}
