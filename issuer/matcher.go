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
	"fmt"
	"maps"
	"net/http"

	"github.com/jakubkoci/credo-ts/core"
	"github.com/jakubkoci/credo-ts/issuer/log"
	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/samber/lo"
)

// MatchedConfiguration pairs a credential configuration with its ID.
// Matches preserve the insertion order of the offer.
type MatchedConfiguration struct {
	ID            string
	Configuration openid4vci.CredentialConfiguration
}

// matchCredentialRequest determines which offered configurations a credential request satisfies.
// The request either references a configuration directly by credential_identifier, or is matched
// by format and the format's type descriptor (W3C types, vct or doctype). On the format path,
// configurations already issued in this session are not matched again; the credential_identifier
// path returns the offered configuration without checking the session's issued credentials.
// When several configurations match, only the first in offer order is returned and a warning is logged.
func matchCredentialRequest(offer openid4vci.CredentialOffer, request openid4vci.CredentialRequest,
	issuerConfigs map[string]openid4vci.CredentialConfiguration, session IssuanceSession) ([]MatchedConfiguration, error) {
	var offered []MatchedConfiguration
	for _, id := range openid4vci.OfferConfigurationIDs(offer) {
		if config, ok := issuerConfigs[id]; ok {
			offered = append(offered, MatchedConfiguration{ID: id, Configuration: config})
		}
	}

	if request.CredentialIdentifier != "" {
		for _, candidate := range offered {
			if candidate.ID == request.CredentialIdentifier {
				return []MatchedConfiguration{candidate}, nil
			}
		}
		return nil, openid4vci.Error{
			Err:        fmt.Errorf("%w: %s", openid4vci.ErrNotOffered, request.CredentialIdentifier),
			Code:       openid4vci.UnsupportedCredentialType,
			StatusCode: http.StatusBadRequest,
		}
	}

	var matches []MatchedConfiguration
	for _, candidate := range offered {
		if candidate.Configuration.Format != request.Format {
			continue
		}
		if session.HasIssued(candidate.ID) {
			continue
		}
		if matchesFormat(candidate.Configuration, request) {
			matches = append(matches, candidate)
		}
	}
	if len(matches) == 0 {
		return nil, openid4vci.Error{
			Err:        openid4vci.ErrNoMatchingOffer,
			Code:       openid4vci.UnsupportedCredentialType,
			StatusCode: http.StatusBadRequest,
		}
	}
	if len(matches) > 1 {
		log.Logger().
			WithField(core.LogFieldSessionID, session.ID).
			WithField(core.LogFieldCredentialFormat, request.Format).
			Warnf("Multiple offered credentials match the request, selecting %s", matches[0].ID)
	}
	return matches[:1], nil
}

// matchesFormat applies the format-specific matching predicate.
func matchesFormat(config openid4vci.CredentialConfiguration, request openid4vci.CredentialRequest) bool {
	switch request.Format {
	case openid4vci.VerifiableCredentialJWTFormat:
		requested := request.CredentialDefinition.TypeList()
		if requested == nil {
			requested = request.Types
		}
		return equalTypeSets(config.TypeList(), requested)
	case openid4vci.VerifiableCredentialJWTJSONLDFormat, openid4vci.VerifiableCredentialJSONLDFormat:
		return equalTypeSets(config.TypeList(), request.CredentialDefinition.TypeList())
	case openid4vci.SDJWTVCFormat:
		return config.Vct != "" && config.Vct == request.Vct
	case openid4vci.MSOMDocFormat:
		return config.DocType != "" && config.DocType == request.DocType
	}
	return false
}

// equalTypeSets compares two lists of type IRIs as multisets: order does not matter,
// multiplicity does.
func equalTypeSets(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return maps.Equal(lo.CountValues(a), lo.CountValues(b))
}
