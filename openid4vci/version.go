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
	"sort"
)

// SpecVersion identifies the OpenID4VCI draft version an offer was created under.
// Offers are built in draft 13 shape; a draft 11 offer is persisted as its draft 11 projection only,
// without its draft 13 shape. OfferConfigurationIDs reads the IDs from either shape.
type SpecVersion string

const (
	// SpecVersionDraft11 is OpenID4VCI draft 11.
	SpecVersionDraft11 SpecVersion = "v1.draft11"
	// SpecVersionDraft13 is OpenID4VCI draft 13.
	SpecVersionDraft13 SpecVersion = "v1.draft13"
)

// ParseSpecVersion parses s as a supported OpenID4VCI draft version.
func ParseSpecVersion(s string) (SpecVersion, error) {
	switch SpecVersion(s) {
	case SpecVersionDraft11, SpecVersionDraft13:
		return SpecVersion(s), nil
	}
	return "", fmt.Errorf("unsupported OpenID4VCI version: %s", s)
}

// OfferConfigurationIDs returns the credential configuration IDs of an offer,
// regardless of the draft version shape it is in.
func OfferConfigurationIDs(offer CredentialOffer) []string {
	if len(offer.CredentialConfigurationIDs) > 0 {
		return offer.CredentialConfigurationIDs
	}
	return offer.Credentials
}

// OfferToDraft11 projects a draft 13 credential offer onto its draft 11 shape:
// credential_configuration_ids becomes credentials, and the pre-authorized code grant
// carries user_pin_required (true exactly when a tx_code descriptor is present) alongside its tx_code.
func OfferToDraft11(offer CredentialOffer) CredentialOffer {
	result := offer
	result.Credentials = OfferConfigurationIDs(offer)
	result.CredentialConfigurationIDs = nil
	if offer.Grants.PreAuthorizedCode != nil {
		grant := *offer.Grants.PreAuthorizedCode
		pinRequired := grant.TxCode != nil
		grant.UserPinRequired = &pinRequired
		result.Grants.PreAuthorizedCode = &grant
	}
	return result
}

// OfferToDraft13 projects a draft 11 credential offer onto its draft 13 shape.
// It is the inverse of OfferToDraft11 on the configuration IDs.
func OfferToDraft13(offer CredentialOffer) CredentialOffer {
	result := offer
	result.CredentialConfigurationIDs = OfferConfigurationIDs(offer)
	result.Credentials = nil
	if offer.Grants.PreAuthorizedCode != nil {
		grant := *offer.Grants.PreAuthorizedCode
		if grant.UserPinRequired != nil && *grant.UserPinRequired && grant.TxCode == nil {
			grant.TxCode = &TxCode{}
		}
		grant.UserPinRequired = nil
		result.Grants.PreAuthorizedCode = &grant
	}
	return result
}

// ConfigurationsToDraft13 converts a draft 11 credentials_supported list into a
// draft 13 credential_configurations_supported map keyed by configuration ID.
func ConfigurationsToDraft13(configs []CredentialConfiguration) map[string]CredentialConfiguration {
	result := make(map[string]CredentialConfiguration, len(configs))
	for _, config := range configs {
		id := config.ID
		config.ID = ""
		if len(config.Types) > 0 && config.CredentialDefinition.TypeList() == nil {
			config.CredentialDefinition = &CredentialDefinition{Type: config.Types}
		}
		config.Types = nil
		result[id] = config
	}
	return result
}

// ConfigurationsToDraft11 converts a draft 13 credential_configurations_supported map
// into a draft 11 credentials_supported list, ordered by configuration ID.
func ConfigurationsToDraft11(configs map[string]CredentialConfiguration) []CredentialConfiguration {
	ids := make([]string, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]CredentialConfiguration, 0, len(configs))
	for _, id := range ids {
		config := configs[id]
		config.ID = id
		if config.Format == VerifiableCredentialJWTFormat && config.CredentialDefinition.TypeList() != nil {
			config.Types = config.CredentialDefinition.TypeList()
		}
		result = append(result, config)
	}
	return result
}
