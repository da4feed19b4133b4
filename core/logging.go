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

package core

const (
	// LogFieldModule is the log field for the module name.
	LogFieldModule = "module"

	// LogFieldIssuerID is the log field key for the ID of a credential issuer.
	LogFieldIssuerID = "issuerID"
	// LogFieldSessionID is the log field key for the ID of an issuance session.
	LogFieldSessionID = "sessionID"
	// LogFieldOfferURI is the log field key for the URI of a credential offer.
	LogFieldOfferURI = "offerURI"
	// LogFieldConfigurationID is the log field key for the ID of a credential configuration.
	LogFieldConfigurationID = "configurationID"
	// LogFieldCredentialFormat is the log field key for a credential format identifier.
	LogFieldCredentialFormat = "credentialFormat"
	// LogFieldStore is the log field key for the name of a store.
	LogFieldStore = "store"
)
