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
	"errors"
	"fmt"
	"net/http"

	"github.com/jakubkoci/credo-ts/core"
	"github.com/jakubkoci/credo-ts/issuer/log"
	"github.com/jakubkoci/credo-ts/openid4vci"
)

func (i *openidIssuer) HandleCredentialRequest(ctx context.Context, issuerID string, request openid4vci.CredentialRequest) (*openid4vci.CredentialResponse, error) {
	response, err := i.handleCredentialRequest(ctx, issuerID, request)
	if i.metrics != nil {
		if err != nil {
			i.metrics.issuanceErrors.WithLabelValues(errorCode(err)).Inc()
		} else {
			i.metrics.credentialsIssued.WithLabelValues(string(response.Format)).Inc()
		}
	}
	return response, err
}

func (i *openidIssuer) handleCredentialRequest(ctx context.Context, issuerID string, request openid4vci.CredentialRequest) (*openid4vci.CredentialResponse, error) {
	if err := openid4vci.ValidateCredentialRequest(request); err != nil {
		return nil, err
	}
	session, cNonce, err := i.findSessionForRequest(ctx, request, issuerID)
	if err != nil {
		return nil, err
	}
	if err := i.validateForCredential(*session, request, cNonce); err != nil {
		return nil, err
	}
	if session.State == SessionStateAccessTokenCreated {
		session.State = SessionStateCredentialRequestReceived
		if err := i.store.UpdateSession(ctx, *session); err != nil {
			return nil, err
		}
	}
	record, err := i.store.FindIssuerByID(ctx, session.IssuerID)
	if err != nil {
		return nil, err
	}

	matched, err := matchCredentialRequest(session.CredentialOfferPayload, request, record.Configurations(), *session)
	if err != nil {
		return nil, err
	}
	binding, err := i.extractHolderBinding(ctx, request)
	if err != nil {
		return nil, err
	}
	if _, err := i.verifyProof(ctx, *session, request); err != nil {
		return nil, err
	}

	signOptions, err := i.mapCredentialRequest(ctx, *session, binding, request, matched)
	if err != nil {
		return nil, err
	}
	configurationID := signOptions.ConfigurationID()
	isMatched := false
	for _, candidate := range matched {
		if candidate.ID == configurationID {
			isMatched = true
			break
		}
	}
	if !isMatched {
		return nil, serverError(fmt.Errorf("mapper selected a credential that does not match the request: %s", configurationID))
	}

	// Re-read before mutating: a concurrent request may have issued the same configuration
	// after this one was matched.
	session, err = i.store.FindSessionByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	if session.HasIssued(configurationID) {
		return nil, openid4vci.Error{
			Err:        fmt.Errorf("%w: %s", openid4vci.ErrAlreadyIssued, configurationID),
			Code:       openid4vci.InvalidRequest,
			StatusCode: http.StatusBadRequest,
		}
	}
	// The slot is consumed once the signer may have emitted a credential,
	// even if the wallet never sees the response.
	session.IssuedCredentials = append(session.IssuedCredentials, configurationID)
	if err := i.store.UpdateSession(ctx, *session); err != nil {
		return nil, err
	}

	if err := checkFormatAgreement(signOptions, request); err != nil {
		return nil, err
	}

	signed, err := i.sign(ctx, signOptions, binding)
	if err != nil {
		return nil, err
	}
	if signed.AcceptanceToken != "" || signed.TransactionID != "" {
		return nil, i.failSession(ctx, session.ID, openid4vci.ErrDeferredUnsupported)
	}
	if signed.Credential == nil {
		return nil, i.failSession(ctx, session.ID, openid4vci.ErrSignerProducedNothing)
	}

	// Advance state and rotate the nonce in one write.
	session, err = i.store.FindSessionByID(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	remaining := 0
	for _, offered := range session.OfferedConfigurationIDs() {
		if !session.HasIssued(offered) {
			remaining++
		}
	}
	if remaining > 0 {
		session.State = SessionStateCredentialsPartiallyIssued
	} else {
		session.State = SessionStateCompleted
	}
	freshNonce := generateSecret()
	session.CNonce = freshNonce
	session.CNonceExpiresAt = i.clock.Now().Add(i.config.CNonceTTL)
	if err := i.store.UpdateSession(ctx, *session); err != nil {
		return nil, err
	}

	log.Logger().
		WithField(core.LogFieldSessionID, session.ID).
		WithField(core.LogFieldConfigurationID, configurationID).
		WithField(core.LogFieldCredentialFormat, request.Format).
		Info("Issued credential")

	response := &openid4vci.CredentialResponse{
		Credential:      signed.Credential,
		CNonce:          freshNonce,
		CNonceExpiresIn: int(i.config.CNonceTTL.Seconds()),
	}
	// The response keeps announcing its format the draft 11 way, for every draft version:
	// the field carries the requested format (the signer's format when the request named none),
	// so for draft 13 offers it is overwritten with the requested format. Intentionally preserved behavior.
	response.Format = request.Format
	if response.Format == "" {
		response.Format = signed.Format
	}
	return response, nil
}

// mapCredentialRequest invokes the host-supplied mapper with the matched configurations,
// presented in the draft version of the session.
func (i *openidIssuer) mapCredentialRequest(ctx context.Context, session IssuanceSession, binding HolderBinding,
	request openid4vci.CredentialRequest, matched []MatchedConfiguration) (SignOptions, error) {
	configurations := make(map[string]openid4vci.CredentialConfiguration, len(matched))
	ids := make([]string, 0, len(matched))
	for _, match := range matched {
		configurations[match.ID] = match.Configuration
		ids = append(ids, match.ID)
	}
	input := CredentialRequestMapperInput{
		Session:                           session,
		HolderBinding:                     binding,
		CredentialOffer:                   session.CredentialOfferPayload,
		CredentialRequest:                 request,
		CredentialConfigurationsSupported: configurations,
		CredentialConfigurationIDs:        ids,
	}
	if session.Version == openid4vci.SpecVersionDraft11 {
		input.CredentialsSupported = openid4vci.ConfigurationsToDraft11(configurations)
	}
	signOptions, err := i.mapper.Map(ctx, input)
	if err != nil {
		return nil, serverError(fmt.Errorf("credential request mapper failed: %w", err))
	}
	if signOptions == nil {
		return nil, serverError(errors.New("credential request mapper returned no signing options"))
	}
	return signOptions, nil
}

// checkFormatAgreement enforces that the mapper's output format agrees with the request.
// Requests that reference the credential by identifier carry no format to agree with.
func checkFormatAgreement(signOptions SignOptions, request openid4vci.CredentialRequest) error {
	if request.Format == "" {
		return nil
	}
	switch options := signOptions.(type) {
	case JWTVCSignOptions, LDPVCSignOptions:
		if request.Format.IsW3C() {
			return nil
		}
	case SDJWTVCSignOptions:
		if request.Format == openid4vci.SDJWTVCFormat && options.Vct() == request.Vct {
			return nil
		}
	case MSOMDocSignOptions:
		if request.Format == openid4vci.MSOMDocFormat && options.DocType == request.DocType {
			return nil
		}
	}
	return openid4vci.Error{
		Err:        fmt.Errorf("%w: %s options for %s request", openid4vci.ErrFormatMismatch, signOptions.Format(), request.Format),
		Code:       openid4vci.UnsupportedCredentialFormat,
		StatusCode: http.StatusBadRequest,
	}
}

// failSession moves the session to the Error state and returns the corresponding server error.
func (i *openidIssuer) failSession(ctx context.Context, sessionID string, cause error) error {
	session, err := i.store.FindSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	session.State = SessionStateError
	session.ErrorMessage = cause.Error()
	if err := i.store.UpdateSession(ctx, *session); err != nil {
		log.Logger().WithError(err).
			WithField(core.LogFieldSessionID, sessionID).
			Error("Failed to persist session error state")
	}
	return serverError(cause)
}

func serverError(err error) error {
	return openid4vci.Error{
		Err:        err,
		Code:       openid4vci.ServerError,
		StatusCode: http.StatusInternalServerError,
	}
}

func errorCode(err error) string {
	var protocolError openid4vci.Error
	if errors.As(err, &protocolError) {
		return string(protocolError.Code)
	}
	return string(openid4vci.ServerError)
}
