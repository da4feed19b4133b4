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
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/jakubkoci/credo-ts/core"
	"github.com/jakubkoci/credo-ts/issuer/log"
	"github.com/jakubkoci/credo-ts/openid4vci"
	"github.com/prometheus/client_golang/prometheus"
)

// secretSizeBits is the size of generated random secrets (pre-authorized codes, nonces) in bits.
const secretSizeBits = 128

// Config tunes the issuance engine.
type Config struct {
	// OfferPath is the path under the issuer URL where credential offer URIs dereference.
	OfferPath string
	// CNonceTTL is the time-to-live of a c_nonce handed out with an access token.
	CNonceTTL time.Duration
	// SessionTTL is the time-to-live of an issuance session.
	SessionTTL time.Duration
}

// DefaultConfig returns the configuration used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		OfferPath:  "openid4vci/offers",
		CNonceTTL:  15 * time.Minute,
		SessionTTL: time.Hour,
	}
}

var _ OpenIDIssuer = (*openidIssuer)(nil)

type openidIssuer struct {
	config       Config
	store        Store
	didResolver  DIDResolver
	mapper       CredentialRequestMapper
	w3cService   W3CCredentialService
	sdjwtService SDJWTVCService
	mdocService  MDocService
	jwsVerifier  JWSVerifier
	registry     *ActorRegistry
	metrics      *metricSet
	clock        clock.Clock
}

// Option customizes an OpenIDIssuer created with New.
type Option func(*openidIssuer)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(cl clock.Clock) Option {
	return func(i *openidIssuer) {
		i.clock = cl
	}
}

// WithActorRegistry attaches a registry mapping context correlation IDs to issuer IDs.
func WithActorRegistry(registry *ActorRegistry) Option {
	return func(i *openidIssuer) {
		i.registry = registry
	}
}

// WithMetrics registers issuance metrics with the given registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(i *openidIssuer) {
		i.metrics = newMetricSet(registerer)
	}
}

// WithJWSVerifier replaces the proof JWT verifier.
func WithJWSVerifier(verifier JWSVerifier) Option {
	return func(i *openidIssuer) {
		i.jwsVerifier = verifier
	}
}

// New creates an OpenIDIssuer. The mapper and the three format services are host-supplied;
// formats without a service fail at request time with a server error.
func New(config Config, store Store, didResolver DIDResolver, mapper CredentialRequestMapper,
	w3cService W3CCredentialService, sdjwtService SDJWTVCService, mdocService MDocService, options ...Option) OpenIDIssuer {
	defaults := DefaultConfig()
	if config.OfferPath == "" {
		config.OfferPath = defaults.OfferPath
	}
	if config.CNonceTTL == 0 {
		config.CNonceTTL = defaults.CNonceTTL
	}
	if config.SessionTTL == 0 {
		config.SessionTTL = defaults.SessionTTL
	}
	result := &openidIssuer{
		config:       config,
		store:        store,
		didResolver:  didResolver,
		mapper:       mapper,
		w3cService:   w3cService,
		sdjwtService: sdjwtService,
		mdocService:  mdocService,
		clock:        clock.New(),
	}
	for _, option := range options {
		option(result)
	}
	if result.jwsVerifier == nil {
		result.jwsVerifier = jwxVerifier{clock: result.clock}
	}
	return result
}

func (i *openidIssuer) CreateOffer(ctx context.Context, issuerID string, offeredCredentials []string,
	preAuthCfg PreAuthorizedCodeConfig, metadata map[string]interface{}, version openid4vci.SpecVersion) (*IssuanceSession, string, error) {
	record, err := i.store.FindIssuerByID(ctx, issuerID)
	if err != nil {
		return nil, "", err
	}
	if _, err := core.ParseIssuerURL(record.IssuerID); err != nil {
		return nil, "", fmt.Errorf("invalid issuer URL (issuer=%s): %w", issuerID, err)
	}
	if len(offeredCredentials) == 0 {
		return nil, "", invalidOffer("no credentials offered")
	}
	supported := record.Configurations()
	seen := make(map[string]bool, len(offeredCredentials))
	for _, id := range offeredCredentials {
		if seen[id] {
			return nil, "", invalidOffer(fmt.Sprintf("duplicate credential configuration in offer: %s", id))
		}
		seen[id] = true
		if _, ok := supported[id]; !ok {
			return nil, "", invalidOffer(fmt.Sprintf("credential configuration not supported by issuer: %s", id))
		}
	}
	grant, userPinRequired, txCode, err := normalizePreAuthorizedCode(preAuthCfg)
	if err != nil {
		return nil, "", err
	}

	offerURI := core.JoinURLPaths(record.IssuerID, i.config.OfferPath, uuid.NewString())
	offer := openid4vci.CredentialOffer{
		CredentialIssuer:           record.IssuerID,
		CredentialConfigurationIDs: offeredCredentials,
		Grants:                     openid4vci.Grants{PreAuthorizedCode: grant},
	}
	if version == openid4vci.SpecVersionDraft11 {
		offer = openid4vci.OfferToDraft11(offer)
	}

	now := i.clock.Now()
	session := IssuanceSession{
		ID:                     uuid.NewString(),
		IssuerID:               record.IssuerID,
		State:                  SessionStateOfferCreated,
		Version:                version,
		CredentialOfferURI:     offerURI,
		CredentialOfferPayload: offer,
		PreAuthorizedCode:      grant.PreAuthorizedCode,
		UserPinRequired:        userPinRequired,
		TxCode:                 txCode,
		IssuanceMetadata:       metadata,
		Expiry:                 now.Add(i.config.SessionTTL),
	}
	if err := i.store.StoreSession(ctx, session); err != nil {
		return nil, "", fmt.Errorf("unable to store issuance session: %w", err)
	}
	if i.metrics != nil {
		i.metrics.offersCreated.Inc()
	}
	log.Logger().
		WithField(core.LogFieldIssuerID, record.IssuerID).
		WithField(core.LogFieldSessionID, session.ID).
		WithField(core.LogFieldOfferURI, offerURI).
		Info("Created credential offer")
	return &session, openid4vci.CredentialOfferDeepLink(offerURI), nil
}

func (i *openidIssuer) GetOfferPayload(ctx context.Context, issuerID string, offerURI string) (*openid4vci.CredentialOffer, error) {
	session, err := i.store.FindSession(ctx, SessionQuery{IssuerID: issuerID, CredentialOfferURI: offerURI})
	if err != nil {
		return nil, err
	}
	// First retrieval advances the session; later protocol states are never regressed.
	if session.State == SessionStateOfferCreated {
		session.State = SessionStateOfferURIRetrieved
		if err := i.store.UpdateSession(ctx, *session); err != nil {
			return nil, err
		}
	}
	offer := session.CredentialOfferPayload
	return &offer, nil
}

func (i *openidIssuer) RegisterAccessToken(ctx context.Context, issuerID string, preAuthorizedCode string) (string, time.Time, error) {
	session, err := i.store.FindSession(ctx, SessionQuery{IssuerID: issuerID, PreAuthorizedCode: preAuthorizedCode})
	if errors.Is(err, ErrNotFound) {
		return "", time.Time{}, openid4vci.Error{
			Err:        errors.New("unknown pre-authorized code"),
			Code:       openid4vci.InvalidGrant,
			StatusCode: http.StatusBadRequest,
		}
	}
	if err != nil {
		return "", time.Time{}, err
	}
	switch session.State {
	case SessionStateOfferCreated, SessionStateOfferURIRetrieved, SessionStateAccessTokenRequested:
	default:
		return "", time.Time{}, openid4vci.Error{
			Err:        fmt.Errorf("%w: %s", openid4vci.ErrInvalidState, session.State),
			Code:       openid4vci.InvalidGrant,
			StatusCode: http.StatusBadRequest,
		}
	}
	session.State = SessionStateAccessTokenRequested
	if err := i.store.UpdateSession(ctx, *session); err != nil {
		return "", time.Time{}, err
	}

	cNonce := generateSecret()
	expiresAt := i.clock.Now().Add(i.config.CNonceTTL)
	session.CNonce = cNonce
	session.CNonceExpiresAt = expiresAt
	session.State = SessionStateAccessTokenCreated
	if err := i.store.UpdateSession(ctx, *session); err != nil {
		return "", time.Time{}, err
	}
	return cNonce, expiresAt, nil
}

func (i *openidIssuer) RotateAccessTokenKey(ctx context.Context, issuerID string, fingerprint string) error {
	record, err := i.store.FindIssuerByID(ctx, issuerID)
	if err != nil {
		return err
	}
	record.AccessTokenPublicKeyFingerprint = fingerprint
	return i.store.UpdateIssuer(ctx, *record)
}

// normalizePreAuthorizedCode reconciles the two representations of the transaction code requirement:
// a tx_code descriptor implies a required user PIN and vice versa.
func normalizePreAuthorizedCode(cfg PreAuthorizedCodeConfig) (*openid4vci.PreAuthorizedCodeGrant, bool, *openid4vci.TxCode, error) {
	txCode := cfg.TxCode
	pinRequired := txCode != nil
	if cfg.UserPinRequired != nil {
		pinRequired = *cfg.UserPinRequired
	}
	if txCode != nil && cfg.UserPinRequired != nil && !*cfg.UserPinRequired {
		return nil, false, nil, invalidOffer("tx_code requires user_pin_required")
	}
	if pinRequired && txCode == nil {
		txCode = &openid4vci.TxCode{}
	}
	code := cfg.PreAuthorizedCode
	if code == "" {
		code = generateSecret()
	}
	grant := &openid4vci.PreAuthorizedCodeGrant{
		PreAuthorizedCode: code,
		TxCode:            txCode,
	}
	return grant, pinRequired, txCode, nil
}

func invalidOffer(reason string) error {
	return openid4vci.Error{
		Err:        fmt.Errorf("%w: %s", openid4vci.ErrInvalidOffer, reason),
		Code:       openid4vci.InvalidRequest,
		StatusCode: http.StatusBadRequest,
	}
}

func generateSecret() string {
	buf := make([]byte, secretSizeBits/8)
	_, err := rand.Read(buf)
	if err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
