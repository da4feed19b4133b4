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
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jakubkoci/credo-ts/issuer/log"
	"github.com/nuts-foundation/go-stoabs"
)

// ErrNotFound is returned when the requested issuer or session does not exist.
var ErrNotFound = errors.New("not found")

// ErrAmbiguousSession is returned when a single-row session query matches more than one session.
var ErrAmbiguousSession = errors.New("query matched multiple issuance sessions")

// ErrAlreadyExists is returned when a write conflicts with a uniqueness constraint,
// e.g. a second session for the same credential offer URI or a reused live c_nonce.
var ErrAlreadyExists = errors.New("record already exists")

// SessionQuery filters sessions for single-row lookups. Zero-valued fields are ignored.
type SessionQuery struct {
	IssuerID           string
	CredentialOfferURI string
	CNonce             string
	PreAuthorizedCode  string
}

func (q SessionQuery) matches(session IssuanceSession) bool {
	if q.IssuerID != "" && session.IssuerID != q.IssuerID {
		return false
	}
	if q.CredentialOfferURI != "" && session.CredentialOfferURI != q.CredentialOfferURI {
		return false
	}
	if q.CNonce != "" && session.CNonce != q.CNonce {
		return false
	}
	if q.PreAuthorizedCode != "" && session.PreAuthorizedCode != q.PreAuthorizedCode {
		return false
	}
	return true
}

// Store persists issuer records and issuance sessions. It is the only source of truth
// for session state: callers must re-read a session before transitioning it.
type Store interface {
	// StoreIssuer saves a new issuer record. It fails if the issuer already exists.
	StoreIssuer(ctx context.Context, record IssuerRecord) error
	// FindIssuerByID returns the issuer record, or ErrNotFound.
	FindIssuerByID(ctx context.Context, issuerID string) (*IssuerRecord, error)
	// UpdateIssuer overwrites an existing issuer record. It fails with ErrNotFound if absent.
	UpdateIssuer(ctx context.Context, record IssuerRecord) error
	// StoreSession saves a new issuance session. It enforces uniqueness of the session ID
	// and of (issuer_id, credential_offer_uri).
	StoreSession(ctx context.Context, session IssuanceSession) error
	// FindSessionByID returns the session, or ErrNotFound.
	FindSessionByID(ctx context.Context, id string) (*IssuanceSession, error)
	// FindSession returns the single session matching the query.
	// It returns ErrNotFound on zero matches and ErrAmbiguousSession on more than one.
	FindSession(ctx context.Context, query SessionQuery) (*IssuanceSession, error)
	// UpdateSession overwrites an existing session, last-writer-wins by ID.
	// When the c_nonce changed it re-indexes the nonce reference, enforcing that
	// a live nonce belongs to exactly one session.
	UpdateSession(ctx context.Context, session IssuanceSession) error
	// Close signals the store to close any owned resources.
	Close()
}

var _ Store = (*stoabsStore)(nil)

const issuersShelf = "issuers"
const sessionsShelf = "sessions"
const referencesShelf = "refs"

const offerURIRefType = "offeruri"
const cNonceRefType = "c_nonce"

const pruneInterval = 10 * time.Minute

type stoabsStore struct {
	store    stoabs.KVStore
	clock    clock.Clock
	routines *sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewStoabsStore creates a Store backed by a stoabs.KVStore. Expired sessions and
// references are pruned in the background until Close is called.
func NewStoabsStore(kv stoabs.KVStore) Store {
	return newStoabsStore(kv, clock.New())
}

func newStoabsStore(kv stoabs.KVStore, cl clock.Clock) Store {
	result := &stoabsStore{
		store:    kv,
		clock:    cl,
		routines: &sync.WaitGroup{},
	}
	result.startPruning()
	return result
}

type referenceValue struct {
	SessionID string    `json:"session_id"`
	IssuerID  string    `json:"issuer_id"`
	Expiry    time.Time `json:"exp"`
}

func (s *stoabsStore) StoreIssuer(ctx context.Context, record IssuerRecord) error {
	if record.IssuerID == "" {
		return errors.New("invalid issuer ID")
	}
	return s.store.WriteShelf(ctx, issuersShelf, func(writer stoabs.Writer) error {
		_, err := writer.Get(stoabs.BytesKey(record.IssuerID))
		if err == nil {
			return fmt.Errorf("%w: issuer %s", ErrAlreadyExists, record.IssuerID)
		}
		if !errors.Is(err, stoabs.ErrKeyNotFound) {
			return err
		}
		data, _ := json.Marshal(record)
		return writer.Put(stoabs.BytesKey(record.IssuerID), data)
	})
}

func (s *stoabsStore) FindIssuerByID(ctx context.Context, issuerID string) (*IssuerRecord, error) {
	var result *IssuerRecord
	err := s.store.ReadShelf(ctx, issuersShelf, func(reader stoabs.Reader) error {
		data, err := reader.Get(stoabs.BytesKey(issuerID))
		if errors.Is(err, stoabs.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		var record IssuerRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("invalid stored issuer record: %w", err)
		}
		result = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: issuer %s", ErrNotFound, issuerID)
	}
	return result, nil
}

func (s *stoabsStore) UpdateIssuer(ctx context.Context, record IssuerRecord) error {
	return s.store.WriteShelf(ctx, issuersShelf, func(writer stoabs.Writer) error {
		_, err := writer.Get(stoabs.BytesKey(record.IssuerID))
		if errors.Is(err, stoabs.ErrKeyNotFound) {
			return fmt.Errorf("%w: issuer %s", ErrNotFound, record.IssuerID)
		}
		if err != nil {
			return err
		}
		data, _ := json.Marshal(record)
		return writer.Put(stoabs.BytesKey(record.IssuerID), data)
	})
}

func (s *stoabsStore) StoreSession(ctx context.Context, session IssuanceSession) error {
	if session.ID == "" {
		return errors.New("invalid session ID")
	}
	// The offer URI must be unique per issuer. Claim the reference first;
	// UUID-based URIs make collisions here a bug rather than an expected event.
	err := s.putReference(ctx, offerURIRefType, refValue(session.IssuerID, session.CredentialOfferURI), referenceValue{
		SessionID: session.ID,
		IssuerID:  session.IssuerID,
		Expiry:    session.Expiry,
	})
	if err != nil {
		return fmt.Errorf("unable to claim credential offer URI: %w", err)
	}
	return s.store.WriteShelf(ctx, sessionsShelf, func(writer stoabs.Writer) error {
		_, err := writer.Get(stoabs.BytesKey(session.ID))
		if err == nil {
			return fmt.Errorf("%w: session %s", ErrAlreadyExists, session.ID)
		}
		if !errors.Is(err, stoabs.ErrKeyNotFound) {
			return err
		}
		data, _ := json.Marshal(session)
		return writer.Put(stoabs.BytesKey(session.ID), data)
	})
}

func (s *stoabsStore) FindSessionByID(ctx context.Context, id string) (*IssuanceSession, error) {
	var result *IssuanceSession
	err := s.store.ReadShelf(ctx, sessionsShelf, func(reader stoabs.Reader) error {
		data, err := reader.Get(stoabs.BytesKey(id))
		if errors.Is(err, stoabs.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		session, err := parseSession(data)
		if err != nil {
			return err
		}
		result = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	return result, nil
}

func (s *stoabsStore) FindSession(ctx context.Context, query SessionQuery) (*IssuanceSession, error) {
	var matches []IssuanceSession
	err := s.store.ReadShelf(ctx, sessionsShelf, func(reader stoabs.Reader) error {
		return reader.Iterate(func(_ stoabs.Key, data []byte) error {
			session, err := parseSession(data)
			if err != nil {
				return err
			}
			if query.matches(*session) {
				matches = append(matches, *session)
			}
			return nil
		}, stoabs.BytesKey{})
	})
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		return &matches[0], nil
	default:
		return nil, ErrAmbiguousSession
	}
}

func (s *stoabsStore) UpdateSession(ctx context.Context, session IssuanceSession) error {
	current, err := s.FindSessionByID(ctx, session.ID)
	if err != nil {
		return err
	}
	if session.CNonce != "" && session.CNonce != current.CNonce {
		// A live c_nonce identifies exactly one session. The reference expires with the nonce,
		// so an expired nonce value may be reused.
		err = s.putReference(ctx, cNonceRefType, session.CNonce, referenceValue{
			SessionID: session.ID,
			IssuerID:  session.IssuerID,
			Expiry:    session.CNonceExpiresAt,
		})
		if err != nil {
			return fmt.Errorf("unable to claim c_nonce: %w", err)
		}
		if current.CNonce != "" {
			if err := s.deleteReference(ctx, cNonceRefType, current.CNonce); err != nil {
				return err
			}
		}
	}
	return s.store.WriteShelf(ctx, sessionsShelf, func(writer stoabs.Writer) error {
		data, _ := json.Marshal(session)
		return writer.Put(stoabs.BytesKey(session.ID), data)
	})
}

func (s *stoabsStore) Close() {
	s.cancel()
	s.routines.Wait()
}

// putReference claims a unique reference. A reference that exists but has expired is overwritten.
func (s *stoabsStore) putReference(ctx context.Context, refType string, reference string, value referenceValue) error {
	if len(reference) == 0 {
		return errors.New("invalid reference")
	}
	return s.store.WriteShelf(ctx, referencesShelf, func(writer stoabs.Writer) error {
		existing, err := writer.Get(refKey(refType, reference))
		if err == nil {
			var existingValue referenceValue
			if err := json.Unmarshal(existing, &existingValue); err != nil {
				return fmt.Errorf("invalid stored reference: %w", err)
			}
			if existingValue.Expiry.After(s.clock.Now()) && existingValue.SessionID != value.SessionID {
				return ErrAlreadyExists
			}
		} else if !errors.Is(err, stoabs.ErrKeyNotFound) {
			return err
		}
		data, _ := json.Marshal(value)
		return writer.Put(refKey(refType, reference), data)
	})
}

func (s *stoabsStore) deleteReference(ctx context.Context, refType string, reference string) error {
	return s.store.WriteShelf(ctx, referencesShelf, func(writer stoabs.Writer) error {
		return writer.Delete(refKey(refType, reference))
	})
}

func (s *stoabsStore) startPruning() {
	s.ctx, s.cancel = context.WithCancel(context.Background())
	ticker := s.clock.Ticker(pruneInterval)
	s.routines.Add(1)
	go func() {
		defer s.routines.Done()
		for {
			select {
			case <-s.ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				sessionsPruned, refsPruned, err := s.prune(context.Background(), s.clock.Now())
				if err != nil {
					log.Logger().WithError(err).Error("Failed to prune issuance sessions/references")
				}
				if sessionsPruned > 0 || refsPruned > 0 {
					log.Logger().Debugf("Pruned %d expired issuance sessions and %d expired refs", sessionsPruned, refsPruned)
				}
			}
		}
	}()
}

func (s *stoabsStore) prune(ctx context.Context, moment time.Time) (int, int, error) {
	var sessionCount int
	var refCount int
	err := s.store.WriteShelf(ctx, referencesShelf, func(writer stoabs.Writer) error {
		return writer.Iterate(func(key stoabs.Key, value []byte) error {
			var ref referenceValue
			if err := json.Unmarshal(value, &ref); err == nil && ref.Expiry.Before(moment) {
				refCount++
				return writer.Delete(key)
			}
			return nil
		}, stoabs.BytesKey{})
	})
	if err != nil {
		return sessionCount, refCount, err
	}
	err = s.store.WriteShelf(ctx, sessionsShelf, func(writer stoabs.Writer) error {
		return writer.Iterate(func(key stoabs.Key, value []byte) error {
			var session IssuanceSession
			if err := json.Unmarshal(value, &session); err == nil && session.Expiry.Before(moment) {
				sessionCount++
				return writer.Delete(key)
			}
			return nil
		}, stoabs.BytesKey{})
	})
	return sessionCount, refCount, err
}

func parseSession(data []byte) (*IssuanceSession, error) {
	var session IssuanceSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("invalid stored issuance session: %w", err)
	}
	return &session, nil
}

func refKey(refType string, reference string) stoabs.BytesKey {
	return stoabs.BytesKey(refType + ":" + reference)
}

func refValue(issuerID string, value string) string {
	return issuerID + "|" + value
}
