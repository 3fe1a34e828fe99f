// Package sharecode issues, validates and revokes share codes: expiring,
// category-scoped secrets that give a third party read access to part of an
// owner's document vault.
package sharecode

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zenithbooks/zenithbooks/internal/config"
	"github.com/zenithbooks/zenithbooks/internal/logging"
	"github.com/zenithbooks/zenithbooks/internal/model"
)

// Store persists share codes together with their lookup index.  Create,
// Deactivate and Delete must change the record and the index atomically.
type Store interface {
	Create(ctx context.Context, sc model.ShareCode, lookupHash string) error
	ActiveLookupExists(ctx context.Context, lookupHash string, now time.Time) (bool, error)
	FindByLookupHash(ctx context.Context, lookupHash string) ([]model.ShareCode, error)
	IncrementAccess(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (model.ShareCode, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.ShareCode, error)
	Update(ctx context.Context, sc model.ShareCode) error
	Deactivate(ctx context.Context, ownerID uint64, id string) error
	Delete(ctx context.Context, ownerID uint64, id string) error
}

// DocumentStore is the read side of the document vault.
type DocumentStore interface {
	ListByOwnerAndCategories(ctx context.Context, ownerID uint64, categories []string) ([]model.Document, error)
	Get(ctx context.Context, id string) (model.Document, error)
}

// AttemptLimiter tracks failed validations per caller in shared storage.
type AttemptLimiter interface {
	Locked(ctx context.Context, caller string) (time.Duration, error)
	Fail(ctx context.Context, caller string) (time.Duration, error)
	Reset(ctx context.Context, caller string) error
}

// AccessPublisher ships access log entries to whatever persists them.
type AccessPublisher interface {
	PublishAccess(ctx context.Context, entry model.AccessLog) error
}

// Grant is the scope unlocked by a validated share code.
type Grant struct {
	ShareCodeID string    `json:"share_code_id"`
	OwnerID     uint64    `json:"owner_id"`
	Categories  []string  `json:"categories"`
	ExpiresAt   time.Time `json:"expires_at"`
}

const (
	revokeAttempts = 3
	generateTries  = 3
)

type Service struct {
	store     Store
	docs      DocumentStore
	limiter   AttemptLimiter
	publisher AccessPublisher
	cfg       config.VaultConfig
	log       zerolog.Logger
	now       func() time.Time
	backoff   time.Duration
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock used for expiry decisions.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithRetryBackoff sets the initial delay between revoke attempts.
func WithRetryBackoff(d time.Duration) Option { return func(s *Service) { s.backoff = d } }

func NewService(store Store, docs DocumentStore, limiter AttemptLimiter, publisher AccessPublisher,
	cfg config.VaultConfig, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		docs:      docs,
		limiter:   limiter,
		publisher: publisher,
		cfg:       cfg,
		log:       log.With().Str("component", "sharecode").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
		backoff:   100 * time.Millisecond,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateInput describes a new share code.  Secret may be empty, in which
// case one is generated.
type CreateInput struct {
	OwnerID     uint64
	CodeName    string
	Description string
	Secret      string
	Categories  []string
}

// Create stores a new active code and returns it with the raw secret.  The
// secret is not recoverable afterwards.
func (s *Service) Create(ctx context.Context, in CreateInput) (model.ShareCode, string, error) {
	name := strings.TrimSpace(in.CodeName)
	if name == "" {
		return model.ShareCode{}, "", ErrNameRequired
	}
	cats := cleanCategories(in.Categories)
	if len(cats) == 0 {
		return model.ShareCode{}, "", ErrNoCategories
	}
	now := s.now()

	secret, lookup, err := s.pickSecret(ctx, in.Secret, now)
	if err != nil {
		return model.ShareCode{}, "", err
	}

	sc := model.ShareCode{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		CodeName:    name,
		Description: strings.TrimSpace(in.Description),
		CodeHash:    CodeHash(secret, in.OwnerID),
		Categories:  cats,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.ShareCodeExpiry),
		IsActive:    true,
	}
	if err := s.store.Create(ctx, sc, lookup); err != nil {
		return model.ShareCode{}, "", fmt.Errorf("create share code: %w", err)
	}
	s.log.Info().Str("share_code_id", sc.ID).Uint64("owner_id", sc.OwnerID).
		Strs("categories", cats).Time("expires_at", sc.ExpiresAt).Msg("share code created")
	return sc, secret, nil
}

// pickSecret validates a supplied secret or generates a fresh one, and makes
// sure no active code already uses it.
func (s *Service) pickSecret(ctx context.Context, supplied string, now time.Time) (string, string, error) {
	if supplied != "" {
		secret := NormalizeSecret(supplied)
		if err := checkSecret(secret, s.cfg.MinSecretLength); err != nil {
			return "", "", err
		}
		lookup := LookupHash(secret)
		inUse, err := s.store.ActiveLookupExists(ctx, lookup, now)
		if err != nil {
			return "", "", fmt.Errorf("check share code: %w", err)
		}
		if inUse {
			return "", "", ErrSecretInUse
		}
		return secret, lookup, nil
	}
	for i := 0; i < generateTries; i++ {
		secret, err := GenerateSecret(s.cfg.MinSecretLength)
		if err != nil {
			return "", "", fmt.Errorf("generate share code: %w", err)
		}
		lookup := LookupHash(secret)
		inUse, err := s.store.ActiveLookupExists(ctx, lookup, now)
		if err != nil {
			return "", "", fmt.Errorf("check share code: %w", err)
		}
		if !inUse {
			return secret, lookup, nil
		}
	}
	return "", "", ErrSecretInUse
}

// Validate resolves a raw secret to a grant.  caller identifies the client
// for lockout purposes (normally its IP).
func (s *Service) Validate(ctx context.Context, caller, rawSecret string) (Grant, error) {
	if wait, err := s.limiter.Locked(ctx, caller); err != nil {
		s.log.Error().Err(err).Str("caller", caller).Msg("lockout check failed")
	} else if wait > 0 {
		return Grant{}, &RateLimitedError{RetryAfter: wait}
	}

	secret := NormalizeSecret(rawSecret)
	if checkSecret(secret, s.cfg.MinSecretLength) != nil {
		return Grant{}, s.fail(ctx, caller)
	}

	candidates, err := s.store.FindByLookupHash(ctx, LookupHash(secret))
	if err != nil {
		return Grant{}, fmt.Errorf("find share code: %w", err)
	}

	now := s.now()
	var matches []model.ShareCode
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		if subtle.ConstantTimeCompare([]byte(CodeHash(secret, c.OwnerID)), []byte(c.CodeHash)) != 1 {
			logging.Integrity(s.log).Str("share_code_id", c.ID).Msg("index entry does not verify against code hash")
			continue
		}
		if c.Usable(now) {
			matches = append(matches, c)
		}
	}

	switch len(matches) {
	case 0:
		return Grant{}, s.fail(ctx, caller)
	case 1:
	default:
		ids := make([]string, 0, len(matches))
		for _, m := range matches {
			ids = append(ids, m.ID)
		}
		logging.Integrity(s.log).Strs("share_code_ids", ids).Msg("share code collision")
		return Grant{}, ErrCollision
	}

	sc := matches[0]
	if err := s.store.IncrementAccess(ctx, sc.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Revoked since the lookup.
			return Grant{}, ErrNotFoundOrExpired
		}
		return Grant{}, fmt.Errorf("count share code access: %w", err)
	}
	if err := s.limiter.Reset(ctx, caller); err != nil {
		s.log.Warn().Err(err).Str("caller", caller).Msg("lockout reset failed")
	}
	return Grant{
		ShareCodeID: sc.ID,
		OwnerID:     sc.OwnerID,
		Categories:  sc.Categories,
		ExpiresAt:   sc.ExpiresAt,
	}, nil
}

// fail records a failed attempt and returns the error reported to the
// caller.  The attempt that trips the lockout still reports not-found.
func (s *Service) fail(ctx context.Context, caller string) error {
	if wait, err := s.limiter.Fail(ctx, caller); err != nil {
		s.log.Error().Err(err).Str("caller", caller).Msg("lockout update failed")
	} else if wait > 0 {
		s.log.Warn().Str("caller", caller).Dur("lockout", wait).Msg("share code lockout started")
	}
	return ErrNotFoundOrExpired
}

// CheckGrant confirms the code behind g can still be used and returns g
// narrowed to the code's current categories.  Requests made with a grant
// call this first so revocation and category changes take effect
// immediately.
func (s *Service) CheckGrant(ctx context.Context, g Grant) (Grant, error) {
	sc, err := s.store.Get(ctx, g.ShareCodeID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Grant{}, ErrNotFoundOrExpired
		}
		return Grant{}, fmt.Errorf("load share code: %w", err)
	}
	if sc.OwnerID != g.OwnerID || !sc.Usable(s.now()) {
		return Grant{}, ErrNotFoundOrExpired
	}
	cats := make([]string, 0, len(g.Categories))
	for _, c := range g.Categories {
		if sc.HasCategory(c) {
			cats = append(cats, c)
		}
	}
	g.Categories = cats
	return g, nil
}

// ListAccessibleDocuments returns the owner's documents in the granted
// categories.
func (s *Service) ListAccessibleDocuments(ctx context.Context, g Grant) ([]model.Document, error) {
	if len(g.Categories) == 0 {
		return []model.Document{}, nil
	}
	docs, err := s.docs.ListByOwnerAndCategories(ctx, g.OwnerID, g.Categories)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// AccessibleDocument returns one document if it falls inside the grant.
func (s *Service) AccessibleDocument(ctx context.Context, g Grant, documentID string) (model.Document, error) {
	doc, err := s.docs.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Document{}, ErrDocumentNotFound
		}
		return model.Document{}, fmt.Errorf("load document: %w", err)
	}
	if doc.OwnerID != g.OwnerID || !contains(g.Categories, doc.Category) {
		return model.Document{}, ErrDocumentNotFound
	}
	return doc, nil
}

// RecordAccess logs a view or download.  It is best effort: failures are
// logged and never reach the caller.
func (s *Service) RecordAccess(ctx context.Context, shareCodeID, documentID string, action model.AccessAction, ip string) {
	entry := model.AccessLog{
		ShareCodeID: shareCodeID,
		DocumentID:  documentID,
		Action:      action,
		IP:          ip,
		AccessedAt:  s.now(),
	}
	if err := s.publisher.PublishAccess(ctx, entry); err != nil {
		s.log.Warn().Err(err).Str("share_code_id", shareCodeID).Str("document_id", documentID).
			Str("action", string(action)).Msg("access log dropped")
	}
}

// List returns the owner's codes, newest first.
func (s *Service) List(ctx context.Context, ownerID uint64) ([]model.ShareCode, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Get returns one of the owner's codes.
func (s *Service) Get(ctx context.Context, ownerID uint64, id string) (model.ShareCode, error) {
	sc, err := s.store.Get(ctx, id)
	if err != nil {
		return model.ShareCode{}, err
	}
	if sc.OwnerID != ownerID {
		return model.ShareCode{}, ErrForbidden
	}
	return sc, nil
}

// UpdateInput carries the owner-editable fields; nil means unchanged.
type UpdateInput struct {
	CodeName    *string
	Description *string
	Categories  []string
}

// Update changes the label, description or categories of an owned code.
func (s *Service) Update(ctx context.Context, ownerID uint64, id string, in UpdateInput) (model.ShareCode, error) {
	sc, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return model.ShareCode{}, err
	}
	if in.CodeName != nil {
		name := strings.TrimSpace(*in.CodeName)
		if name == "" {
			return model.ShareCode{}, ErrNameRequired
		}
		sc.CodeName = name
	}
	if in.Description != nil {
		sc.Description = strings.TrimSpace(*in.Description)
	}
	if in.Categories != nil {
		cats := cleanCategories(in.Categories)
		if len(cats) == 0 {
			return model.ShareCode{}, ErrNoCategories
		}
		sc.Categories = cats
	}
	if err := s.store.Update(ctx, sc); err != nil {
		return model.ShareCode{}, fmt.Errorf("update share code: %w", err)
	}
	return sc, nil
}

// Deactivate switches a code off and drops its index entries.
func (s *Service) Deactivate(ctx context.Context, ownerID uint64, id string) error {
	if err := s.store.Deactivate(ctx, ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return err
		}
		logging.Integrity(s.log).Err(err).Str("share_code_id", id).Msg("share code deactivate failed")
		return fmt.Errorf("deactivate share code: %w", err)
	}
	s.log.Info().Str("share_code_id", id).Uint64("owner_id", ownerID).Msg("share code deactivated")
	return nil
}

// Revoke deletes a code and its index entries.  Transient store failures
// are retried; if every attempt fails an integrity alert is logged.
func (s *Service) Revoke(ctx context.Context, ownerID uint64, id string) error {
	var err error
	wait := s.backoff
retry:
	for attempt := 1; attempt <= revokeAttempts; attempt++ {
		err = s.store.Delete(ctx, ownerID, id)
		if err == nil {
			s.log.Info().Str("share_code_id", id).Uint64("owner_id", ownerID).Msg("share code revoked")
			return nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			return err
		}
		if attempt == revokeAttempts {
			break
		}
		s.log.Warn().Err(err).Int("attempt", attempt).Str("share_code_id", id).Msg("revoke failed, retrying")
		select {
		case <-ctx.Done():
			err = errors.Join(err, ctx.Err())
			break retry
		case <-time.After(wait):
			wait *= 2
		}
	}
	logging.Integrity(s.log).Err(err).Str("share_code_id", id).Uint64("owner_id", ownerID).
		Msg("share code revoke failed")
	return fmt.Errorf("revoke share code: %w", err)
}

func cleanCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
