package handler

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/zenithbooks/zenithbooks/internal/middleware"
	"github.com/zenithbooks/zenithbooks/internal/model"
	"github.com/zenithbooks/zenithbooks/internal/repository"
	"github.com/zenithbooks/zenithbooks/internal/sharecode"
)

// call runs h against a JSON request.  uid 0 leaves the request
// unauthenticated.
func call(h echo.HandlerFunc, method, target, body string, uid uint64, params ...string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != 0 {
		c.Set(middleware.CtxUserID, uid)
		c.Set(middleware.CtxRole, model.RoleUser)
	}
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return rec, h(c)
}

func withGrant(h echo.HandlerFunc, g sharecode.Grant) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(middleware.CtxGrant, g)
		return h(c)
	}
}

type fakeUsers struct {
	byEmail map[string]model.User
	nextID  uint64
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]model.User{}, nextID: 1} }

func (f *fakeUsers) Create(_ context.Context, email, hash, role string) (uint64, error) {
	if _, ok := f.byEmail[email]; ok {
		return 0, repository.ErrEmailExists
	}
	id := f.nextID
	f.nextID++
	f.byEmail[email] = model.User{ID: id, Email: email, PasswordHash: hash, Role: role, IsActive: true}
	return id, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

type fakeTokens struct {
	users   map[string]uint64
	revoked map[string]bool
	allFor  []uint64
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{users: map[string]uint64{}, revoked: map[string]bool{}}
}

func (f *fakeTokens) StoreRefresh(_ context.Context, uid uint64, hash string, _ time.Time) error {
	f.users[hash] = uid
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string, _ time.Time) (uint64, error) {
	uid, ok := f.users[hash]
	if !ok || f.revoked[hash] {
		return 0, repository.ErrNotFound
	}
	return uid, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.revoked[hash] = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, uid uint64) error {
	f.allFor = append(f.allFor, uid)
	return nil
}

type fakeCodes struct {
	codes     map[string]model.ShareCode
	created   sharecode.CreateInput
	createErr error
	revokeErr error
	revoked   []string
}

func (f *fakeCodes) Create(_ context.Context, in sharecode.CreateInput) (model.ShareCode, string, error) {
	f.created = in
	if f.createErr != nil {
		return model.ShareCode{}, "", f.createErr
	}
	now := time.Now().UTC()
	sc := model.ShareCode{ID: "sc-new", OwnerID: in.OwnerID, CodeName: in.CodeName, Categories: in.Categories,
		CreatedAt: now, ExpiresAt: now.Add(120 * time.Hour), IsActive: true, CodeHash: "hash"}
	return sc, "ABCDEFGHJKMN", nil
}

func (f *fakeCodes) List(_ context.Context, owner uint64) ([]model.ShareCode, error) {
	var out []model.ShareCode
	for _, sc := range f.codes {
		if sc.OwnerID == owner {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeCodes) Get(_ context.Context, owner uint64, id string) (model.ShareCode, error) {
	sc, ok := f.codes[id]
	if !ok {
		return model.ShareCode{}, repository.ErrNotFound
	}
	if sc.OwnerID != owner {
		return model.ShareCode{}, repository.ErrForbidden
	}
	return sc, nil
}

func (f *fakeCodes) Update(ctx context.Context, owner uint64, id string, in sharecode.UpdateInput) (model.ShareCode, error) {
	sc, err := f.Get(ctx, owner, id)
	if err != nil {
		return sc, err
	}
	if in.CodeName != nil {
		sc.CodeName = *in.CodeName
	}
	if in.Categories != nil {
		sc.Categories = in.Categories
	}
	f.codes[id] = sc
	return sc, nil
}

func (f *fakeCodes) Deactivate(ctx context.Context, owner uint64, id string) error {
	sc, err := f.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	sc.IsActive = false
	f.codes[id] = sc
	return nil
}

func (f *fakeCodes) Revoke(ctx context.Context, owner uint64, id string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	if _, err := f.Get(ctx, owner, id); err != nil {
		return err
	}
	delete(f.codes, id)
	f.revoked = append(f.revoked, id)
	return nil
}

type fakeLogs struct{ logs []model.AccessLog }

func (f *fakeLogs) ListByShareCode(_ context.Context, id string) ([]model.AccessLog, error) {
	var out []model.AccessLog
	for _, l := range f.logs {
		if l.ShareCodeID == id {
			out = append(out, l)
		}
	}
	return out, nil
}

type recorded struct {
	shareCodeID, documentID string
	action                  model.AccessAction
	ip                      string
}

type fakeAccess struct {
	grant       sharecode.Grant
	validateErr error
	caller      string
	docs        []model.Document
	records     []recorded
}

func (f *fakeAccess) Validate(_ context.Context, caller, raw string) (sharecode.Grant, error) {
	f.caller = caller
	if f.validateErr != nil {
		return sharecode.Grant{}, f.validateErr
	}
	return f.grant, nil
}

func (f *fakeAccess) ListAccessibleDocuments(_ context.Context, g sharecode.Grant) ([]model.Document, error) {
	var out []model.Document
	for _, d := range f.docs {
		for _, c := range g.Categories {
			if d.OwnerID == g.OwnerID && d.Category == c {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (f *fakeAccess) AccessibleDocument(ctx context.Context, g sharecode.Grant, id string) (model.Document, error) {
	docs, _ := f.ListAccessibleDocuments(ctx, g)
	for _, d := range docs {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Document{}, sharecode.ErrDocumentNotFound
}

func (f *fakeAccess) RecordAccess(_ context.Context, scID, docID string, action model.AccessAction, ip string) {
	f.records = append(f.records, recorded{scID, docID, action, ip})
}

type fakeVersions map[string]model.DocumentVersion

func (f fakeVersions) LatestVersion(_ context.Context, id string) (model.DocumentVersion, error) {
	v, ok := f[id]
	if !ok {
		return model.DocumentVersion{}, repository.ErrNotFound
	}
	return v, nil
}

type fakeSigner struct {
	keys []string
	err  error
}

func (f *fakeSigner) PutURL(_ context.Context, key string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.keys = append(f.keys, key)
	return "https://s3.test/put/" + key, time.Now().Add(15 * time.Minute), nil
}

func (f *fakeSigner) GetURL(_ context.Context, key, fileName string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.keys = append(f.keys, key)
	return "https://s3.test/get/" + key + "?name=" + fileName, time.Now().Add(15 * time.Minute), nil
}

type fakeDocs struct {
	docs    map[string]model.Document
	version map[string]int
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: map[string]model.Document{}, version: map[string]int{}}
}

func (f *fakeDocs) Upsert(_ context.Context, owner uint64, category, fileName string, size int64,
	newID string, keyFor func(string, int) string, now time.Time) (model.Document, model.DocumentVersion, error) {
	k := category + "/" + fileName
	d, ok := f.docs[k]
	if !ok {
		d = model.Document{ID: newID, OwnerID: owner, Category: category, FileName: fileName, CreatedAt: now}
	}
	d.Version++
	d.FileSize = size
	d.UpdatedAt = now
	f.docs[k] = d
	return d, model.DocumentVersion{DocumentID: d.ID, Version: d.Version, StorageKey: keyFor(d.ID, d.Version), FileSize: size}, nil
}

func (f *fakeDocs) ListByOwner(_ context.Context, owner uint64) ([]model.Document, error) {
	out := []model.Document{}
	for _, d := range f.docs {
		if d.OwnerID == owner {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeVouchers struct {
	stored   []model.JournalVoucher
	from, to time.Time
	err      error
}

func (f *fakeVouchers) Create(_ context.Context, v model.JournalVoucher) error {
	f.stored = append(f.stored, v)
	return nil
}

func (f *fakeVouchers) ListByOwner(_ context.Context, owner uint64, from, to time.Time) ([]model.JournalVoucher, error) {
	f.from, f.to = from, to
	if f.err != nil {
		return nil, f.err
	}
	var out []model.JournalVoucher
	for _, v := range f.stored {
		if v.OwnerID == owner {
			out = append(out, v)
		}
	}
	return out, nil
}

type fakeAccounts struct {
	accounts []model.Account
	parties  map[repository.PartyKind][]model.Party
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{parties: map[repository.PartyKind][]model.Party{}}
}

func (f *fakeAccounts) CreateAccount(_ context.Context, _ uint64, a model.Account) error {
	for _, x := range f.accounts {
		if x.Code == a.Code {
			return repository.ErrConflict
		}
	}
	f.accounts = append(f.accounts, a)
	return nil
}

func (f *fakeAccounts) ListAccounts(context.Context, uint64) ([]model.Account, error) {
	return f.accounts, nil
}

func (f *fakeAccounts) CreateParty(_ context.Context, kind repository.PartyKind, p model.Party) error {
	f.parties[kind] = append(f.parties[kind], p)
	return nil
}

func (f *fakeAccounts) ListParties(_ context.Context, kind repository.PartyKind, _ uint64) ([]model.Party, error) {
	return f.parties[kind], nil
}

var errBoom = errors.New("boom")
