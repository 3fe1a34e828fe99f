package model

import "time"

// ShareCode grants a third party read access to a subset of one owner's
// vault documents.  Only hashes of the secret are stored; the raw secret is
// shown to the owner once at creation.
//
// Fields:
//
//	ID          – opaque identifier (uuid).
//	OwnerID     – user that created the code and owns every document it exposes.
//	CodeName    – human label, e.g. "Housing Loan - Bank X".
//	Description – optional free text.
//	CodeHash    – SHA-256 hex of secret + ":" + owner id.
//	Categories  – document categories the code grants access to.
//	CreatedAt   – creation time (UTC).
//	ExpiresAt   – CreatedAt plus the configured expiry window.
//	IsActive    – false once the owner deactivates the code.
//	AccessCount – number of successful validations.
type ShareCode struct {
	ID          string    // share_codes.id
	OwnerID     uint64    // share_codes.owner_id
	CodeName    string    // share_codes.code_name
	Description string    // share_codes.description
	CodeHash    string    // share_codes.code_hash
	Categories  []string  // share_codes.categories (JSON array)
	CreatedAt   time.Time // share_codes.created_at
	ExpiresAt   time.Time // share_codes.expires_at
	IsActive    bool      // share_codes.is_active
	AccessCount uint64    // share_codes.access_count
}

// Expired reports whether the code is past its expiry at now.  A code is
// still valid at exactly ExpiresAt.
func (s ShareCode) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// Usable reports whether the code may still grant access at now.
func (s ShareCode) Usable(now time.Time) bool { return s.IsActive && !s.Expired(now) }

// HasCategory reports whether category is within the code's scope.
func (s ShareCode) HasCategory(category string) bool {
	for _, c := range s.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ShareCodeIndexEntry is a row of share_code_index.  LookupHash is the
// SHA-256 of the raw secret alone; it lets validation find candidate codes
// without knowing the owner.  Several rows may share a LookupHash.
type ShareCodeIndexEntry struct {
	LookupHash  string // share_code_index.lookup_hash
	OwnerID     uint64 // share_code_index.owner_id
	ShareCodeID string // share_code_index.share_code_id
}

// AccessAction is what a grant holder did with a document.
type AccessAction string

const (
	AccessView     AccessAction = "view"
	AccessDownload AccessAction = "download"
)

// Valid reports whether a is a known action.
func (a AccessAction) Valid() bool { return a == AccessView || a == AccessDownload }

// AccessLog is one immutable entry in access_logs.
type AccessLog struct {
	ID          uint64       // access_logs.id
	ShareCodeID string       // access_logs.share_code_id
	DocumentID  string       // access_logs.document_id (empty when not document-specific)
	Action      AccessAction // access_logs.action
	IP          string       // access_logs.ip
	AccessedAt  time.Time    // access_logs.accessed_at
}
