package model

import "time"

// Document is a file stored in an owner's vault.  The bytes live in object
// storage; each upload of the same file adds a DocumentVersion.
type Document struct {
	ID        string    // documents.id
	OwnerID   uint64    // documents.owner_id
	Category  string    // documents.category
	FileName  string    // documents.file_name
	FileSize  int64     // documents.file_size (latest version)
	Version   int       // documents.current_version
	CreatedAt time.Time // documents.created_at
	UpdatedAt time.Time // documents.updated_at
}

// DocumentVersion records one uploaded revision of a document.
type DocumentVersion struct {
	DocumentID string    // document_versions.document_id
	Version    int       // document_versions.version
	StorageKey string    // document_versions.storage_key
	FileSize   int64     // document_versions.file_size
	CreatedAt  time.Time // document_versions.created_at
}
