package model

import "time"

// KVEntry is one row of the key-value store. Value always holds JSON bytes;
// the schema puts no structure on them beyond that.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     []byte    `gorm:"type:blob;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// BlobRecord is a key-addressed binary object (audio or image).
// Deletion is explicit; a key must be deleted before it is reused.
type BlobRecord struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Name      string    `gorm:"size:512" json:"name"`
	MIMEType  string    `gorm:"size:128" json:"mime_type"`
	Size      int64     `gorm:"not null" json:"size"`
	Data      []byte    `gorm:"type:blob;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (BlobRecord) TableName() string { return "blob_records" }
