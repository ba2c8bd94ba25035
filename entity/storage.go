package entity

import "time"

// FolderContentType marks a zero-byte object as a directory placeholder.
const FolderContentType = "application/x-directory"

// StoredObject is a live projection of a backend object. It is never
// persisted locally; listings re-derive it from the object store.
type StoredObject struct {
	Key          string    `json:"object_key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag"`
	StorageClass string    `json:"storage_class"`
	ContentType  string    `json:"content_type,omitempty"`
}

// ObjectPart describes one uploaded part of a multipart session.
type ObjectPart struct {
	PartNumber int    `json:"part_number"`
	ETag       string `json:"etag"`
	Size       int64  `json:"size"`
}

// SharedFile joins a grant with the live object it refers to.
type SharedFile struct {
	Sharing FileSharing  `json:"sharing"`
	Object  StoredObject `json:"object"`
}
