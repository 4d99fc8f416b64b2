// Package storage keeps student photos and thumbnails. One backend is
// active per process: local disk by default, S3 when a bucket is
// configured. Paths are backend-relative, like "students/<uuid>.jpg".
package storage

import (
	"io"
	"log"
	"net/http"

	"attendance/config"
)

type StorageAPI interface {
	// GetFullPath maps a storage path to a locally readable file path
	GetFullPath(path string) string
	// EnsureLocalFile makes the file available at GetFullPath
	EnsureLocalFile(path string) error
	// ReleaseLocalFile drops a local copy created by EnsureLocalFile
	ReleaseLocalFile(path string)

	GetSize(path string) int64
	Save(path string, reader io.Reader) (int64, error)
	Load(path string, writer io.Writer) (int64, error)
	Serve(path string, request *http.Request, writer http.ResponseWriter)
	Delete(path string) error
}

var instance StorageAPI

// Init picks the photo backend. Called once at startup.
func Init() {
	if config.S3_BUCKET != "" {
		instance = NewS3Storage()
		log.Printf("Student photos stored in S3 bucket %s\n", config.S3_BUCKET)
		return
	}
	instance = NewDiskStorage(config.PHOTO_DIR)
	log.Printf("Student photos stored in %s\n", config.PHOTO_DIR)
}

func Get() StorageAPI {
	if instance == nil {
		panic("storage used before Init")
	}
	return instance
}
