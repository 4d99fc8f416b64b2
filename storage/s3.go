package storage

import (
	"io"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"attendance/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type S3Storage struct {
	bucket   string
	prefix   string
	s3Client *s3.S3
}

func NewS3Storage() StorageAPI {
	awsConfig := aws.NewConfig().WithRegion(config.S3_REGION)
	if config.S3_ENDPOINT != "" {
		// Non-AWS S3 endpoints (minio etc) need path-style addressing
		awsConfig = awsConfig.WithEndpoint(config.S3_ENDPOINT).WithS3ForcePathStyle(true)
	}
	if config.S3_ACCESS_KEY != "" {
		awsConfig = awsConfig.WithCredentials(
			credentials.NewStaticCredentials(config.S3_ACCESS_KEY, config.S3_SECRET_KEY, ""))
	}
	return &S3Storage{
		bucket:   config.S3_BUCKET,
		prefix:   config.S3_PREFIX,
		s3Client: s3.New(session.Must(session.NewSession(awsConfig))),
	}
}

func (s *S3Storage) remotePath(path string) string {
	if s.prefix == "" {
		return path
	}
	return strings.TrimSuffix(s.prefix, "/") + "/" + path
}

// GetFullPath returns the local temp copy location in case of S3
func (s *S3Storage) GetFullPath(path string) string {
	return config.TMP_DIR + "/" + strings.ReplaceAll(path, "/", "_")
}

// EnsureLocalFile downloads the S3 object to the temp location
func (s *S3Storage) EnsureLocalFile(path string) error {
	if _, err := os.Stat(s.GetFullPath(path)); err == nil {
		return nil
	}
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(s.remotePath(path)),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := os.Create(s.GetFullPath(path))
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

func (s *S3Storage) ReleaseLocalFile(path string) {
	_ = os.Remove(s.GetFullPath(path))
}

func (s *S3Storage) GetSize(path string) int64 {
	head, err := s.s3Client.HeadObject(&s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(s.remotePath(path)),
	})
	if err != nil || head.ContentLength == nil {
		return -1
	}
	return *head.ContentLength
}

type countingReader struct {
	reader io.Reader
	total  int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.total += int64(n)
	return n, err
}

func (s *S3Storage) Save(path string, reader io.Reader) (int64, error) {
	counter := &countingReader{reader: reader}
	input := s3manager.UploadInput{
		Bucket: &s.bucket,
		Key:    aws.String(s.remotePath(path)),
		Body:   counter,
	}
	if mimeType := mime.TypeByExtension(filepath.Ext(path)); mimeType != "" {
		input.ContentType = &mimeType
	}
	uploader := s3manager.NewUploaderWithClient(s.s3Client)
	if _, err := uploader.Upload(&input); err != nil {
		return 0, err
	}
	return counter.total, nil
}

func (s *S3Storage) Load(path string, writer io.Writer) (int64, error) {
	resp, err := s.s3Client.GetObject(&s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(s.remotePath(path)),
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return io.Copy(writer, resp.Body)
}

func (s *S3Storage) Serve(path string, request *http.Request, writer http.ResponseWriter) {
	if err := s.EnsureLocalFile(path); err != nil {
		log.Printf("Cannot serve %s from S3: %v", path, err)
		http.NotFound(writer, request)
		return
	}
	http.ServeFile(writer, request, s.GetFullPath(path))
}

// Delete removes the remote object and any local temp copy
func (s *S3Storage) Delete(path string) error {
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    aws.String(s.remotePath(path)),
	})
	s.ReleaseLocalFile(path)
	return err
}
