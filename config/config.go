package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var (
	TLS_DOMAINS  = "" // e.g. "attendance.example.com"
	BIND_ADDRESS = "0.0.0.0:8080"
	MYSQL_DSN    = ""              // MySQL will be used if this is set
	SQLITE_FILE  = "attendance.db" // SQLite will be used if MYSQL_DSN is not configured
	DEBUG_MODE   = true
	TMP_DIR      = "/tmp" // Local scratch space (S3 downloads, upload staging)

	// Student photo storage
	PHOTO_DIR     = "student_images" // Disk storage root, ignored when S3 is configured
	S3_BUCKET     = ""               // Store photos in this S3 bucket if set
	S3_REGION     = "us-east-1"
	S3_ENDPOINT   = "" // Custom S3 endpoint (MinIO, etc)
	S3_ACCESS_KEY = ""
	S3_SECRET_KEY = ""
	S3_PREFIX     = "" // Key prefix within the bucket

	// Camera capture
	CAMERA_INDEX     = 0
	FRAME_WIDTH      = 640
	FRAME_HEIGHT     = 480
	CAPTURE_FPS      = 30
	CAPTURE_ON_ERROR = "retry" // "retry" keeps the capture loop alive on read errors, "abort" ends it

	// Face detection and matching
	FACE_DETECT           = true // Enable/disable face recognition features
	CASCADE_FILE          = "haarcascade_frontalface_default.xml"
	CASCADE_SCALE         = 1.3 // Cascade pyramid scale factor
	CASCADE_MIN_NEIGHBORS = 5
	FACE_PATCH_SIZE       = 100 // Face crops are resized to this square size before encoding
	MATCH_THRESHOLD       = 0.3 // Minimum correlation to display a match
	AUTO_MARK_THRESHOLD   = 0.3 // Minimum correlation to auto-mark attendance
	DETECT_INTERVAL_MS    = 200
	STOP_TIMEOUT_MS       = 2000 // Bounded wait for capture/detection loops to stop
	STREAM_FPS            = 30   // MJPEG stream rate cap
)

func init() {
	// Optional .env file, real environment variables win
	_ = godotenv.Load()
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvString("PHOTO_DIR", &PHOTO_DIR)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_ACCESS_KEY", &S3_ACCESS_KEY)
	readEnvString("S3_SECRET_KEY", &S3_SECRET_KEY)
	readEnvString("S3_PREFIX", &S3_PREFIX)
	readEnvInt("CAMERA_INDEX", &CAMERA_INDEX)
	readEnvInt("FRAME_WIDTH", &FRAME_WIDTH)
	readEnvInt("FRAME_HEIGHT", &FRAME_HEIGHT)
	readEnvInt("CAPTURE_FPS", &CAPTURE_FPS)
	readEnvString("CAPTURE_ON_ERROR", &CAPTURE_ON_ERROR)
	readEnvBool("FACE_DETECT", &FACE_DETECT)
	readEnvString("CASCADE_FILE", &CASCADE_FILE)
	readEnvFloat("CASCADE_SCALE", &CASCADE_SCALE)
	readEnvInt("CASCADE_MIN_NEIGHBORS", &CASCADE_MIN_NEIGHBORS)
	readEnvInt("FACE_PATCH_SIZE", &FACE_PATCH_SIZE)
	readEnvFloat("MATCH_THRESHOLD", &MATCH_THRESHOLD)
	readEnvFloat("AUTO_MARK_THRESHOLD", &AUTO_MARK_THRESHOLD)
	readEnvInt("DETECT_INTERVAL_MS", &DETECT_INTERVAL_MS)
	readEnvInt("STOP_TIMEOUT_MS", &STOP_TIMEOUT_MS)
	readEnvInt("STREAM_FPS", &STREAM_FPS)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvFloat(name string, value *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*value = f
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
