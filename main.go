package main

import (
	"log"
	"strings"
	"time"

	"attendance/camera"
	"attendance/config"
	"attendance/db"
	"attendance/faces"
	"attendance/handlers"
	"attendance/models"
	"attendance/records"
	"attendance/session"
	"attendance/storage"
	"attendance/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	db.Init()
	models.Init()
	storage.Init()

	// Face detection needs the OpenCV build, a loadable cascade and the
	// feature flag all at once
	var locator faces.Locator
	if faces.Compiled && config.FACE_DETECT {
		var err error
		locator, err = faces.NewCascadeLocator(config.CASCADE_FILE, config.CASCADE_SCALE, config.CASCADE_MIN_NEIGHBORS)
		if err != nil {
			log.Printf("Face detection disabled: %v", err)
			locator = nil
		}
	}
	available := locator != nil
	log.Printf("Face detection available: %v", available)

	var captureInterval time.Duration
	if config.CAPTURE_FPS > 0 {
		captureInterval = time.Second / time.Duration(config.CAPTURE_FPS)
	}
	encoder := faces.NewEncoder(config.FACE_PATCH_SIZE, locator)
	source := camera.NewSource(camera.SourceConfig{
		Open: func() (camera.Device, error) {
			return camera.OpenDevice(config.CAMERA_INDEX, config.FRAME_WIDTH, config.FRAME_HEIGHT, config.CAPTURE_FPS)
		},
		Interval:    captureInterval,
		Policy:      camera.PolicyFromString(config.CAPTURE_ON_ERROR),
		StopTimeout: time.Duration(config.STOP_TIMEOUT_MS) * time.Millisecond,
	})
	detector := faces.NewDetector(faces.DetectorConfig{
		Source:        source,
		Locator:       locator,
		Encoder:       encoder,
		MinConfidence: config.MATCH_THRESHOLD,
		Interval:      time.Duration(config.DETECT_INTERVAL_MS) * time.Millisecond,
		StopTimeout:   time.Duration(config.STOP_TIMEOUT_MS) * time.Millisecond,
		OnPublish:     handlers.PublishDetections,
	})
	coordinator := session.NewCoordinator(session.Config{
		Source:       source,
		Detector:     detector,
		Available:    available,
		LoadEnrolled: models.EnrolledFaces,
		OpenSession: func(faceCount int) func() {
			s, err := models.OpenSession("Session "+time.Now().Format("2006-01-02 15:04:05"), faceCount)
			if err != nil {
				log.Printf("Session record failed: %v", err)
				return nil
			}
			return func() {
				if err := s.Close(); err != nil {
					log.Printf("Session close failed: %v", err)
				}
			}
		},
	})
	recorder := records.NewRecorder(records.NewGormStore(), models.StudentByID, config.AUTO_MARK_THRESHOLD)
	api := &handlers.API{
		Coordinator: coordinator,
		Recorder:    recorder,
		Encoder:     encoder,
		Storage:     storage.Get(),
	}

	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{})
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "PUT", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           30 * 24 * time.Hour,
	}))
	if !config.DEBUG_MODE {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/video/feed", "/detection/live"})))
	}
	router.Use(utils.CacheControl(0)) // No cache by default, individual end-points can override that

	// Camera and recognition sessions
	router.POST("/detection/start", api.DetectionStart)
	router.POST("/detection/stop", api.DetectionStop)
	router.POST("/recognition/start", api.RecognitionStart)
	router.POST("/recognition/stop", api.RecognitionStop)
	router.GET("/detection/status", api.DetectionStatus)
	router.GET("/detection/faces", api.DetectionFaces)
	router.GET("/detection/live", api.DetectionsSocket)
	router.GET("/video/feed", api.VideoFeed)
	// Student handlers
	router.POST("/student/register", api.StudentRegister)
	router.GET("/student/list", api.StudentList)
	router.GET("/student/get/:id", api.StudentGet)
	router.GET("/student/photo/:id", utils.CacheControl(86400), api.StudentPhoto)
	router.POST("/student/delete", api.StudentDelete)
	router.POST("/student/purge", api.StudentPurge)
	// Attendance handlers
	router.POST("/attendance/mark", api.AttendanceMark)
	router.POST("/attendance/present", api.AttendancePresent)
	router.POST("/attendance/auto", api.AttendanceAuto)
	router.POST("/attendance/status", api.AttendanceStatus)
	router.POST("/attendance/markstatus", api.AttendanceMarkStatus)
	router.POST("/attendance/timeout", api.AttendanceTimeOut)
	router.POST("/attendance/delete", api.AttendanceDelete)
	router.GET("/attendance/today", api.AttendanceToday)
	router.GET("/attendance/summary", api.AttendanceSummary)
	// Misc
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var err error
	if config.TLS_DOMAINS != "" {
		err = autotls.Run(router, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		err = router.Run(config.BIND_ADDRESS)
	}
	log.Fatalf("Server stopped: %v", err)
}
