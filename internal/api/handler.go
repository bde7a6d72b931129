// Package api exposes detection and downscaling over HTTP.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ironsheep/pixelscale/internal/config"
	apperrors "github.com/ironsheep/pixelscale/internal/errors"
	"github.com/ironsheep/pixelscale/internal/imaging"
	"github.com/ironsheep/pixelscale/internal/service"
	"github.com/sirupsen/logrus"
)

// UploadField is the multipart form field holding the image.
const UploadField = "image"

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error *apperrors.AppError `json:"error"`
}

type handler struct {
	unscaler *service.Unscaler
	cfg      *config.Config
	logger   *logrus.Logger
	version  string
}

// NewHandler builds the gin router.
//
// Routes:
//
//	GET  /health
//	POST /detect     multipart "image" -> JSON analysis
//	POST /downscale  multipart "image" -> image at native resolution
//
// Both POST routes accept the ignore_border and first_frame_only query
// parameters; their defaults come from cfg. /downscale also accepts format
// to choose the output encoding.
func NewHandler(u *service.Unscaler, cfg *config.Config, log *logrus.Logger, version string) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	h := &handler{unscaler: u, cfg: cfg, logger: log, version: version}

	r.Use(
		gin.Recovery(),
		h.requestLogger(),
		requestSizeLimiter(cfg.MaxUploadBytes),
	)

	r.GET("/health", h.healthCheck)
	r.POST("/detect", h.detect)
	r.POST("/downscale", h.downscale)

	return r
}

func (h *handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handler) detect(c *gin.Context) {
	opts, err := h.detectOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	seq, err := readUpload(c, h.cfg.MaxPixels)
	if err != nil {
		h.respondError(c, err)
		return
	}

	result, err := h.unscaler.DetectImage(c.Request.Context(), seq, opts)
	if err != nil {
		h.respondError(c, contextError(err))
		return
	}

	h.logger.WithFields(logrus.Fields{
		"format":     seq.Format,
		"frames":     len(seq.Frames),
		"stride":     result.Stride,
		"reason":     result.Reason,
		"candidates": result.Candidates,
	}).Info("detection finished")

	c.JSON(http.StatusOK, service.NewAnalysis(seq, result))
}

func (h *handler) downscale(c *gin.Context) {
	opts, err := h.detectOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	seq, err := readUpload(c, h.cfg.MaxPixels)
	if err != nil {
		h.respondError(c, err)
		return
	}

	format := imaging.OutputFormat("", seq.Format)
	if f := c.Query("format"); f != "" {
		if !imaging.Supported(f) {
			h.respondError(c, apperrors.NewValidationError(fmt.Sprintf("unsupported output format %q", f), nil))
			return
		}
		format = imaging.NormalizeFormat(f)
	}
	if seq.Animated() && !imaging.SupportsAnimation(format) {
		seq = seq.First()
	}

	shrunk, result, err := h.unscaler.DownscaleImage(c.Request.Context(), seq, opts)
	if errors.Is(err, service.ErrNotDetected) {
		h.respondError(c, apperrors.NewUndetectedError(err.Error(), nil).
			WithDetails(fmt.Sprintf("reason: %s", result.Reason)))
		return
	}
	if err != nil {
		h.respondError(c, contextError(err))
		return
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, shrunk, format); err != nil {
		h.respondError(c, apperrors.NewProcessingError("failed to encode image", err))
		return
	}

	c.Header("X-Pixelscale-Stride", strconv.Itoa(result.Stride))
	c.Data(http.StatusOK, imaging.MimeType(format), buf.Bytes())
}

func (h *handler) detectOptions(c *gin.Context) (service.DetectOptions, error) {
	opts := service.DetectOptions{
		IgnoreBorder:   h.cfg.IgnoreBorder,
		FirstFrameOnly: h.cfg.FirstFrameOnly,
	}
	if err := queryBool(c, "ignore_border", &opts.IgnoreBorder); err != nil {
		return opts, err
	}
	if err := queryBool(c, "first_frame_only", &opts.FirstFrameOnly); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryBool(c *gin.Context, key string, dst *bool) error {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("invalid %s: %q", key, v), err)
	}
	*dst = b
	return nil
}

// readUpload decodes the uploaded image, refusing images whose decoded size
// would exceed maxPixels.
func readUpload(c *gin.Context, maxPixels int64) (*imaging.Sequence, error) {
	header, err := c.FormFile(UploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewTooLargeError("upload exceeds the size limit", err)
		}
		return nil, apperrors.NewValidationError(fmt.Sprintf("missing %q upload", UploadField), err)
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to open upload", err)
	}
	defer f.Close()

	seq, err := imaging.DecodeLimit(f, maxPixels)
	if errors.Is(err, imaging.ErrTooManyPixels) {
		return nil, apperrors.NewTooLargeError("image exceeds the pixel limit", err)
	}
	if err != nil {
		return nil, apperrors.NewValidationError("unsupported or corrupt image", err)
	}
	return seq, nil
}

func contextError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewProcessingError("request cancelled", err)
	}
	return apperrors.NewInternalError("detection failed", err)
}

func (h *handler) respondError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)

	h.logger.WithError(err).WithFields(logrus.Fields{
		"status_code": appErr.StatusCode,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Warn("request failed")

	c.AbortWithStatusJSON(appErr.StatusCode, ErrorResponse{Error: appErr})
}

// Middleware

func (h *handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}).Debug("request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
