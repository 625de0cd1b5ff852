// Package handlers is made to handle requests
package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lsb-steganography/config"
	"lsb-steganography/crypto"
	"lsb-steganography/models"
	"lsb-steganography/quality"
	"lsb-steganography/stego"
)

const apiVersion = "1.0.0"

type StegoHandler struct {
	config *config.Config
}

func NewStegoHandler(conf *config.Config) *StegoHandler {
	return &StegoHandler{config: conf}
}

func (h *StegoHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"version": apiVersion,
	})
}

func (h *StegoHandler) APIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":              "LSB Steganography API",
		"version":           apiVersion,
		"supported_formats": stego.SupportedMimetypes(),
		"algorithms":        stego.Algorithms(),
		"endpoints": []string{
			"POST /api/v1/stego/embed",
			"POST /api/v1/stego/extract",
			"POST /api/v1/stego/capacity",
			"POST /api/v1/stego/inspect",
			"GET  /api/v1/stego/algorithms",
			"GET  /api/v1/stego/recommend",
		},
	})
}

func (h *StegoHandler) EmbedMessage(c *gin.Context) {
	h.limitBody(c)

	var req models.EmbedRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}
	if len(req.Message) > h.config.MaxMessageLength {
		h.validationError(c, fmt.Sprintf("Message exceeds maximum length of %d characters", h.config.MaxMessageLength))
		return
	}
	if !h.checkPassword(c, req.Password) {
		return
	}

	upload, err := saveUpload(c, h.config.TempDir, req.Mimetype)
	if err != nil {
		h.validationError(c, err.Error())
		return
	}
	defer upload.Remove()

	codec := stego.NewCodec(h.codecConfig(req.Password))
	result, err := codec.Embed(upload.Path, req.Message, upload.Mimetype)
	if err != nil {
		h.respondError(c, err)
		return
	}

	warnings := passwordWarnings(req.Password)
	if w := usageWarning(result.BitsEmbedded, result.Capacity); w != "" {
		warnings = append(warnings, w)
	}
	if !quality.ValidatePSNR(result.PSNR, h.config.PSNRThreshold) {
		log.Printf("embed: PSNR %.2f dB below threshold %.2f dB for %s", result.PSNR, h.config.PSNRThreshold, upload.Filename)
		warnings = append(warnings, "embedding noticeably degraded the carrier")
	}

	log.Printf("embed: %s (%s) %d/%d bits, PSNR %.2f dB", upload.Filename, upload.Mimetype, result.BitsEmbedded, result.Capacity, result.PSNR)

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Transfer-Encoding", "binary")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": outputFilename(upload.Filename, result.Mimetype),
	}))
	c.Header("X-Stego-Algorithm", result.Algorithm)
	c.Header("X-Stego-PSNR", strconv.FormatFloat(result.PSNR, 'f', 2, 64))
	c.Header("X-Stego-Capacity", strconv.Itoa(result.Capacity))
	c.Header("X-Stego-Bits", strconv.Itoa(result.BitsEmbedded))
	if len(warnings) > 0 {
		c.Header("X-Stego-Warnings", strings.Join(warnings, "; "))
	}

	c.Data(http.StatusOK, result.Mimetype, result.Data)
}

func (h *StegoHandler) ExtractMessage(c *gin.Context) {
	start := time.Now()
	h.limitBody(c)

	var req models.ExtractRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}
	if !h.checkPassword(c, req.Password) {
		return
	}

	upload, err := saveUpload(c, h.config.TempDir, req.Mimetype)
	if err != nil {
		h.validationError(c, err.Error())
		return
	}
	defer upload.Remove()

	codec := stego.NewCodec(h.codecConfig(req.Password))
	message, err := codec.Extract(upload.Path, upload.Mimetype)
	if err != nil {
		h.respondError(c, err)
		return
	}

	log.Printf("extract: %s (%s) recovered %d bytes", upload.Filename, upload.Mimetype, len(message))

	c.JSON(http.StatusOK, models.ExtractResponse{
		Success:          true,
		Message:          "Message extracted successfully",
		SecretMessage:    message,
		MessageLength:    len(message),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

func (h *StegoHandler) CheckCapacity(c *gin.Context) {
	h.limitBody(c)

	var req models.CapacityRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}
	if !h.checkPassword(c, req.Password) {
		return
	}

	upload, err := saveUpload(c, h.config.TempDir, req.Mimetype)
	if err != nil {
		h.validationError(c, err.Error())
		return
	}
	defer upload.Remove()

	codec := stego.NewCodec(h.codecConfig(req.Password))
	report, err := codec.CheckCapacity(upload.Path, req.MessageLength, upload.Mimetype)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CapacityResponse{
		Success:         true,
		CanFit:          report.CanFit,
		CapacityBytes:   report.CapacityBytes,
		RequestedLength: report.RequestedLength,
		EstimatedLength: report.EstimatedLength,
		Algorithm:       report.Algorithm,
	})
}

func (h *StegoHandler) InspectCarrier(c *gin.Context) {
	h.limitBody(c)

	upload, err := saveUpload(c, h.config.TempDir, c.PostForm("mimetype"))
	if err != nil {
		h.validationError(c, err.Error())
		return
	}
	defer upload.Remove()

	data, err := os.ReadFile(upload.Path)
	if err != nil {
		h.respondError(c, err)
		return
	}

	meta, err := stego.NewCodec(h.codecConfig("")).Inspect(data, upload.Mimetype)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InspectResponse{Success: true, Metadata: *meta})
}

func (h *StegoHandler) ListAlgorithms(c *gin.Context) {
	c.JSON(http.StatusOK, models.AlgorithmsResponse{
		Success:    true,
		Algorithms: stego.AlgorithmsFor(c.Query("format")),
	})
}

func (h *StegoHandler) RecommendAlgorithm(c *gin.Context) {
	messageLength := 0
	if v := c.Query("message_length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.validationError(c, "message_length must be a non-negative integer")
			return
		}
		messageLength = n
	}

	rec, err := stego.Recommend(c.Query("mimetype"), messageLength)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RecommendResponse{Success: true, Recommendation: *rec})
}

func (h *StegoHandler) codecConfig(password string) *models.StegoConfig {
	return &models.StegoConfig{
		Passphrase: password,
		LegacySalt: h.config.LegacySalt,
		MaxPixels:  h.config.MaxImagePixels,
	}
}

// checkPassword rejects passphrases unfit for key derivation. An empty
// password disables encryption and is accepted.
func (h *StegoHandler) checkPassword(c *gin.Context, password string) bool {
	if password == "" {
		return true
	}
	if err := crypto.ValidatePassphrase(password); err != nil {
		h.validationError(c, fmt.Sprintf("Invalid password: %v", err))
		return false
	}
	return true
}

func (h *StegoHandler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadBytes)
}

func (h *StegoHandler) bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, models.StegoResponse{
			Success: false,
			Message: fmt.Sprintf("Upload exceeds maximum size of %d bytes", tooLarge.Limit),
			Code:    string(stego.KindInvalidInput),
		})
		return
	}
	h.validationError(c, fmt.Sprintf("Invalid request: %v", err))
}

func (h *StegoHandler) validationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.StegoResponse{
		Success: false,
		Message: message,
		Code:    string(stego.KindInvalidInput),
	})
}

// respondError maps codec failures onto HTTP statuses. Internal causes are
// logged, not returned.
func (h *StegoHandler) respondError(c *gin.Context, err error) {
	kind := stego.KindOf(err)

	status := http.StatusInternalServerError
	message := "Internal server error"
	switch kind {
	case stego.KindUnsupportedFormat, stego.KindInsufficientCapacity, stego.KindInvalidInput:
		status = http.StatusBadRequest
		message = err.Error()
	case stego.KindCorruptedData:
		status = http.StatusUnprocessableEntity
		message = err.Error()
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(status, models.StegoResponse{
		Success: false,
		Message: message,
		Code:    string(kind),
	})
}

func outputFilename(uploaded, mimetype string) string {
	base := strings.TrimSuffix(uploaded, filepath.Ext(uploaded))
	if base == "" || base == "." {
		base = "carrier"
	}
	ext := ".png"
	if mimetype == stego.MimeWAV {
		ext = ".wav"
	}
	return base + "_stego" + ext
}
