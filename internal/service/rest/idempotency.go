package rest

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

const (
	idempotencyKeyHeader      = "Idempotency-Key"
	idempotencyReplayedHeader = "Idempotent-Replayed"
)

// bodyRecorder дублирует тело ответа, чтобы его можно было сохранить под ключом.
type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *bodyRecorder) Write(data []byte) (int, error) {
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}

func (r *bodyRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// idempotent делает обработчик повторяемым по заголовку Idempotency-Key.
// Без заголовка запрос обрабатывается как обычно.
func (h *Handler) idempotent() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(idempotencyKeyHeader))
		if key == "" || h.idempotency == nil {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			badBody(c, err)
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		ctx := c.Request.Context()
		hash := requestHash(c.Request.Method, c.Request.URL.Path, body)
		record, err := h.idempotency.CreateProcessing(ctx, key, hash, h.now().Add(h.idempotencyTTL))
		if err != nil {
			h.replay(c, err, record)
			c.Abort()
			return
		}
		h.metrics.RecordIdempotency("fresh")

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		status := recorder.Status()
		if status >= http.StatusOK && status < http.StatusMultipleChoices {
			err = h.idempotency.MarkDone(ctx, key, recorder.body.Bytes(), status)
		} else {
			err = h.idempotency.MarkFailed(ctx, key, recorder.body.Bytes(), status)
		}
		if err != nil {
			h.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to store idempotent response")
		}
	}
}

// replay отвечает на повтор ключа сохранённым ответом либо конфликтом.
func (h *Handler) replay(c *gin.Context, createErr error, record domain.IdempotencyRecord) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		h.metrics.RecordIdempotency("conflict")
		c.JSON(http.StatusConflict, gin.H{"msg": "Idempotency-Key is already used with a different request"})
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			if record.HTTPStatus == 0 {
				c.JSON(http.StatusInternalServerError, gin.H{"msg": "Stored idempotent response is empty"})
				return
			}
			h.metrics.RecordIdempotency("replayed")
			c.Header(idempotencyReplayedHeader, "true")
			c.Data(record.HTTPStatus, "application/json; charset=utf-8", record.ResponseBody)
		case domain.IdempotencyStatusProcessing:
			h.metrics.RecordIdempotency("in_flight")
			c.JSON(http.StatusConflict, gin.H{"msg": "Request with the same Idempotency-Key is already processing"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Unknown idempotency record status"})
		}
	default:
		h.logger.WithError(createErr).WithFields(log.Fields{
			"idempotency_key": record.Key,
		}).Warn("failed to create idempotency record")
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Error initializing idempotent request", "error": createErr.Error()})
	}
}

func requestHash(method, path string, body []byte) string {
	payload := make([]byte, 0, len(method)+len(path)+2+len(body))
	payload = append(payload, method...)
	payload = append(payload, ' ')
	payload = append(payload, path...)
	payload = append(payload, ':')
	payload = append(payload, body...)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func defaultNow() time.Time { return time.Now().UTC() }
