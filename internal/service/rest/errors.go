package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/studentbits/Food-Delivery-System/internal/domain"
)

// failure описывает сообщения конкретного маршрута. internal — msg для 500,
// notFound переопределяет текст 404 для отдельных видов отсутствующих сущностей.
type failure struct {
	internal string
	notFound []notFoundMessage
	extra    gin.H
}

type notFoundMessage struct {
	target error
	msg    string
}

func (f failure) notFoundText(err error) string {
	for _, m := range f.notFound {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return capitalize(nf.Error())
	}
	return capitalize(err.Error())
}

// respondError переводит доменную ошибку в HTTP-ответ.
func (h *Handler) respondError(c *gin.Context, err error, f failure) {
	status, body := h.errorBody(err, f)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		}).Warn(f.internal)
	}
	for k, v := range f.extra {
		if _, exists := body[k]; !exists {
			body[k] = v
		}
	}
	c.JSON(status, body)
}

func (h *Handler) errorBody(err error, f failure) (int, gin.H) {
	var (
		validation *domain.ValidationError
		transition *domain.StatusTransitionError
	)

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, gin.H{"msg": validation.Error()}
	case errors.Is(err, domain.ErrInvalidIdentifier):
		return http.StatusBadRequest, gin.H{"msg": "Invalid identifier", "error": err.Error()}
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusBadRequest, gin.H{"msg": "User with this email already exists"}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"msg": "Invalid credentials"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, gin.H{"msg": "Unauthorized: You are not assigned to this order"}
	case errors.Is(err, domain.ErrEmpty), errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, gin.H{"msg": f.notFoundText(err)}
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusUnprocessableEntity, gin.H{"msg": "Referenced user has unexpected role", "error": err.Error()}
	case errors.As(err, &transition):
		return http.StatusConflict, gin.H{"msg": transition.Error(), "allowed": nonNil(transition.Allowed)}
	default:
		return http.StatusInternalServerError, gin.H{"msg": f.internal, "error": err.Error()}
	}
}

func badBody(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid JSON body", "error": err.Error()})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
