package handler

import (
	"errors"
	"net/http"

	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/lifecycle"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/notifyhub"
	"github.com/abhiram-FWD/ResloveX-Complain-portal/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler holds the services the HTTP layer delegates to.
type Handler struct {
	Hub       *notifyhub.HubService
	Storage   storage.Storage
	Lifecycle *lifecycle.Service
}

func NewHandler(hub *notifyhub.HubService, store storage.Storage, engine *lifecycle.Service) *Handler {
	return &Handler{Hub: hub, Storage: store, Lifecycle: engine}
}

// respondErr maps a failure to an HTTP status by its lifecycle error kind,
// so the UI can tell "someone else already took this" (409) apart from
// "you're not allowed to do this" (403).
func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch lifecycle.ErrKind(err) {
	case lifecycle.KindValidation:
		status = http.StatusBadRequest
	case lifecycle.KindUnauthorized:
		status = http.StatusForbidden
	case lifecycle.KindConflict:
		status = http.StatusConflict
	case lifecycle.KindNotFound:
		status = http.StatusNotFound
	default:
		if errors.Is(err, storage.ErrNotFound) {
			status = http.StatusNotFound
		}
	}
	c.JSON(status, gin.H{"success": false, "message": err.Error()})
}
