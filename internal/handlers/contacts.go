package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dm-service/internal/models"
	"dm-service/internal/repositories"
)

// PresenceReader answers liveness queries for directory entries.
type PresenceReader interface {
	Online(userID int) bool
}

// ContactsHandler lists who the caller can start a conversation with.
type ContactsHandler struct {
	directory repositories.UserDirectory
	registry  PresenceReader
}

// NewContactsHandler builds a ContactsHandler.
func NewContactsHandler(directory repositories.UserDirectory, registry PresenceReader) *ContactsHandler {
	return &ContactsHandler{directory: directory, registry: registry}
}

// ListContacts returns the directory minus the caller, each entry
// annotated with its current presence. The directory is the authority on
// who exists; the registry only answers liveness at this instant.
func (h *ContactsHandler) ListContacts(c *gin.Context) {
	userID := c.GetInt("userID")

	contacts, err := h.directory.ListOthers(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load contacts"})
		return
	}

	if contacts == nil {
		contacts = []models.Contact{}
	}
	for i := range contacts {
		contacts[i].Online = h.registry.Online(contacts[i].ID)
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}
