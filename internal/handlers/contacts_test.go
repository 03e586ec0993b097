package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dm-service/internal/mocks"
	"dm-service/internal/models"
)

type stubPresence struct {
	online map[int]bool
}

func (s stubPresence) Online(userID int) bool {
	return s.online[userID]
}

func setupContactsRouter(handler *ContactsHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/contacts", handler.ListContacts)
	return r
}

func TestListContactsAnnotatesPresence(t *testing.T) {
	directory := new(mocks.UserDirectoryMock)
	handler := NewContactsHandler(directory, stubPresence{online: map[int]bool{2: true}})
	r := setupContactsRouter(handler)

	directory.On("ListOthers", mock.Anything, 1).Return([]models.Contact{
		{ID: 2, Username: "bob"},
		{ID: 3, Username: "carol"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Contacts []models.Contact `json:"contacts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Contacts, 2)
	assert.True(t, resp.Contacts[0].Online)
	assert.False(t, resp.Contacts[1].Online)
	directory.AssertExpectations(t)
}

func TestListContactsEmptyDirectory(t *testing.T) {
	directory := new(mocks.UserDirectoryMock)
	handler := NewContactsHandler(directory, stubPresence{})
	r := setupContactsRouter(handler)

	directory.On("ListOthers", mock.Anything, 1).Return(([]models.Contact)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"contacts":[]}`, rec.Body.String())
	directory.AssertExpectations(t)
}

func TestListContactsDirectoryError(t *testing.T) {
	directory := new(mocks.UserDirectoryMock)
	handler := NewContactsHandler(directory, stubPresence{})
	r := setupContactsRouter(handler)

	directory.On("ListOthers", mock.Anything, 1).Return(([]models.Contact)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	directory.AssertExpectations(t)
}
