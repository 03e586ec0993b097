package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"dm-service/internal/models"
	"dm-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) Range(ctx context.Context, userA int, userB int) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

type UserDirectoryMock struct {
	mock.Mock
}

func (m *UserDirectoryMock) ListOthers(ctx context.Context, userID int) ([]models.Contact, error) {
	args := m.Called(ctx, userID)
	var contacts []models.Contact
	if val := args.Get(0); val != nil {
		contacts = val.([]models.Contact)
	}
	return contacts, args.Error(1)
}

type MessageSenderMock struct {
	mock.Mock
}

func (m *MessageSenderMock) Send(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.UserDirectory = (*UserDirectoryMock)(nil)
