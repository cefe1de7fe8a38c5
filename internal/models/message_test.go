package models_test

import (
	"testing"
	"time"

	"github.com/fostercare-aficionado/chat/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewMessage(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 5, 0, 0, time.Local)

	user := models.NewMessage(models.RoleUser, "What is reunification?", now)
	reply := models.NewMessage(models.RoleAssistant, "", now)

	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, user.ID, reply.ID)
	assert.Equal(t, models.StreamingStateEnded, user.StreamingState)
	assert.False(t, user.Streaming())
	assert.Equal(t, "09:05", user.Clock())
}
