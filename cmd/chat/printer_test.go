package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/fostercare-aficionado/chat/internal/chatview"
	"github.com/fostercare-aficionado/chat/internal/models"
)

func TestPrinterWritesDeltas(t *testing.T) {
	color.NoColor = true

	var out bytes.Buffer
	p := newPrinter(&out)

	now := time.Date(2025, 1, 2, 10, 15, 0, 0, time.Local)
	greeting := models.NewMessage(models.RoleAssistant, "Hello!", now)
	user := models.NewMessage(models.RoleUser, "What is kinship care?", now)
	reply := models.NewMessage(models.RoleAssistant, "", now)
	reply.StreamingState = models.StreamingStateStreaming

	p.observe(chatview.Snapshot{Messages: []models.Message{greeting}})
	p.observe(chatview.Snapshot{Messages: []models.Message{greeting, user}, Busy: true})
	p.observe(chatview.Snapshot{Messages: []models.Message{greeting, user, reply}, Busy: true})

	reply.Content = "Kinship "
	p.observe(chatview.Snapshot{Messages: []models.Message{greeting, user, reply}, Busy: true})

	reply.Content = "Kinship care is..."
	reply.StreamingState = models.StreamingStateEnded
	p.observe(chatview.Snapshot{Messages: []models.Message{greeting, user, reply}})

	assert.Equal(t,
		"Assistant [10:15]: Hello!\nAssistant [10:15]: Kinship care is...\n",
		out.String())
}
