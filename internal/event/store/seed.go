package store

import (
	"context"
	"time"

	"ensemble/internal/event/models"
	id "ensemble/pkg/domain"
)

// SeedDevEvents creates a pair of open events so a fresh in-memory instance
// has something to register against.
func SeedDevEvents(s *InMemory) []models.Event {
	now := time.Now()
	auditions, _ := models.NewEvent(id.NewEventID(),
		"Autumn Auditions", "Open auditions for all sections.",
		"Main Auditorium", now.Add(14*24*time.Hour), now)
	workshop, _ := models.NewEvent(id.NewEventID(),
		"Rhythm Workshop", "Percussion and groove fundamentals.",
		"Practice Room B", now.Add(21*24*time.Hour), now)

	_ = s.Create(context.Background(), auditions)
	_ = s.Create(context.Background(), workshop)
	return []models.Event{*auditions, *workshop}
}
