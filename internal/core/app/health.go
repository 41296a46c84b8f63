package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	// Check automaton
	if c := s.app.current.Load(); c == nil {
		status.Status = "degraded"
		status.Components["automaton"] = "missing"
	} else {
		g := c.automaton.Graph()
		status.Components["automaton"] = fmt.Sprintf("ok (%d states, %d edges, loaded %s)",
			g.StateCount(), g.EdgeCount(), c.loadedAt.Format(time.RFC3339))
	}

	// Check history store
	if s.app.history != nil {
		if _, err := s.app.history.Summary(ctx, s.app.Config.DB.GrammarKey); err != nil {
			status.Status = "degraded"
			status.Components["history"] = fmt.Sprintf("error: %v", err)
		} else {
			status.Components["history"] = "ok"
		}
	} else if s.app.Config.DB.Enabled {
		status.Status = "degraded"
		status.Components["history"] = "missing but enabled in config"
	}

	return status
}
