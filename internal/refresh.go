package lithotop

import (
	"context"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
)

// refreshMsg asks the dashboard to reload the selected machine
type refreshMsg struct {
	trigger string // "user" or "timer"
}

// Refresher sends a timer refresh to the program on a fixed interval
type Refresher struct {
	cron *cron.Cron
}

// NewRefresher schedules send(refreshMsg) every interval. It does not start.
func NewRefresher(interval time.Duration, send func(tea.Msg)) (*Refresher, error) {
	c := cron.New()
	spec := RefreshSpec(interval)
	if _, err := c.AddFunc(spec, func() {
		send(refreshMsg{trigger: "timer"})
	}); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	log.Printf("Auto refresh scheduled: %s", spec)
	return &Refresher{cron: c}, nil
}

func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop stops the schedule and returns a context done when running jobs finish
func (r *Refresher) Stop() context.Context {
	return r.cron.Stop()
}
