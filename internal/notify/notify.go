package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Severity mirrors the alert styles the front-end knows how to render.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Danger  Severity = "danger"
)

// DefaultRegion is the page-level alert container.
const DefaultRegion = "alert-container"

// Alert is a single user-facing message targeted at a display region.
type Alert struct {
	ID              string    `json:"id"`
	Message         string    `json:"message"`
	Severity        Severity  `json:"severity"`
	DurationSeconds int       `json:"durationSeconds"`
	Region          string    `json:"region"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Sink accepts user-facing notifications, fire-and-forget. Workflows never
// learn whether an alert was displayed.
type Sink interface {
	Append(message string, severity Severity, durationSeconds int, region string)
}

// Center is an in-memory Sink that buckets alerts per region until the HTTP
// layer drains them into a response.
type Center struct {
	Logger *logrus.Logger

	mu      sync.Mutex
	regions map[string][]Alert
}

func NewCenter(logger *logrus.Logger) *Center {
	return &Center{Logger: logger, regions: make(map[string][]Alert)}
}

func (c *Center) Append(message string, severity Severity, durationSeconds int, region string) {
	if region == "" {
		region = DefaultRegion
	}
	a := Alert{
		ID:              uuid.NewString(),
		Message:         message,
		Severity:        severity,
		DurationSeconds: durationSeconds,
		Region:          region,
		CreatedAt:       time.Now(),
	}
	c.mu.Lock()
	c.regions[region] = append(c.regions[region], a)
	c.mu.Unlock()

	if c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{
			"severity": severity,
			"region":   region,
			"duration": durationSeconds,
		}).Info(message)
	}
}

// Drain removes and returns all alerts collected for a region.
func (c *Center) Drain(region string) []Alert {
	if region == "" {
		region = DefaultRegion
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	alerts := c.regions[region]
	delete(c.regions, region)
	return alerts
}

// DrainAll removes and returns every collected alert across regions.
func (c *Center) DrainAll() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	var all []Alert
	for _, as := range c.regions {
		all = append(all, as...)
	}
	c.regions = make(map[string][]Alert)
	return all
}
