// Package sensor holds the published sensors and their naming rules.
package sensor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/omarshaarawi/squashbot/internal/models"
	"github.com/omarshaarawi/squashbot/internal/projector"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const LastUpdatedLayout = "2006-01-02 15:04:05"

type Sensor struct {
	Descriptor Descriptor

	playerID   string
	playerName string

	mu          sync.RWMutex
	value       any
	lastUpdated time.Time
}

// New creates a sensor from the initial document. The sensor is returned
// even when the first projection fails; its state then stays nil until a
// later update succeeds.
func New(desc Descriptor, doc *models.Document, now time.Time) (*Sensor, error) {
	id, name, err := projector.Identity(doc)
	if err != nil {
		return nil, fmt.Errorf("reading player identity: %w", err)
	}

	s := &Sensor{
		Descriptor:  desc,
		playerID:    id,
		playerName:  name,
		lastUpdated: now,
	}
	return s, s.Update(doc, now)
}

// Update reprojects the sensor from doc. On error the previous value and
// timestamp are kept.
func (s *Sensor) Update(doc *models.Document, now time.Time) error {
	v, err := projector.Project(doc, s.Descriptor.Key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.lastUpdated = now
	return nil
}

func (s *Sensor) Name() string {
	return fmt.Sprintf("%s SquashLevels %s", s.playerName, Friendly(s.Descriptor.Key))
}

func (s *Sensor) UniqueID() string {
	return UniqueID(s.playerID, s.Descriptor.Key)
}

func (s *Sensor) Value() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

func (s *Sensor) State() models.SensorState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.SensorState{
		Name:     s.Name(),
		UniqueID: s.UniqueID(),
		State:    s.value,
		Icon:     s.Descriptor.Icon,
		Attributes: models.SensorAttributes{
			UnitOfMeasurement: s.Descriptor.Unit,
			LastUpdated:       s.lastUpdated.Format(LastUpdatedLayout),
		},
	}
}

func UniqueID(playerID, key string) string {
	return fmt.Sprintf("%s_%s", playerID, key)
}

// Friendly turns a sensor key into its display form, e.g. points_scores
// becomes "Last Points Scores".
func Friendly(key string) string {
	if key == projector.KeyPointsScores || key == projector.KeyGamesScore {
		key = "last_" + key
	}
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}
