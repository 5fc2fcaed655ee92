package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/omarshaarawi/squashbot/internal/config"
	"github.com/omarshaarawi/squashbot/internal/models"
	"github.com/omarshaarawi/squashbot/internal/repository/memory"
	"github.com/omarshaarawi/squashbot/internal/sensor"
)

var (
	ErrNotSetUp       = errors.New("sensors are not set up")
	ErrAlreadySetUp   = errors.New("sensors are already set up")
	ErrPollInProgress = errors.New("poll already in progress")
	ErrProjection     = errors.New("sensor projection failed")
)

type PlayerAPI interface {
	Authenticate(ctx context.Context, creds models.Credentials, playerID int64, show string) (models.AuthResult, *models.Document, error)
	FetchPlayerData(ctx context.Context, playerID int64, show string) (*models.Document, error)
}

// Subscriber is called with the new state of every sensor that was
// updated by a poll, changed or not.
type Subscriber func(models.SensorState)

type SensorService struct {
	api      PlayerAPI
	repo     *memory.Repository
	clock    clock.Clock
	playerID int64
	show     string

	polling atomic.Bool

	mu          sync.RWMutex
	sensors     []*sensor.Sensor
	auth        models.AuthResult
	subscribers []Subscriber
}

func NewSensorService(api PlayerAPI, repo *memory.Repository, clock clock.Clock, cfg config.SquashLevels) *SensorService {
	return &SensorService{
		api:      api,
		repo:     repo,
		clock:    clock,
		playerID: cfg.PlayerID,
		show:     cfg.Show,
	}
}

// Setup fetches the first document and registers the sensor set. Which
// sensors exist is decided here, once.
func (s *SensorService) Setup(ctx context.Context, creds models.Credentials) error {
	s.mu.RLock()
	ready := s.sensors != nil
	s.mu.RUnlock()
	if ready {
		return ErrAlreadySetUp
	}

	auth, doc, err := s.api.Authenticate(ctx, creds, s.playerID, s.show)
	if err != nil {
		return fmt.Errorf("error fetching initial document: %w", err)
	}
	if auth.Status == models.AuthFailed {
		slog.Warn("Authentication failed, statistics sensors disabled", "reason", auth.Reason)
	}

	descs := sensor.Descriptors(auth)
	if err := sensor.Validate(descs); err != nil {
		return fmt.Errorf("error validating sensors: %w", err)
	}

	now := s.clock.Now()
	sensors := make([]*sensor.Sensor, 0, len(descs))
	for _, d := range descs {
		sn, err := sensor.New(d, doc, now)
		if sn == nil {
			return fmt.Errorf("error registering sensor %s: %w", d.Key, err)
		}
		if err != nil {
			slog.Error("Initial projection failed", "sensor", sn.UniqueID(), "error", err)
		}
		sensors = append(sensors, sn)
	}

	s.mu.Lock()
	if s.sensors != nil {
		s.mu.Unlock()
		return ErrAlreadySetUp
	}
	s.sensors = sensors
	s.auth = auth
	s.mu.Unlock()

	s.repo.SaveDocument(doc, now)

	slog.Info("Registered sensors", "player", s.playerID, "auth", auth.Status.String(), "count", len(sensors))
	return nil
}

// Poll runs one fetch-and-project cycle. Overlapping calls return
// ErrPollInProgress without fetching. A failed fetch keeps every sensor at
// its previous state.
func (s *SensorService) Poll(ctx context.Context) error {
	if !s.polling.CompareAndSwap(false, true) {
		return ErrPollInProgress
	}
	defer s.polling.Store(false)

	s.mu.RLock()
	sensors := s.sensors
	subscribers := slices.Clone(s.subscribers)
	s.mu.RUnlock()
	if sensors == nil {
		return ErrNotSetUp
	}

	doc, err := s.api.FetchPlayerData(ctx, s.playerID, s.show)
	if err != nil {
		return fmt.Errorf("error polling player %d: %w", s.playerID, err)
	}

	now := s.clock.Now()
	s.repo.SaveDocument(doc, now)

	var errs []error
	for _, sn := range sensors {
		if err := sn.Update(doc, now); err != nil {
			slog.Error("Failed to update sensor", "sensor", sn.UniqueID(), "error", err)
			errs = append(errs, err)
			continue
		}
		state := sn.State()
		for _, notify := range subscribers {
			notify(state)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrProjection, errors.Join(errs...))
	}
	return nil
}

func (s *SensorService) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Sensors returns the current states in registration order.
func (s *SensorService) Sensors() []models.SensorState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]models.SensorState, len(s.sensors))
	for i, sn := range s.sensors {
		states[i] = sn.State()
	}
	return states
}

func (s *SensorService) Sensor(uniqueID string) (models.SensorState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sn := range s.sensors {
		if sn.UniqueID() == uniqueID {
			return sn.State(), true
		}
	}
	return models.SensorState{}, false
}

// Find matches query against sensor names, best match first.
func (s *SensorService) Find(query string) []models.SensorState {
	states := s.Sensors()
	names := make([]string, len(states))
	for i, st := range states {
		names[i] = st.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	sort.Stable(ranks)

	found := make([]models.SensorState, 0, len(ranks))
	for _, r := range ranks {
		found = append(found, states[r.OriginalIndex])
	}
	return found
}

func (s *SensorService) Status() models.ServiceStatus {
	doc, fetchedAt := s.repo.GetDocument()

	s.mu.RLock()
	defer s.mu.RUnlock()

	status := models.ServiceStatus{
		PlayerID:    fmt.Sprint(s.playerID),
		Auth:        s.auth,
		Sensors:     len(s.sensors),
		LastFetched: fetchedAt,
	}
	if doc != nil {
		if name, ok := doc.Data.Summary["player_name"]; ok {
			status.PlayerName = fmt.Sprint(name)
		}
	}
	return status
}
