package bot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/squashbot/internal/models"
)

type fakeSensors struct {
	states []models.SensorState
	status models.ServiceStatus
}

func (f *fakeSensors) Sensors() []models.SensorState { return f.states }

func (f *fakeSensors) Find(query string) []models.SensorState {
	var found []models.SensorState
	for _, s := range f.states {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(query)) {
			found = append(found, s)
		}
	}
	return found
}

func (f *fakeSensors) Status() models.ServiceStatus { return f.status }

var testStates = []models.SensorState{
	{
		Name:       "Alice SquashLevels Level Now",
		UniqueID:   "12345_level_now",
		State:      2150.4,
		Icon:       "mdi:racquetball",
		Attributes: models.SensorAttributes{UnitOfMeasurement: "level", LastUpdated: "2024-03-02 09:00:00"},
	},
	{
		Name:       "Alice SquashLevels Last Games Score",
		UniqueID:   "12345_games_score",
		State:      nil,
		Icon:       "mdi:racquetball",
		Attributes: models.SensorAttributes{UnitOfMeasurement: "score", LastUpdated: "2024-03-02 09:00:00"},
	},
}

func commandUpdate(text string) tgbotapi.Update {
	cmd := strings.SplitN(text, " ", 2)[0]
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: 42},
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(cmd)},
			},
		},
	}
}

func TestHandleCommand(t *testing.T) {
	sensors := &fakeSensors{
		states: testStates,
		status: models.ServiceStatus{
			PlayerID:    "12345",
			PlayerName:  "Alice",
			Auth:        models.AuthResult{Status: models.AuthFailed, Reason: "document status \"ok\""},
			Sensors:     5,
			LastFetched: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		},
	}
	refreshCalls := 0
	h := NewHandler(sensors, func(ctx context.Context) error {
		refreshCalls++
		return nil
	})

	tests := map[string]struct {
		text     string
		contains []string
	}{
		"start":           {text: "/start", contains: []string{"Welcome to SquashBot"}},
		"help":            {text: "/help", contains: []string{"/sensors", "/sensor <name>", "/refresh"}},
		"sensors":         {text: "/sensors", contains: []string{"Alice SquashLevels Level Now", "2150.4 level", "unknown score"}},
		"sensor match":    {text: "/sensor games", contains: []string{"Last Games Score"}},
		"sensor no match": {text: "/sensor damped", contains: []string{"No sensor matching 'damped'"}},
		"sensor no args":  {text: "/sensor", contains: []string{"Usage: /sensor <name>"}},
		"status":          {text: "/status", contains: []string{"*Alice* (12345)", "Session: failed", "Reason: document status", "Last fetched: 2024-03-02 09:00:00"}},
		"refresh":         {text: "/refresh", contains: []string{"Sensors refreshed."}},
		"upper case":      {text: "/SENSORS", contains: []string{"SquashLevels Sensors"}},
		"unknown":         {text: "/whohas", contains: []string{"Unknown command"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			msg := h.HandleCommand(context.Background(), commandUpdate(tc.text))
			if msg.ChatID != 42 {
				t.Errorf("expected chat 42, got %d", msg.ChatID)
			}
			if msg.ParseMode != "Markdown" {
				t.Errorf("expected Markdown parse mode, got %s", msg.ParseMode)
			}
			for _, c := range tc.contains {
				if !strings.Contains(msg.Text, c) {
					t.Errorf("expected reply to contain %q, got:\n%s", c, msg.Text)
				}
			}
		})
	}

	if refreshCalls != 1 {
		t.Errorf("expected one refresh call, got %d", refreshCalls)
	}
}

func TestHandleCommand_refreshError(t *testing.T) {
	h := NewHandler(&fakeSensors{}, func(ctx context.Context) error {
		return errors.New("poll already in progress")
	})

	msg := h.HandleCommand(context.Background(), commandUpdate("/refresh"))
	if msg.Text != "Error refreshing sensors: poll already in progress" {
		t.Errorf("unexpected reply: %s", msg.Text)
	}
}

func TestHandleCommand_noSensors(t *testing.T) {
	h := NewHandler(&fakeSensors{}, nil)

	msg := h.HandleCommand(context.Background(), commandUpdate("/sensors"))
	if msg.Text != "No sensors registered yet." {
		t.Errorf("unexpected reply: %s", msg.Text)
	}
}

func TestChangeNotifier(t *testing.T) {
	var sent []string
	n := NewChangeNotifier(func(text string) { sent = append(sent, text) })

	level := testStates[0]
	n.Notify(level)
	if len(sent) != 0 {
		t.Fatalf("first state should be recorded silently, got %v", sent)
	}

	n.Notify(level)
	if len(sent) != 0 {
		t.Fatalf("unchanged state should not be sent, got %v", sent)
	}

	level.State = 2200.0
	n.Notify(level)
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	if sent[0] != "📈 *Alice SquashLevels Level Now*\n2150.4 → 2200 level" {
		t.Errorf("unexpected message: %q", sent[0])
	}

	// Another sensor is tracked on its own.
	n.Notify(testStates[1])
	if len(sent) != 1 {
		t.Errorf("a new sensor should not trigger a message")
	}
}

func TestChangeNotifier_escapesMarkdown(t *testing.T) {
	var sent []string
	n := NewChangeNotifier(func(text string) { sent = append(sent, text) })

	state := models.SensorState{
		Name:       "john_smith SquashLevels Last Games Score",
		UniqueID:   "777_games_score",
		State:      "3-1",
		Attributes: models.SensorAttributes{UnitOfMeasurement: "score"},
	}
	n.Notify(state)
	state.State = "2*3"
	n.Notify(state)

	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}
	want := "📈 *john\\_smith SquashLevels Last Games Score*\n3-1 → 2\\*3 score"
	if sent[0] != want {
		t.Errorf("expected %q, got %q", want, sent[0])
	}
}

func TestHandleCommand_escapesMarkdown(t *testing.T) {
	sensors := &fakeSensors{
		states: []models.SensorState{{
			Name:       "john_smith SquashLevels Level Now",
			UniqueID:   "777_level_now",
			State:      1500.0,
			Attributes: models.SensorAttributes{UnitOfMeasurement: "level", LastUpdated: "2024-03-02 09:00:00"},
		}},
		status: models.ServiceStatus{
			PlayerID:   "777",
			PlayerName: "john_smith",
			Auth:       models.AuthResult{Status: models.AuthFailed, Reason: "document status \"not_good\""},
		},
	}
	h := NewHandler(sensors, func(ctx context.Context) error {
		return errors.New("error polling player 777: [transport] *down*")
	})

	tests := map[string]struct {
		text string
		want []string
	}{
		"sensors":  {text: "/sensors", want: []string{"*john\\_smith SquashLevels Level Now*"}},
		"sensor":   {text: "/sensor john_smith", want: []string{"*john\\_smith SquashLevels Level Now*"}},
		"no match": {text: "/sensor x_y", want: []string{"No sensor matching 'x\\_y'"}},
		"status":   {text: "/status", want: []string{"*john\\_smith* (777)", "Reason: document status \"not\\_good\""}},
		"refresh":  {text: "/refresh", want: []string{"\\[transport] \\*down\\*"}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			msg := h.HandleCommand(context.Background(), commandUpdate(tc.text))
			for _, w := range tc.want {
				if !strings.Contains(msg.Text, w) {
					t.Errorf("expected reply to contain %q, got:\n%s", w, msg.Text)
				}
			}
		})
	}
}
