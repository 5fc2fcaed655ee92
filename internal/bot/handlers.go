package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/omarshaarawi/squashbot/internal/models"
)

type SensorService interface {
	Sensors() []models.SensorState
	Find(query string) []models.SensorState
	Status() models.ServiceStatus
}

type RefreshFunc func(ctx context.Context) error

type Handler struct {
	sensors SensorService
	refresh RefreshFunc
}

func NewHandler(sensors SensorService, refresh RefreshFunc) *Handler {
	return &Handler{sensors: sensors, refresh: refresh}
}

func (h *Handler) HandleCommand(ctx context.Context, update tgbotapi.Update) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(update.Message.Chat.ID, "")
	command := strings.ToLower(update.Message.Command())
	args := update.Message.CommandArguments()
	msg.ParseMode = "Markdown"

	switch command {
	case "start":
		msg.Text = "Welcome to SquashBot! Use /help to see available commands."
	case "help":
		msg.Text = "Available commands:\n/sensors - List all sensors\n/sensor <name> - Show a single sensor\n/status - Show session status\n/refresh - Poll SquashLevels now"
	case "sensors":
		h.handleSensors(&msg)
	case "sensor":
		h.handleSensor(&msg, args)
	case "status":
		h.handleStatus(&msg)
	case "refresh":
		h.handleRefresh(ctx, &msg)
	default:
		msg.Text = "Unknown command. Use /help to see available commands."
	}

	return msg
}

func (h *Handler) handleSensors(msg *tgbotapi.MessageConfig) {
	states := h.sensors.Sensors()
	if len(states) == 0 {
		msg.Text = "No sensors registered yet."
		return
	}

	var sb strings.Builder
	sb.WriteString("🎾 *SquashLevels Sensors*\n\n")
	for _, st := range states {
		sb.WriteString(formatState(st))
	}
	msg.Text = sb.String()
}

func (h *Handler) handleSensor(msg *tgbotapi.MessageConfig, args string) {
	if args == "" {
		msg.Text = "Please provide a sensor name. Usage: /sensor <name>"
		return
	}
	found := h.sensors.Find(args)
	if len(found) == 0 {
		msg.Text = fmt.Sprintf("No sensor matching '%s'", escape(args))
		return
	}
	msg.Text = formatState(found[0])
}

func (h *Handler) handleStatus(msg *tgbotapi.MessageConfig) {
	status := h.sensors.Status()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* (%s)\n", escape(status.PlayerName), escape(status.PlayerID)))
	sb.WriteString(fmt.Sprintf("Session: %s\n", status.Auth.Status))
	if status.Auth.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason: %s\n", escape(status.Auth.Reason)))
	}
	sb.WriteString(fmt.Sprintf("Sensors: %d\n", status.Sensors))
	if !status.LastFetched.IsZero() {
		sb.WriteString(fmt.Sprintf("Last fetched: %s\n", status.LastFetched.Format("2006-01-02 15:04:05")))
	}
	msg.Text = sb.String()
}

func (h *Handler) handleRefresh(ctx context.Context, msg *tgbotapi.MessageConfig) {
	if err := h.refresh(ctx); err != nil {
		msg.Text = fmt.Sprintf("Error refreshing sensors: %s", escape(err.Error()))
		return
	}
	msg.Text = "Sensors refreshed."
}

func formatState(st models.SensorState) string {
	value := "unknown"
	if st.State != nil {
		value = escape(fmt.Sprint(st.State))
	}
	return fmt.Sprintf("*%s*\n   %s %s (updated %s)\n", escape(st.Name), value, escape(st.Attributes.UnitOfMeasurement), st.Attributes.LastUpdated)
}

// escape quotes text for legacy Markdown. Player names often carry
// underscores, which Telegram would otherwise read as an open italic.
func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}
