package bot

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/omarshaarawi/squashbot/internal/models"
)

// ChangeNotifier forwards a sensor state only when its value differs from
// the last one seen for that sensor. The first state seen is recorded
// silently.
type ChangeNotifier struct {
	send func(string)

	mu   sync.Mutex
	last map[string]any
}

func NewChangeNotifier(send func(string)) *ChangeNotifier {
	return &ChangeNotifier{send: send, last: map[string]any{}}
}

func (n *ChangeNotifier) Notify(state models.SensorState) {
	n.mu.Lock()
	prev, seen := n.last[state.UniqueID]
	n.last[state.UniqueID] = state.State
	n.mu.Unlock()

	if !seen || reflect.DeepEqual(prev, state.State) {
		return
	}
	n.send(fmt.Sprintf("📈 *%s*\n%s → %s %s",
		escape(state.Name),
		escape(fmt.Sprint(prev)),
		escape(fmt.Sprint(state.State)),
		escape(state.Attributes.UnitOfMeasurement),
	))
}
