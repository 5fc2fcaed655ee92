package sensor

import (
	"fmt"

	"github.com/omarshaarawi/squashbot/internal/models"
	"github.com/omarshaarawi/squashbot/internal/projector"
)

type Descriptor struct {
	Key  string
	Unit string
	Icon string
}

// Baseline sensors are published for every player.
var Baseline = []Descriptor{
	{Key: projector.KeyLevelNow, Unit: "level", Icon: "mdi:racquetball"},
	{Key: projector.KeyDampedLevel, Unit: "level", Icon: "mdi:racquetball"},
	{Key: projector.KeyLastMatchDate, Unit: "date", Icon: "mdi:calendar"},
	{Key: projector.KeyPointsScores, Unit: "score", Icon: "mdi:racquetball"},
	{Key: projector.KeyGamesScore, Unit: "score", Icon: "mdi:racquetball"},
}

// Statistics sensors need a logged-in session.
var Statistics = []Descriptor{
	{Key: projector.KeyMatches, Unit: "matches", Icon: "mdi:counter"},
	{Key: projector.KeyMatchesWon, Unit: "matches", Icon: "mdi:trophy"},
	{Key: projector.KeyMatchesLost, Unit: "matches", Icon: "mdi:trophy-broken"},
}

// Descriptors returns the sensor set for the given session state.
func Descriptors(auth models.AuthResult) []Descriptor {
	descs := make([]Descriptor, 0, len(Baseline)+len(Statistics))
	descs = append(descs, Baseline...)
	if auth.Status == models.Authenticated {
		descs = append(descs, Statistics...)
	}
	return descs
}

// Validate rejects duplicate keys and keys without a projection rule.
func Validate(descs []Descriptor) error {
	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		if !projector.KnownKey(d.Key) {
			return fmt.Errorf("unknown sensor key %q", d.Key)
		}
		if seen[d.Key] {
			return fmt.Errorf("duplicate sensor key %q", d.Key)
		}
		seen[d.Key] = true
	}
	return nil
}
