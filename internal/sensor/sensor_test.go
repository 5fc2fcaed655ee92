package sensor

import (
	"errors"
	"testing"
	"time"

	"github.com/omarshaarawi/squashbot/internal/models"
	"github.com/omarshaarawi/squashbot/internal/projector"
	"github.com/omarshaarawi/squashbot/internal/testutils"
)

var testNow = time.Date(2024, time.March, 2, 9, 30, 15, 0, time.UTC)

func TestDescriptors(t *testing.T) {
	tests := map[string]struct {
		auth models.AuthResult
		want int
	}{
		"anonymous":     {auth: models.AuthResult{Status: models.Anonymous}, want: 5},
		"failed":        {auth: models.AuthResult{Status: models.AuthFailed, Reason: "document status \"ok\""}, want: 5},
		"authenticated": {auth: models.AuthResult{Status: models.Authenticated}, want: 8},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			descs := Descriptors(tc.auth)
			if len(descs) != tc.want {
				t.Errorf("expected %d descriptors, got %d", tc.want, len(descs))
			}
			if err := Validate(descs); err != nil {
				t.Errorf("descriptor catalog should validate, got: %v", err)
			}
			for i, d := range Baseline {
				if descs[i] != d {
					t.Errorf("baseline descriptor %d out of order: %v", i, descs[i])
				}
			}
		})
	}
}

func TestDescriptors_doesNotAliasCatalog(t *testing.T) {
	descs := Descriptors(models.AuthResult{Status: models.Anonymous})
	descs[0].Key = "changed"
	if Baseline[0].Key != projector.KeyLevelNow {
		t.Errorf("baseline catalog was modified: %s", Baseline[0].Key)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]Descriptor{{Key: "club"}}); err == nil {
		t.Errorf("unknown key should not validate")
	}
	if err := Validate([]Descriptor{{Key: projector.KeyLevelNow}, {Key: projector.KeyLevelNow}}); err == nil {
		t.Errorf("duplicate key should not validate")
	}
}

func TestFriendly(t *testing.T) {
	tests := map[string]string{
		projector.KeyLevelNow:      "Level Now",
		projector.KeyDampedLevel:   "Damped Level",
		projector.KeyLastMatchDate: "Last Match Date",
		projector.KeyPointsScores:  "Last Points Scores",
		projector.KeyGamesScore:    "Last Games Score",
		projector.KeyMatches:       "Matches",
		projector.KeyMatchesWon:    "Matches Won",
		projector.KeyMatchesLost:   "Matches Lost",
	}
	for key, want := range tests {
		if got := Friendly(key); got != want {
			t.Errorf("Friendly(%s): expected '%s', got '%s'", key, want, got)
		}
	}
}

func TestNew_namesAndIDs(t *testing.T) {
	doc := testutils.LoadDocument(t, testutils.AuthenticatedDocument)

	seen := map[string]bool{}
	for _, d := range Descriptors(models.AuthResult{Status: models.Authenticated}) {
		s, err := New(d, doc, testNow)
		if err != nil {
			t.Fatalf("error creating sensor %s: %v", d.Key, err)
		}
		id := s.UniqueID()
		if id != "12345_"+d.Key {
			t.Errorf("unexpected unique id %s", id)
		}
		if seen[id] {
			t.Errorf("duplicate unique id %s", id)
		}
		seen[id] = true
	}

	s, err := New(Descriptor{Key: projector.KeyPointsScores, Unit: "score"}, doc, testNow)
	if err != nil {
		t.Fatalf("error should have been nil, was: %v", err)
	}
	if s.Name() != "Alice SquashLevels Last Points Scores" {
		t.Errorf("unexpected name: %s", s.Name())
	}
}

func TestNew_missingIdentity(t *testing.T) {
	doc := testutils.ParseDocument(t, `{"data":{"summary":{"level_now":1}}}`)

	s, err := New(Baseline[0], doc, testNow)
	if err == nil {
		t.Fatalf("error should not have been nil")
	}
	if s != nil {
		t.Errorf("sensor should have been nil")
	}
}

func TestNew_initialProjectionFails(t *testing.T) {
	doc := testutils.LoadDocument(t, testutils.PublicDocument)

	s, err := New(Statistics[0], doc, testNow)
	if !errors.Is(err, projector.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
	if s == nil {
		t.Fatalf("sensor should still be created")
	}
	if s.Value() != nil {
		t.Errorf("state should be nil, got %v", s.Value())
	}
}

func TestState(t *testing.T) {
	doc := testutils.LoadDocument(t, testutils.PublicDocument)

	s, err := New(Baseline[2], doc, testNow)
	if err != nil {
		t.Fatalf("error should have been nil, was: %v", err)
	}

	want := models.SensorState{
		Name:     "Alice SquashLevels Last Match Date",
		UniqueID: "12345_last_match_date",
		State:    "2023-11-14",
		Icon:     "mdi:calendar",
		Attributes: models.SensorAttributes{
			UnitOfMeasurement: "date",
			LastUpdated:       "2024-03-02 09:30:15",
		},
	}
	if got := s.State(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestUpdate(t *testing.T) {
	public := testutils.LoadDocument(t, testutils.PublicDocument)
	s, err := New(Baseline[0], public, testNow)
	if err != nil {
		t.Fatalf("error should have been nil, was: %v", err)
	}

	later := testNow.Add(time.Hour)
	next := testutils.ParseDocument(t, `{"data":{"summary":{"playerid":12345,"player_name":"Alice","level_now":2200}}}`)
	if err := s.Update(next, later); err != nil {
		t.Fatalf("error should have been nil, was: %v", err)
	}
	if s.Value() != 2200.0 {
		t.Errorf("expected 2200, got %v", s.Value())
	}
	if s.State().Attributes.LastUpdated != "2024-03-02 10:30:15" {
		t.Errorf("unexpected last updated %s", s.State().Attributes.LastUpdated)
	}

	// A failed projection keeps the previous state.
	broken := testutils.ParseDocument(t, `{"data":{"summary":{"playerid":12345,"player_name":"Alice"}}}`)
	if err := s.Update(broken, later.Add(time.Hour)); err == nil {
		t.Fatalf("error should not have been nil")
	}
	if s.Value() != 2200.0 {
		t.Errorf("value should be unchanged, got %v", s.Value())
	}
	if s.State().Attributes.LastUpdated != "2024-03-02 10:30:15" {
		t.Errorf("last updated should be unchanged, got %s", s.State().Attributes.LastUpdated)
	}
}
