// Package projector maps a player document to the scalar value published
// for one sensor key.
package projector

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/omarshaarawi/squashbot/internal/models"
)

const (
	KeyLevelNow      = "level_now"
	KeyDampedLevel   = "damped_level"
	KeyLastMatchDate = "last_match_date"
	KeyPointsScores  = "points_scores"
	KeyGamesScore    = "games_score"
	KeyMatches       = "matches"
	KeyMatchesWon    = "matches_won"
	KeyMatchesLost   = "matches_lost"

	DateLayout = "2006-01-02"

	// maxDateint is 9999-12-31T23:59:59Z, the last instant DateLayout can render.
	maxDateint = 253402300799
)

var (
	ErrMissingField = errors.New("missing field")
	ErrWrongType    = errors.New("unexpected field type")
)

type ProjectionError struct {
	Key  string
	Path string
	Err  error
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("projecting %s from %s: %v", e.Key, e.Path, e.Err)
}

func (e *ProjectionError) Unwrap() error {
	return e.Err
}

var knownKeys = map[string]bool{
	KeyLevelNow:      true,
	KeyDampedLevel:   true,
	KeyLastMatchDate: true,
	KeyPointsScores:  true,
	KeyGamesScore:    true,
	KeyMatches:       true,
	KeyMatchesWon:    true,
	KeyMatchesLost:   true,
}

// KnownKey reports whether key has a dedicated rule.
func KnownKey(key string) bool {
	return knownKeys[key]
}

// Project extracts the value for key. Keys without a dedicated rule are
// read from data.summary as-is.
func Project(doc *models.Document, key string) (any, error) {
	switch key {
	case KeyLevelNow, KeyDampedLevel:
		v, err := field(doc.Data.Summary, "data.summary", key)
		if err != nil {
			return nil, err
		}
		return number(v, key, "data.summary."+key)

	case KeyLastMatchDate:
		v, err := field(doc.Data.Summary, "data.summary", "last_dateint")
		if err != nil {
			return nil, &ProjectionError{Key: key, Path: "data.summary.last_dateint", Err: ErrMissingField}
		}
		ts, err := integer(v)
		if err != nil {
			return nil, &ProjectionError{Key: key, Path: "data.summary.last_dateint", Err: err}
		}
		if ts < 0 || ts > maxDateint {
			return nil, &ProjectionError{Key: key, Path: "data.summary.last_dateint", Err: fmt.Errorf("%w: timestamp %d out of range", ErrWrongType, ts)}
		}
		return time.Unix(ts, 0).UTC().Format(DateLayout), nil

	case KeyPointsScores, KeyGamesScore:
		if len(doc.Data.Matches) == 0 {
			return nil, &ProjectionError{Key: key, Path: "data.matches[0]", Err: ErrMissingField}
		}
		return field(doc.Data.Matches[0], "data.matches[0]", key)

	case KeyMatches, KeyMatchesWon, KeyMatchesLost:
		if doc.Data.Statistics == nil {
			return nil, &ProjectionError{Key: key, Path: "data.statistics", Err: ErrMissingField}
		}
		return field(doc.Data.Statistics, "data.statistics", key)

	default:
		return field(doc.Data.Summary, "data.summary", key)
	}
}

// Identity returns the player id and name used for sensor naming.
func Identity(doc *models.Document) (string, string, error) {
	id, err := field(doc.Data.Summary, "data.summary", "playerid")
	if err != nil {
		return "", "", err
	}
	name, err := field(doc.Data.Summary, "data.summary", "player_name")
	if err != nil {
		return "", "", err
	}
	return fmt.Sprint(id), fmt.Sprint(name), nil
}

func field(m map[string]any, path, key string) (any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, &ProjectionError{Key: key, Path: path + "." + key, Err: ErrMissingField}
	}
	return v, nil
}

func number(v any, key, path string) (any, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, &ProjectionError{Key: key, Path: path, Err: fmt.Errorf("%w: %v", ErrWrongType, err)}
		}
		return f, nil
	case float64:
		return n, nil
	case string:
		// Levels occasionally arrive quoted.
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, &ProjectionError{Key: key, Path: path, Err: fmt.Errorf("%w: %q", ErrWrongType, n)}
		}
		return f, nil
	default:
		return nil, &ProjectionError{Key: key, Path: path, Err: fmt.Errorf("%w: %T", ErrWrongType, v)}
	}
}

func integer(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrWrongType, err)
		}
		return floatToInt(f)
	case float64:
		return floatToInt(n)
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrWrongType, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrWrongType, v)
	}
}

func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v out of range", ErrWrongType, f)
	}
	return int64(f), nil
}
