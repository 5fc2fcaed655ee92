package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/omarshaarawi/squashbot/internal/models"
)

const (
	PublicDocument        = "player_public.json"
	AuthenticatedDocument = "player_authenticated.json"
)

// LoadDocument decodes a fixture the same way the client decodes responses.
func LoadDocument(t *testing.T, name string) *models.Document {
	t.Helper()

	b, err := squashdata.ReadFile(fmt.Sprintf("squashdata/%s", name))
	if err != nil {
		t.Fatalf("error reading squashdata/%s: %v", name, err)
	}
	return ParseDocument(t, string(b))
}

func ParseDocument(t *testing.T, raw string) *models.Document {
	t.Helper()

	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()
	var doc models.Document
	if err := dec.Decode(&doc); err != nil {
		t.Fatalf("error decoding document: %v", err)
	}
	return &doc
}
