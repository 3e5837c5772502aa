package neo4jstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/persistorai/relations/internal/models"
)

// recordNode maps a row projected with nodeReturn to a models.Node.
func recordNode(record *neo4j.Record) (*models.Node, error) {
	n := models.Node{
		ID:        recordString(record, "id"),
		Type:      recordString(record, "type"),
		Label:     recordString(record, "label"),
		CreatedAt: recordTime(record, "created_at"),
		UpdatedAt: recordTime(record, "updated_at"),
	}

	props := recordString(record, "properties")
	if props == "" {
		n.Properties = map[string]any{}

		return &n, nil
	}

	if err := json.Unmarshal([]byte(props), &n.Properties); err != nil {
		return nil, fmt.Errorf("unmarshalling node properties: %w", err)
	}

	return &n, nil
}

func recordString(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}

	if str, ok := val.(string); ok {
		return str
	}

	return ""
}

func recordBool(record *neo4j.Record, key string) bool {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return false
	}

	b, _ := val.(bool)

	return b
}

func recordTime(record *neo4j.Record, key string) time.Time {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return time.Time{}
	}

	if t, ok := val.(time.Time); ok {
		return t.UTC()
	}

	return time.Time{}
}
