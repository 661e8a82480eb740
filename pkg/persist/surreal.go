package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"emotebot/pkg/surreal"
)

// Querier is the subset of surreal.Client the surreal backend needs.
type Querier interface {
	Query(ctx context.Context, sql string, vars map[string]interface{}) (interface{}, error)
}

// SurrealBackend stores each document as the doc field of one record in table,
// keyed by document name.
type SurrealBackend struct {
	client Querier
	table  string
}

func NewSurrealBackend(client Querier, table string) (*SurrealBackend, error) {
	if err := surreal.ValidateIdentifier(table); err != nil {
		return nil, err
	}
	return &SurrealBackend{client: client, table: table}, nil
}

// Init defines the snapshot table when it does not exist yet.
func (b *SurrealBackend) Init(ctx context.Context) error {
	query := fmt.Sprintf(`
		DEFINE TABLE IF NOT EXISTS %[1]s SCHEMAFULL;
		DEFINE FIELD IF NOT EXISTS doc ON %[1]s TYPE string;
		DEFINE FIELD IF NOT EXISTS updated_at ON %[1]s TYPE int;
	`, b.table)
	_, err := b.client.Query(ctx, query, map[string]interface{}{})
	return err
}

func (b *SurrealBackend) Load(ctx context.Context, name string, dest any) error {
	query := fmt.Sprintf(`SELECT doc FROM type::thing("%s", $name);`, b.table)
	result, err := b.client.Query(ctx, query, map[string]interface{}{"name": name})
	if err != nil {
		return fmt.Errorf("failed to load %s from surrealdb: %w", name, err)
	}

	doc, ok := extractDoc(result)
	if !ok || doc == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(doc), dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func (b *SurrealBackend) Save(ctx context.Context, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	query := fmt.Sprintf(`
		UPSERT type::thing("%s", $name)
		SET doc = $doc, updated_at = time::unix();
	`, b.table)
	if _, err := b.client.Query(ctx, query, map[string]interface{}{
		"name": name,
		"doc":  string(data),
	}); err != nil {
		return fmt.Errorf("failed to save %s to surrealdb: %w", name, err)
	}
	return nil
}

// extractDoc finds the doc field of the first row. Rows arrive either bare or
// wrapped in a {"result": rows} statement envelope.
func extractDoc(result interface{}) (string, bool) {
	rows, ok := result.([]interface{})
	if !ok || len(rows) == 0 {
		return "", false
	}

	first, ok := rows[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	if inner, ok := first["result"]; ok {
		return extractDoc(inner)
	}

	doc, ok := first["doc"].(string)
	return doc, ok
}
