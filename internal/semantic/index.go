// Package semantic maintains the vector half of the dual-storage model: an
// append-only map from node-scoped free text to embeddings, supporting
// nearest-neighbor retrieval scoped by node and by board.
//
// Vectors are a derived, rebuildable cache over the structured store's text,
// persisted only because recomputing embeddings is expensive. When no
// embedding provider is configured the index is fully inert: writes become
// no-ops and searches return empty, so core graph operations never depend
// on it.
package semantic

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/techfulness/getsticky/internal/llm"
)

// embedderFactory allows injection for testing.
var embedderFactory = llm.NewEmbedder

// DefaultEmbedTimeout bounds each embedding-provider call.
const DefaultEmbedTimeout = 15 * time.Second

// Record is one stored vector-context row.
type Record struct {
	ID        string    `json:"id"`
	NodeID    string    `json:"nodeId"`
	BoardID   string    `json:"boardId"`
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Result is one nearest-neighbor hit.
type Result struct {
	Record
	Score float32 `json:"score"`
}

// Index stores embeddings in the shared sqlite database.
type Index struct {
	db      *sql.DB
	cfg     llm.Config
	enabled bool
	timeout time.Duration
}

const vectorSchema = `
CREATE TABLE IF NOT EXISTS vector_contexts (
	id TEXT PRIMARY KEY,
	node_id TEXT NOT NULL,
	board_id TEXT NOT NULL,
	text TEXT NOT NULL,
	embedding BLOB,
	source TEXT NOT NULL DEFAULT 'user',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vector_contexts_node ON vector_contexts(node_id);
CREATE INDEX IF NOT EXISTS idx_vector_contexts_board ON vector_contexts(board_id);
`

// NewIndex creates the vector table on the shared handle. The index is
// enabled only when the provider configuration is complete; otherwise every
// operation degrades to a safe no-op.
func NewIndex(db *sql.DB, cfg llm.Config) (*Index, error) {
	if _, err := db.Exec(vectorSchema); err != nil {
		return nil, fmt.Errorf("create vector schema: %w", err)
	}
	idx := &Index{
		db:      db,
		cfg:     cfg,
		enabled: cfg.Enabled(),
		timeout: DefaultEmbedTimeout,
	}
	if !idx.enabled {
		slog.Debug("semantic index disabled", "provider", cfg.Provider)
	}
	return idx, nil
}

// Enabled reports whether the index will actually embed and search.
func (x *Index) Enabled() bool {
	return x.enabled
}

// embed generates one embedding, bounded by the index timeout.
func (x *Index) embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, x.timeout)
	defer cancel()

	embedder, err := embedderFactory(ctx, x.cfg)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	vecs, err := embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("generate embedding: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vec := make([]float32, len(vecs[0]))
	for i, v := range vecs[0] {
		vec[i] = float32(v)
	}
	return vec, nil
}

// AddContext embeds text and stores the vector record. Provider failures
// propagate when the index is enabled; with the index disabled this is a
// silent no-op.
func (x *Index) AddContext(ctx context.Context, nodeID, boardID, text, source string) error {
	if !x.enabled || text == "" {
		return nil
	}

	vec, err := x.embed(ctx, text)
	if err != nil {
		return err
	}

	_, err = x.db.Exec(`
		INSERT INTO vector_contexts (id, node_id, board_id, text, embedding, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, "v-"+uuid.New().String()[:8], nodeID, boardID, text, float32SliceToBytes(vec), source,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert vector context: %w", err)
	}
	return nil
}

// Search embeds the query and returns up to limit nearest records by cosine
// similarity, optionally filtered to one board. Returns empty when the
// index is disabled.
func (x *Index) Search(ctx context.Context, query string, limit int, boardID string) ([]Result, error) {
	return x.search(ctx, query, limit, boardID, "")
}

// SearchInNode restricts the search to one node's contexts.
func (x *Index) SearchInNode(ctx context.Context, nodeID, query string, limit int) ([]Result, error) {
	return x.search(ctx, query, limit, "", nodeID)
}

func (x *Index) search(ctx context.Context, query string, limit int, boardID, nodeID string) ([]Result, error) {
	if !x.enabled {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	queryVec, err := x.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	sqlQuery := "SELECT id, node_id, board_id, text, embedding, source, created_at FROM vector_contexts"
	var args []any
	switch {
	case nodeID != "":
		sqlQuery += " WHERE node_id = ?"
		args = append(args, nodeID)
	case boardID != "":
		sqlQuery += " WHERE board_id = ?"
		args = append(args, boardID)
	}

	rows, err := x.db.Query(sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("query vector contexts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []Result
	for rows.Next() {
		var r Result
		var blob []byte
		var createdAt string
		if err := rows.Scan(&r.ID, &r.NodeID, &r.BoardID, &r.Text, &blob, &r.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scan vector context: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if len(blob) == 0 {
			continue
		}
		r.Score = CosineSimilarity(queryVec, bytesToFloat32Slice(blob))
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// UpdateContext replaces the record(s) for (nodeID, oldText) with a freshly
// embedded newText. Embeddings are a function of the text and cannot be
// patched in place.
func (x *Index) UpdateContext(ctx context.Context, nodeID, oldText, newText, source string) error {
	if !x.enabled {
		return nil
	}
	// Board scope must be read before the delete: when the replaced record
	// is the node's only one, nothing is left to recover it from.
	boardID := x.boardForNode(nodeID)
	if _, err := x.db.Exec(
		"DELETE FROM vector_contexts WHERE node_id = ? AND text = ?", nodeID, oldText,
	); err != nil {
		return fmt.Errorf("delete stale vector context: %w", err)
	}
	return x.AddContext(ctx, nodeID, boardID, newText, source)
}

// boardForNode recovers the board scope from the node's remaining records.
func (x *Index) boardForNode(nodeID string) string {
	var boardID string
	err := x.db.QueryRow(
		"SELECT board_id FROM vector_contexts WHERE node_id = ? LIMIT 1", nodeID,
	).Scan(&boardID)
	if err != nil {
		return ""
	}
	return boardID
}

// DeleteNodeContexts removes every record for a node. Idempotent: removing
// from an empty scope is not an error. Runs even when the index is
// disabled so stale vectors from an earlier enabled run are still purged.
func (x *Index) DeleteNodeContexts(nodeID string) error {
	if _, err := x.db.Exec("DELETE FROM vector_contexts WHERE node_id = ?", nodeID); err != nil {
		return fmt.Errorf("delete node vector contexts: %w", err)
	}
	return nil
}

// DeleteBoardContexts removes every record for a board. Idempotent.
func (x *Index) DeleteBoardContexts(boardID string) error {
	if _, err := x.db.Exec("DELETE FROM vector_contexts WHERE board_id = ?", boardID); err != nil {
		return fmt.Errorf("delete board vector contexts: %w", err)
	}
	return nil
}
