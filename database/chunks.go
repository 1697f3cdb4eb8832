package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docuquery/docuquery/helper"
	"github.com/docuquery/docuquery/model"
	loadSql "github.com/docuquery/docuquery/sql"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	ReplaceDocumentChunks(ctx context.Context, documentRID uuid.UUID, chunks []*model.Chunk) error
	DeleteChunksByDocument(ctx context.Context, documentRID uuid.UUID) (int, error)
	SelectChunksByDocument(documentRID uuid.UUID) ([]*model.Chunk, error)
	SelectChunksBySimilarity(embedding []float32, limit int, documentRIDs []uuid.UUID) ([]*model.Chunk, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// ReplaceDocumentChunks atomically replaces all chunks of a document.
// Prior chunks are removed and the new set inserted in one transaction,
// so the index never holds a partial or duplicated state for the document.
// An advisory lock on the document RID serializes concurrent writers to the
// same document; writers to different documents do not interfere.
func (h *ChunksDBHandler) ReplaceDocumentChunks(ctx context.Context, documentRID uuid.UUID, chunks []*model.Chunk) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT lock_document($1)`, documentRID)
	if err != nil {
		return helper.NewError("lock document", err)
	}

	_, err = tx.ExecContext(ctx, `SELECT delete_chunks_by_document($1)`, documentRID)
	if err != nil {
		return helper.NewError("delete prior chunks", err)
	}

	for i, chunk := range chunks {
		row := tx.QueryRowContext(
			ctx,
			`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			documentRID,
			chunk.ChunkID,
			chunk.Content,
			pgvector.NewVector(chunk.Embedding),
			chunk.StartPos,
			chunk.EndPos,
			chunk.ChunkIndex,
			chunk.TotalChunks,
			chunk.Metadata,
		)

		err := row.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.DocumentRID,
			&chunk.ChunkID,
			&chunk.Content,
			&chunk.StartPos,
			&chunk.EndPos,
			&chunk.ChunkIndex,
			&chunk.TotalChunks,
			&chunk.Metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	_, err = tx.ExecContext(ctx, `SELECT update_document_chunk_count($1, $2)`, documentRID, len(chunks))
	if err != nil {
		return helper.NewError("update chunk count", err)
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

// DeleteChunksByDocument removes every chunk belonging to the document.
// Deleting chunks of a non-existent document is a no-op, returns 0.
func (h *ChunksDBHandler) DeleteChunksByDocument(ctx context.Context, documentRID uuid.UUID) (int, error) {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return 0, helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT lock_document($1)`, documentRID)
	if err != nil {
		return 0, helper.NewError("lock document", err)
	}

	var deleted int
	err = tx.QueryRowContext(ctx, `SELECT delete_chunks_by_document($1)`, documentRID).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("delete chunks", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, helper.NewError("commit transaction", err)
	}

	return deleted, nil
}

// SelectChunksByDocument retrieves all chunks for a document ordered by index
func (h *ChunksDBHandler) SelectChunksByDocument(documentRID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_document($1)`,
		documentRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.DocumentRID,
			&chunk.ChunkID,
			&chunk.Content,
			&chunk.StartPos,
			&chunk.EndPos,
			&chunk.ChunkIndex,
			&chunk.TotalChunks,
			&chunk.Metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity performs vector similarity search.
// Results are ordered by ascending cosine distance, ties broken by chunk
// index, and never exceed limit. If documentRIDs is nil or empty, searches
// across all documents.
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, limit int, documentRIDs []uuid.UUID) ([]*model.Chunk, error) {
	if limit <= 0 {
		return nil, nil
	}

	// Convert documentRIDs to PostgreSQL UUID array format
	var documentRIDsParam interface{}
	if len(documentRIDs) > 0 {
		documentRIDsParam = pq.Array(documentRIDs)
	} else {
		documentRIDsParam = nil
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3)`,
		pgvector.NewVector(embedding),
		limit,
		documentRIDsParam,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.DocumentRID,
			&chunk.ChunkID,
			&chunk.Content,
			&chunk.StartPos,
			&chunk.EndPos,
			&chunk.ChunkIndex,
			&chunk.TotalChunks,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}
