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
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(doc *model.Document) error
	SelectDocument(rid uuid.UUID) (*model.Document, error)
	SelectAllDocuments(lastCreatedAt *time.Time, limit int) ([]*model.Document, error)
	UpdateChunkCount(rid uuid.UUID, chunkCount int) error
	DeleteDocument(rid uuid.UUID) (bool, error)
	DocumentCount() (int64, error)
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It initializes the database connection and loads document-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := loadSql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		log.Panicf("error initializing documents table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument inserts a new document
func (h *DocumentsDBHandler) InsertDocument(doc *model.Document) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_document($1, $2, $3)`,
		doc.Name,
		doc.Source,
		doc.Metadata,
	)

	err := row.Scan(
		&doc.ID,
		&doc.RID,
		&doc.Name,
		&doc.Source,
		&doc.ChunkCount,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by RID
func (h *DocumentsDBHandler) SelectDocument(rid uuid.UUID) (*model.Document, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document($1)`,
		rid,
	)

	doc := &model.Document{}
	err := row.Scan(
		&doc.ID,
		&doc.RID,
		&doc.Name,
		&doc.Source,
		&doc.ChunkCount,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectAllDocuments retrieves documents newest first, keyset-paginated by
// lastCreatedAt. A nil lastCreatedAt starts from the newest document.
func (h *DocumentsDBHandler) SelectAllDocuments(lastCreatedAt *time.Time, limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_documents($1, $2)`,
		lastCreatedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.RID,
			&doc.Name,
			&doc.Source,
			&doc.ChunkCount,
			&doc.Metadata,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		docs = append(docs, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return docs, nil
}

// UpdateChunkCount updates the stored chunk count of a document
func (h *DocumentsDBHandler) UpdateChunkCount(rid uuid.UUID, chunkCount int) error {
	_, err := h.db.Instance.Exec(
		`SELECT update_document_chunk_count($1, $2)`,
		rid,
		chunkCount,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteDocument deletes a document by RID, cascading to its chunks.
// Deleting a non-existent RID is a no-op and returns false.
func (h *DocumentsDBHandler) DeleteDocument(rid uuid.UUID) (bool, error) {
	var deleted bool
	err := h.db.Instance.QueryRow(
		`SELECT delete_document($1)`,
		rid,
	).Scan(&deleted)
	if err != nil {
		return false, helper.NewError("exec", err)
	}
	return deleted, nil
}

// DocumentCount returns the number of documents in the index
func (h *DocumentsDBHandler) DocumentCount() (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(`SELECT count_documents()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}
