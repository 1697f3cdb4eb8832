package docuquery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/docuquery/docuquery/core/pipeline"
	"github.com/docuquery/docuquery/core/retrieval"
	"github.com/docuquery/docuquery/database"
	"github.com/docuquery/docuquery/helper"
	"github.com/docuquery/docuquery/model"
	"github.com/docuquery/docuquery/querylog"
	loadSql "github.com/docuquery/docuquery/sql"
	"github.com/google/uuid"
)

// maxLoggedChunks bounds the ranked chunks recorded per log entry
const maxLoggedChunks = 10

// DocuQuery provides a unified interface to the retrieval core:
// document ingestion, vector search, answer generation and query logging
type DocuQuery struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Chunks    *database.ChunksDBHandler
	Pipeline  *pipeline.Pipeline // Optional chunking pipeline
	Engine    *retrieval.Engine
	Logs      *querylog.Logger
	Generator retrieval.Generator // Optional, Query fails without it
	// Logging
	log *slog.Logger
}

// NewDocuQuery creates a new DocuQuery instance with all handlers initialized.
// Query logs are written as day-partitioned JSONL files under logDir.
func NewDocuQuery(config *helper.DatabaseConfiguration, embeddingDim int, logDir string) (*DocuQuery, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("docuquery", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create handlers in dependency order (documents first, then chunks)
	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	logs, err := querylog.NewLogger(logDir, logger)
	if err != nil {
		return nil, helper.NewError("create query logger", err)
	}

	return &DocuQuery{
		DB:        db,
		Documents: documents,
		Chunks:    chunks,
		Engine:    retrieval.NewEngine(chunks),
		Logs:      logs,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (d *DocuQuery) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// SetPipeline sets the chunking pipeline for document processing
func (d *DocuQuery) SetPipeline(pipeline *pipeline.Pipeline) {
	d.Pipeline = pipeline
}

// SetGenerator sets the external answer generator used by Query
func (d *DocuQuery) SetGenerator(generator retrieval.Generator) {
	d.Generator = generator
}

// UseDefaultPipeline sets up the default chunking and embedding pipeline:
// FixedChunker with 500 char chunks and 50 char overlap, and the
// multilingual MiniLM embedder (384 dimensions). Loading the model can take
// a while on first call.
func (d *DocuQuery) UseDefaultPipeline() error {
	embedder, batchEmbedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	p := pipeline.NewPipeline(pipeline.DefaultChunker(), embedder)
	p.SetBatchEmbedder(batchEmbedder)
	p.ModelID = pipeline.DefaultEmbeddingModel

	d.Pipeline = p
	return nil
}

// Ingest processes a document by:
// 1. Inserting the document metadata (without content)
// 2. Processing the content into embedded chunks using the pipeline
// 3. Atomically replacing the document's chunks in the index
// The document's Content field is used for processing but not stored in the
// database. Re-ingesting a document with the same RID replaces its chunks
// without leaving stale ones behind.
// Returns the number of chunks indexed and any error encountered.
func (d *DocuQuery) Ingest(ctx context.Context, doc *model.Document) (int, error) {
	if d.Pipeline == nil {
		return 0, helper.NewError("ingest document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	if doc.Content == "" {
		return 0, helper.NewError("ingest document", fmt.Errorf("document content is empty"))
	}

	// Store content temporarily and clear it before DB insert
	content := doc.Content
	doc.Content = ""

	if doc.RID == uuid.Nil {
		if err := d.Documents.InsertDocument(doc); err != nil {
			return 0, helper.NewError("insert document", err)
		}
		d.log.Info("Inserted document", slog.String("document_id", doc.RID.String()), slog.String("name", doc.Name))
	}

	chunks, err := d.Pipeline.Process(content, doc.RID)
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}

	d.log.Info("Processed document into chunks", slog.Int("num_chunks", len(chunks)), slog.String("document_id", doc.RID.String()))

	if err := d.Chunks.ReplaceDocumentChunks(ctx, doc.RID, chunks); err != nil {
		return 0, helper.NewError("replace document chunks", err)
	}
	doc.ChunkCount = len(chunks)

	return len(chunks), nil
}

// IngestFile reads a plain text file and ingests it as a document
func (d *DocuQuery) IngestFile(ctx context.Context, filePath string, metadata model.Metadata) (*model.Document, error) {
	doc, err := model.NewDocumentFromFile(filePath, metadata)
	if err != nil {
		return nil, helper.NewError("read document file", err)
	}

	if _, err := d.Ingest(ctx, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// Remove deletes a document and all its chunks from the index.
// Removing an unknown RID is a no-op and returns false.
func (d *DocuQuery) Remove(ctx context.Context, rid uuid.UUID) (bool, error) {
	deleted, err := d.Documents.DeleteDocument(rid)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrRetrieval, err)
	}

	if deleted {
		d.log.Info("Removed document", slog.String("document_id", rid.String()))
	}

	return deleted, nil
}

// Search embeds a question and returns the ranked chunks without calling
// the generator
func (d *DocuQuery) Search(question string, config *model.QueryConfig) ([]model.SearchResult, error) {
	if d.Pipeline == nil || d.Pipeline.Embedder == nil {
		return nil, helper.NewError("search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}
	if config == nil {
		defaultConfig := model.DefaultQueryConfig()
		config = &defaultConfig
	}

	embedding, err := d.Pipeline.Embedder(question)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	return d.Engine.VectorRetrieve(embedding, config)
}

// Query runs a full question/answer cycle: embed the question, retrieve and
// assemble context, generate the answer under the configured timeout, and
// record the cycle in the query log. Log failures never fail the request,
// they are reported through the logger only. The reported response time is
// wall-clock from question embedding to answer receipt.
func (d *DocuQuery) Query(ctx context.Context, question string, config *model.QueryConfig, conversationID uuid.UUID) (*model.QueryResponse, error) {
	if d.Pipeline == nil || d.Pipeline.Embedder == nil {
		return nil, helper.NewError("query", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}
	if d.Generator == nil {
		return nil, helper.NewError("query", fmt.Errorf("generator not set, use SetGenerator() first"))
	}
	if config == nil {
		defaultConfig := model.DefaultQueryConfig()
		config = &defaultConfig
	}

	// Wall clock covers the whole retrieval, embedding the question included
	start := time.Now()

	embedding, err := d.Pipeline.Embedder(question)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	contextText, trace, err := d.Engine.AnswerContext(question, embedding, config)
	if err != nil {
		return nil, err
	}

	answer, genErr := retrieval.GenerateWithTimeout(ctx, d.Generator, question, contextText, config.GenerationTimeout)
	responseTime := float64(time.Since(start).Microseconds()) / 1000.0

	entry := d.buildLogEntry(question, config, conversationID, trace, answer, responseTime)
	if logErr := d.Logs.Record(entry); logErr != nil {
		// Out-of-band only, the answer (or the generation error) wins
		d.log.Error("Failed to record query", slog.String("error", logErr.Error()))
	}

	if genErr != nil {
		if errors.Is(genErr, model.ErrGenerationTimeout) {
			return nil, genErr
		}
		return nil, helper.NewError("generate answer", genErr)
	}

	return &model.QueryResponse{
		Answer:         answer,
		ConversationID: conversationID,
		EntryID:        entry.EntryID,
		Trace:          trace,
		ResponseTimeMS: responseTime,
	}, nil
}

func (d *DocuQuery) buildLogEntry(question string, config *model.QueryConfig, conversationID uuid.UUID, trace *model.RetrievalTrace, answer string, responseTime float64) *model.LogEntry {
	// "all" marks an unscoped query in the log
	fileID := "all"
	if len(config.DocumentRIDs) == 1 {
		fileID = config.DocumentRIDs[0].String()
	} else if len(config.DocumentRIDs) > 1 {
		fileID = "multiple"
	}

	// All ranked results are logged, not just the budget-admitted ones,
	// so the log keeps the retrieval ranking even under a tight context
	ranked := trace.Results
	if len(ranked) > maxLoggedChunks {
		ranked = ranked[:maxLoggedChunks]
	}
	topChunks := make([]model.RetrievedChunk, 0, len(ranked))
	for i, result := range ranked {
		topChunks = append(topChunks, model.NewRetrievedChunk(i+1, result))
	}

	entry := &model.LogEntry{
		Query: model.QueryInfo{
			Question: question,
			FileID:   fileID,
		},
		Models: model.ModelInfo{
			EmbeddingModel: d.Pipeline.ModelID,
			LLMProvider:    d.Generator.Provider(),
			LLMModel:       d.Generator.Model(),
		},
		Retrieval: model.RetrievalInfo{
			VectorResultsCount: trace.ResultCount,
			KeywordMatches:     trace.KeywordMatches,
			KeywordMatchCount:  len(trace.KeywordMatches),
			TotalContextChars:  trace.TotalContextChars,
			TopChunks:          topChunks,
		},
		Response: model.ResponseInfo{
			Answer:         answer,
			AnswerLength:   len(answer),
			ResponseTimeMS: responseTime,
		},
	}
	if conversationID != uuid.Nil {
		entry.Query.ConversationID = conversationID.String()
	}

	return entry
}

// RecentQueries returns the most recently recorded log entries, newest first
func (d *DocuQuery) RecentQueries(limit int) ([]*model.LogEntry, error) {
	return d.Logs.Recent(limit)
}

// SearchQueries returns log entries matching the filters
func (d *DocuQuery) SearchQueries(filters model.LogFilters) ([]*model.LogEntry, error) {
	return d.Logs.Search(filters)
}

// QueryStatistics aggregates one day's recorded queries
func (d *DocuQuery) QueryStatistics(date string) (*model.Statistics, error) {
	return d.Logs.Statistics(date)
}

// DocumentCount returns the number of documents in the index
func (d *DocuQuery) DocumentCount() (int64, error) {
	return d.Documents.DocumentCount()
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (d *DocuQuery) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return d.Chunks.ChangeIndexType(ctx, indexType, params)
}
