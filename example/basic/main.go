package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/docuquery/docuquery"
	"github.com/docuquery/docuquery/helper"
	"github.com/docuquery/docuquery/model"
	"github.com/google/uuid"
)

const sampleContent = `PT Contoh Sejahtera reported strong results for fiscal year 2024.

Total current assets (aset lancar) amounted to 120 billion rupiah, an increase
of eight percent over the prior year. Cash and equivalents made up roughly a
third of that figure.

Annual revenue (pendapatan tahunan) grew by twelve percent to 450 billion
rupiah, driven mainly by the consumer segment.

Operating expenses stayed flat, which lifted the operating margin to
fourteen percent.`

// echoGenerator stands in for a real LLM backend. It just restates the
// retrieved context, which is enough to demonstrate the full cycle.
type echoGenerator struct{}

func (g *echoGenerator) Generate(ctx context.Context, question string, contextText string) (string, error) {
	if strings.TrimSpace(contextText) == "" {
		return "I could not find anything relevant in the indexed documents.", nil
	}
	first := strings.SplitN(contextText, "\n\n", 2)[0]
	return fmt.Sprintf("Based on the indexed documents: %s", first), nil
}

func (g *echoGenerator) Provider() string { return "example" }
func (g *echoGenerator) Model() string    { return "echo" }

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	dq, err := docuquery.NewDocuQuery(dbConfig, 384, "./query_logs")
	if err != nil {
		log.Fatalf("Failed to create docuquery: %v", err)
	}
	defer dq.Close()

	// Set up the default pipeline (fixed chunking + multilingual embeddings).
	// The first run downloads the embedding model.
	if err := dq.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}
	dq.SetGenerator(&echoGenerator{})

	doc := &model.Document{
		Name:    "Annual Report 2024",
		Source:  "basic_example",
		Content: sampleContent,
		Metadata: model.Metadata{
			"company": "PT Contoh Sejahtera",
			"year":    2024,
		},
	}

	fmt.Println("Ingesting document...")
	numChunks, err := dq.Ingest(context.Background(), doc)
	if err != nil {
		log.Fatalf("Failed to ingest document: %v", err)
	}
	fmt.Printf("Document inserted with ID: %s\n", doc.RID)
	fmt.Printf("Indexed %d chunks\n", numChunks)

	// Ask a question against the index
	question := "Berapa aset lancar?"
	fmt.Printf("\nAsking: %s\n", question)

	response, err := dq.Query(context.Background(), question, nil, uuid.Nil)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n", response.Answer)
	fmt.Printf("Retrieved %d chunks, %d characters of context, took %.1f ms\n",
		response.Trace.ResultCount, response.Trace.TotalContextChars, response.ResponseTimeMS)
	if len(response.Trace.KeywordMatches) > 0 {
		fmt.Printf("Keyword matches: %s\n", strings.Join(response.Trace.KeywordMatches, ", "))
	}

	// Query log analytics
	stats, err := dq.QueryStatistics(time.Now().Format("2006-01-02"))
	if err != nil {
		log.Fatalf("Failed to read query statistics: %v", err)
	}
	fmt.Printf("\nQueries today: %d, avg response time: %.1f ms\n",
		stats.TotalQueries, stats.AvgResponseTimeMS)
}
