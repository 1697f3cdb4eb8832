package querylog

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/docuquery/docuquery/helper"
	"github.com/docuquery/docuquery/model"
)

// Search returns all entries matching the filters, oldest first, with no
// implicit limit. An empty filter set returns every recorded entry.
func (l *Logger) Search(filters model.LogFilters) ([]*model.LogEntry, error) {
	var partitions []string
	if filters.Date != "" {
		ts, err := time.Parse(dateLayout, filters.Date)
		if err != nil {
			return nil, helper.NewError("parse date filter", err)
		}
		partitions = []string{l.partitionFile(ts)}
	} else {
		var err error
		partitions, err = l.partitions()
		if err != nil {
			return nil, err
		}
		sort.Strings(partitions)
	}

	var results []*model.LogEntry
	for _, partition := range partitions {
		entries, err := l.readPartition(partition)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			if filters.QuestionContains != "" &&
				!strings.Contains(strings.ToLower(entry.Query.Question), strings.ToLower(filters.QuestionContains)) {
				continue
			}
			if filters.FileID != "" && entry.Query.FileID != filters.FileID {
				continue
			}
			if filters.MinResponseTime > 0 && entry.Response.ResponseTimeMS < filters.MinResponseTime {
				continue
			}

			results = append(results, entry)
		}
	}

	return results, nil
}

// Statistics aggregates one day's entries in a single pass over its
// partition. A day without entries yields a zero-valued Statistics,
// never an error.
func (l *Logger) Statistics(date string) (*model.Statistics, error) {
	ts, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, helper.NewError("parse date", err)
	}

	entries, err := l.readPartition(l.partitionFile(ts))
	if err != nil {
		return nil, err
	}

	stats := &model.Statistics{
		ModelsUsed: model.ModelsUsed{
			Embedding: []string{},
			LLM:       []string{},
		},
	}
	if len(entries) == 0 {
		return stats, nil
	}

	var sumResponseTime, sumContextSize float64
	minResponseTime := math.Inf(1)
	maxResponseTime := math.Inf(-1)
	embeddingModels := make(map[string]struct{})
	llmModels := make(map[string]struct{})

	for _, entry := range entries {
		rt := entry.Response.ResponseTimeMS
		sumResponseTime += rt
		if rt < minResponseTime {
			minResponseTime = rt
		}
		if rt > maxResponseTime {
			maxResponseTime = rt
		}
		sumContextSize += float64(entry.Retrieval.TotalContextChars)

		if entry.Models.EmbeddingModel != "" {
			embeddingModels[entry.Models.EmbeddingModel] = struct{}{}
		}
		if entry.Models.LLMModel != "" {
			llmModels[fmt.Sprintf("%s/%s", entry.Models.LLMProvider, entry.Models.LLMModel)] = struct{}{}
		}
	}

	count := float64(len(entries))
	stats.TotalQueries = len(entries)
	stats.AvgResponseTimeMS = round2(sumResponseTime / count)
	stats.MinResponseTimeMS = round2(minResponseTime)
	stats.MaxResponseTimeMS = round2(maxResponseTime)
	stats.AvgContextSize = round2(sumContextSize / count)

	for name := range embeddingModels {
		stats.ModelsUsed.Embedding = append(stats.ModelsUsed.Embedding, name)
	}
	for name := range llmModels {
		stats.ModelsUsed.LLM = append(stats.ModelsUsed.LLM, name)
	}
	sort.Strings(stats.ModelsUsed.Embedding)
	sort.Strings(stats.ModelsUsed.LLM)

	return stats, nil
}

// Dates returns the calendar days that have at least one recorded entry,
// ascending
func (l *Logger) Dates() ([]string, error) {
	partitions, err := l.partitions()
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(partitions))
	for _, partition := range partitions {
		name := filepath.Base(partition)
		date := strings.TrimSuffix(strings.TrimPrefix(name, partitionPrefix), partitionSuffix)
		dates = append(dates, date)
	}
	sort.Strings(dates)

	return dates, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
