package querylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docuquery/docuquery/helper"
	"github.com/docuquery/docuquery/model"
	"github.com/google/uuid"
)

const (
	partitionPrefix = "queries_"
	partitionSuffix = ".jsonl"
	dateLayout      = "2006-01-02"
)

// Logger records retrieval+answer cycles as append-only JSONL entries,
// partitioned by calendar day. Partition selection is a pure function of the
// entry timestamp, so day rollover needs no timer: a new file simply starts
// receiving entries. Entries never move between partitions.
type Logger struct {
	dir string
	log *slog.Logger
	mu  sync.Mutex
}

// NewLogger creates a query logger writing day partitions under dir
func NewLogger(dir string, logger *slog.Logger) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, helper.NewError("create query log directory", err)
	}

	return &Logger{
		dir: dir,
		log: logger,
	}, nil
}

// partitionFile maps an entry timestamp to its day partition path
func (l *Logger) partitionFile(ts time.Time) string {
	return filepath.Join(l.dir, partitionPrefix+ts.Format(dateLayout)+partitionSuffix)
}

// Record appends one entry to its day partition. The entry is marshaled
// first and written with a single append, so a reader never observes a
// partial entry: it is fully written or not written at all. A missing entry
// id is filled with a UUIDv7, time-ordered and collision-free.
func (l *Logger) Record(entry *model.LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if entry.EntryID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("%w: %v", model.ErrLoggingFailure, err)
		}
		entry.EntryID = id.String()
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrLoggingFailure, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.OpenFile(l.partitionFile(entry.Timestamp), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrLoggingFailure, err)
	}

	if _, err := file.Write(line); err != nil {
		file.Close()
		return fmt.Errorf("%w: %v", model.ErrLoggingFailure, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrLoggingFailure, err)
	}

	l.log.Info("Recorded query",
		slog.String("entry_id", entry.EntryID),
		slog.String("question", entry.Query.Question),
		slog.String("file_id", entry.Query.FileID),
		slog.Int("vector_results", entry.Retrieval.VectorResultsCount),
		slog.Int("keyword_matches", entry.Retrieval.KeywordMatchCount),
		slog.Int("context_chars", entry.Retrieval.TotalContextChars),
		slog.Float64("response_time_ms", entry.Response.ResponseTimeMS),
	)

	return nil
}

// Recent returns the most recently recorded entries across partitions,
// most recent first, up to limit
func (l *Logger) Recent(limit int) ([]*model.LogEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	partitions, err := l.partitions()
	if err != nil {
		return nil, err
	}

	// Newest partition first
	sort.Sort(sort.Reverse(sort.StringSlice(partitions)))

	var recent []*model.LogEntry
	for _, partition := range partitions {
		entries, err := l.readPartition(partition)
		if err != nil {
			return nil, err
		}

		// Entries are appended in time order, so walk backwards
		for i := len(entries) - 1; i >= 0 && len(recent) < limit; i-- {
			recent = append(recent, entries[i])
		}
		if len(recent) >= limit {
			break
		}
	}

	return recent, nil
}

// partitions lists all day partition files in the log directory
func (l *Logger) partitions() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, partitionPrefix+"*"+partitionSuffix))
	if err != nil {
		return nil, helper.NewError("list partitions", err)
	}
	return matches, nil
}

// readPartition reads all entries of one partition file in append order.
// A missing partition is an empty day, not an error.
func (l *Logger) readPartition(path string) ([]*model.LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, helper.NewError("open partition", err)
	}
	defer file.Close()

	var entries []*model.LogEntry
	scanner := bufio.NewScanner(file)
	// Entries carry full chunk texts, the default line limit is too small
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		entry := &model.LogEntry{}
		if err := json.Unmarshal([]byte(line), entry); err != nil {
			return nil, helper.NewError("unmarshal entry", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, helper.NewError("scan partition", err)
	}

	return entries, nil
}
