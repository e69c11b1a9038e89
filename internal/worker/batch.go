package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/realibuddy/citecheck/internal/model"
)

// Auditor is the pipeline surface batch processing needs.
type Auditor interface {
	Audit(ctx context.Context, text string) ([]model.AuditOutcome, error)
}

// FileJob audits the text of one document on disk.
type FileJob struct {
	Path    string
	Auditor Auditor
}

// Execute reads the file and runs the audit.
func (j *FileJob) Execute(ctx context.Context) Result {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		return &FileResult{Path: j.Path, Error: fmt.Errorf("read file: %w", err)}
	}

	outcomes, err := j.Auditor.Audit(ctx, string(data))
	if err != nil {
		return &FileResult{Path: j.Path, Error: err}
	}
	return &FileResult{Path: j.Path, Outcomes: outcomes}
}

// FileResult is the audit outcome for one document.
type FileResult struct {
	Path     string               `json:"path"`
	Outcomes []model.AuditOutcome `json:"outcomes,omitempty"`
	Error    error                `json:"-"`
}

// Err returns the job's error, if any.
func (r *FileResult) Err() error { return r.Error }

// BatchProcessor audits many documents concurrently.
type BatchProcessor struct {
	auditor     Auditor
	concurrency int
}

// NewBatchProcessor creates a batch processor over the auditor.
func NewBatchProcessor(auditor Auditor, concurrency int) *BatchProcessor {
	return &BatchProcessor{auditor: auditor, concurrency: concurrency}
}

// ProcessFiles audits the given documents concurrently.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&FileJob{Path: path, Auditor: b.auditor})
	}

	results := pool.Wait()

	fileResults := make([]*FileResult, len(results))
	for i, result := range results {
		fileResults[i] = result.(*FileResult)
	}
	return fileResults
}

// ProcessList reads document paths from a list file and audits them.
func (b *BatchProcessor) ProcessList(ctx context.Context, listPath string) ([]*FileResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read path list: %w", err)
	}
	return b.ProcessFiles(ctx, paths), nil
}

// ReadPathsFromFile reads one path per line, skipping blanks, comments and
// duplicates.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
