package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docqa-be/internal/dto"
	"docqa-be/internal/metrics"
	"docqa-be/internal/pkg/logger"
	"docqa-be/pkg/embedding"
	"docqa-be/pkg/events"
	"docqa-be/pkg/pdf"
	"docqa-be/pkg/store"
	"docqa-be/pkg/utils"
	"docqa-be/pkg/vectorstore"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var ErrNoFiles = errors.New("no files to ingest")

type IIngestionService interface {
	// Ingest indexes the readable documents among files. It reports false
	// when none of them produced any text.
	Ingest(ctx context.Context, files []dto.UploadedFile) (bool, error)
	// Enqueue stages files on disk and hands them to the background consumer.
	Enqueue(ctx context.Context, files []dto.UploadedFile) (*dto.EnqueueResponse, error)
}

type IngestionOptions struct {
	ChunkSize    int
	ChunkOverlap int
	Concurrency  int
	StagingDir   string
	// Dimension, when set, is the width every embedding must have.
	Dimension int
}

type ingestionService struct {
	embeddingProvider embedding.EmbeddingProvider
	vectorStore       vectorstore.Store
	publisherService  IPublisherService
	eventPublisher    events.Publisher
	metrics           *metrics.Metrics
	opts              IngestionOptions
	logger            logger.ILogger
}

func NewIngestionService(
	embeddingProvider embedding.EmbeddingProvider,
	vectorStore vectorstore.Store,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	m *metrics.Metrics,
	opts IngestionOptions,
	log logger.ILogger,
) IIngestionService {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 2000
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.StagingDir == "" {
		opts.StagingDir = os.TempDir()
	}
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &ingestionService{
		embeddingProvider: embeddingProvider,
		vectorStore:       vectorStore,
		publisherService:  publisherService,
		eventPublisher:    eventPublisher,
		metrics:           m,
		opts:              opts,
		logger:            log,
	}
}

type chunk struct {
	fileName string
	index    int
	text     string
}

func (s *ingestionService) Ingest(ctx context.Context, files []dto.UploadedFile) (bool, error) {
	if len(files) == 0 {
		return false, ErrNoFiles
	}

	var chunks []chunk
	var indexed []string
	for _, f := range files {
		text, err := pdf.ExtractBytes(f.Data)
		if err != nil {
			s.metrics.ObserveDocument("failed")
			s.logger.Error("Ingestion", "IngestionError: skipping unreadable document", map[string]interface{}{
				"file_name": f.Name,
				"error":     err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			s.metrics.ObserveDocument("skipped")
			s.logger.Info("Ingestion", "Skipping document without text", map[string]interface{}{"file_name": f.Name})
			continue
		}

		pieces := utils.SplitText(text, s.opts.ChunkSize, s.opts.ChunkOverlap)
		for i, p := range pieces {
			chunks = append(chunks, chunk{fileName: f.Name, index: i, text: p})
		}
		indexed = append(indexed, f.Name)
	}

	if len(chunks) == 0 {
		return false, nil
	}

	records, err := s.embed(ctx, chunks)
	if err != nil {
		return false, err
	}

	dimension := len(records[0].Vector)
	if s.opts.Dimension > 0 {
		dimension = s.opts.Dimension
	}
	for _, r := range records {
		if len(r.Vector) != dimension {
			return false, fmt.Errorf("%w: embedder returned %d values, collection expects %d",
				vectorstore.ErrDimensionMismatch, len(r.Vector), dimension)
		}
	}

	if err := s.vectorStore.EnsureCollection(ctx, dimension); err != nil {
		return false, fmt.Errorf("ensure collection: %w", err)
	}
	if err := s.vectorStore.Upsert(ctx, records); err != nil {
		return false, fmt.Errorf("upsert passages: %w", err)
	}

	for range indexed {
		s.metrics.ObserveDocument("indexed")
	}
	s.metrics.ObservePassages(len(records))
	s.logger.Info("Ingestion", "Documents indexed", map[string]interface{}{
		"files":    indexed,
		"passages": len(records),
	})

	if err := s.eventPublisher.Publish(ctx, events.NewDocumentIngested(indexed, len(records))); err != nil {
		s.logger.Warn("Ingestion", "Failed to publish ingestion event", map[string]interface{}{"error": err.Error()})
	}
	return true, nil
}

// embed runs the embedding calls with bounded concurrency and keeps the
// records in chunk order.
func (s *ingestionService) embed(ctx context.Context, chunks []chunk) ([]vectorstore.Record, error) {
	records := make([]vectorstore.Record, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, c := range chunks {
		g.Go(func() error {
			res, err := s.embeddingProvider.Generate(gctx, c.text, embedding.TaskRetrievalDocument)
			if err != nil {
				return fmt.Errorf("embed %s chunk %d: %w", c.fileName, c.index, err)
			}
			records[i] = vectorstore.Record{
				ID:     uuid.NewString(),
				Vector: res.Embedding.Values,
				Text:   c.text,
				Metadata: map[string]interface{}{
					store.MetaFileName:   c.fileName,
					store.MetaChunkIndex: c.index,
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ingestionService) Enqueue(ctx context.Context, files []dto.UploadedFile) (*dto.EnqueueResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.publisherService == nil {
		return nil, errors.New("background ingestion is not configured")
	}

	jobId := uuid.NewString()
	dir := filepath.Join(s.opts.StagingDir, "docqa-ingest-"+jobId)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	msg := dto.IngestDocumentsMessage{JobId: jobId, Dir: dir}
	for i, f := range files {
		// prefix keeps identical names from colliding
		path := filepath.Join(dir, fmt.Sprintf("%03d-%s", i, filepath.Base(f.Name)))
		if err := os.WriteFile(path, f.Data, 0o640); err != nil {
			_ = os.RemoveAll(dir)
			return nil, fmt.Errorf("stage %s: %w", f.Name, err)
		}
		msg.Files = append(msg.Files, dto.StagedFile{Name: f.Name, Path: path})
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("publish ingestion job: %w", err)
	}

	s.logger.Info("Ingestion", "Ingestion job queued", map[string]interface{}{
		"job_id": jobId,
		"files":  len(files),
	})
	return &dto.EnqueueResponse{JobId: jobId, Files: len(files)}, nil
}
