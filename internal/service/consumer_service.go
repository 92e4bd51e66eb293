package service

import (
	"context"
	"encoding/json"
	"os"
	"sync"

	"docqa-be/internal/dto"
	"docqa-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const maxIngestAttempts = 3

type IConsumerService interface {
	// Consume subscribes and processes jobs in the background until ctx ends.
	// The returned channel closes once the worker has stopped.
	Consume(ctx context.Context) (<-chan struct{}, error)
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	ingestionService IIngestionService
	logger           logger.ILogger

	mu       sync.Mutex
	attempts map[string]int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestionService IIngestionService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		ingestionService: ingestionService,
		logger:           log,
		attempts:         make(map[string]int),
	}
}

func (cs *consumerService) Consume(ctx context.Context) (<-chan struct{}, error) {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()
	return done, nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestDocumentsMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("Consumer", "Dropping malformed ingestion message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never retry a payload that cannot decode
		return
	}

	files := make([]dto.UploadedFile, 0, len(payload.Files))
	for _, f := range payload.Files {
		data, err := os.ReadFile(f.Path)
		if err != nil {
			cs.logger.Error("Consumer", "Staged file missing", map[string]interface{}{
				"job_id": payload.JobId,
				"path":   f.Path,
				"error":  err.Error(),
			})
			continue
		}
		files = append(files, dto.UploadedFile{Name: f.Name, Data: data})
	}
	if len(files) == 0 {
		cs.finish(msg, payload)
		return
	}

	uploaded, err := cs.ingestionService.Ingest(ctx, files)
	if err != nil {
		if cs.retry(msg.UUID) {
			cs.logger.Warn("Consumer", "Ingestion failed, retrying", map[string]interface{}{
				"job_id": payload.JobId,
				"error":  err.Error(),
			})
			msg.Nack()
			return
		}
		cs.logger.Error("Consumer", "Ingestion failed, giving up", map[string]interface{}{
			"job_id": payload.JobId,
			"error":  err.Error(),
		})
		cs.finish(msg, payload)
		return
	}

	cs.logger.Info("Consumer", "Ingestion job finished", map[string]interface{}{
		"job_id":   payload.JobId,
		"uploaded": uploaded,
	})
	cs.finish(msg, payload)
}

// retry records an attempt and reports whether another one is allowed.
func (cs *consumerService) retry(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.attempts[id]++
	return cs.attempts[id] < maxIngestAttempts
}

func (cs *consumerService) finish(msg *message.Message, payload dto.IngestDocumentsMessage) {
	cs.mu.Lock()
	delete(cs.attempts, msg.UUID)
	cs.mu.Unlock()

	if payload.Dir != "" {
		_ = os.RemoveAll(payload.Dir)
	}
	msg.Ack()
}
