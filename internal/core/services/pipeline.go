package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/newsdesk/internal/core/domain"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driven"
	"github.com/custodia-labs/newsdesk/internal/core/ports/driving"
	"github.com/custodia-labs/newsdesk/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// Pipeline classifies responses and stores the resulting items.
type Pipeline struct {
	classifier driven.Classifier
	items      driven.ItemStore
	now        Clock
}

// NewPipeline creates a pipeline. A nil clock uses time.Now.
func NewPipeline(classifier driven.Classifier, items driven.ItemStore, clock Clock) *Pipeline {
	if clock == nil {
		clock = time.Now
	}
	return &Pipeline{classifier: classifier, items: items, now: clock}
}

// CreateItem classifies the response and saves it as a ready item.
func (p *Pipeline) CreateItem(ctx context.Context, queryText, responseText string) (*domain.ContentItem, error) {
	item := p.classifier.Classify(queryText, responseText)
	item.ID = uuid.New().String()
	item.CreatedAt = p.now()
	item.Status = domain.ItemReady

	if err := p.items.Save(ctx, &item); err != nil {
		return nil, domain.WrapStorage("save item", err)
	}
	logger.Debug("pipeline: created item %s category=%s importance=%d channels=%v",
		item.ID, item.Category, item.ImportanceScore, item.TargetChannels)
	return &item, nil
}
