package events

import (
	"context"
	"fmt"
	"time"

	"catalog-sync-service/internal/models"
	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// ActorCatalogSync identifies this service as the actor of published events
const ActorCatalogSync = "catalog-sync"

// Publisher wraps the go-shared events publisher for catalog product events
type Publisher struct {
	publisher *events.Publisher
	tenantID  string
	logger    *logrus.Entry
}

// NewPublisher connects to NATS and makes sure the products stream exists
func NewPublisher(natsURL, tenantID string, logger *logrus.Logger) (*Publisher, error) {
	if natsURL == "" {
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "catalog-sync-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		tenantID:  tenantID,
		logger:    logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductCreated publishes a product.created event
func (p *Publisher) PublishProductCreated(ctx context.Context, product *models.Product) error {
	event := buildProductEvent(events.ProductCreated, product, p.tenantID)
	event.ChangeType = "created"
	event.NewValue = productValues(product)
	return p.publish(ctx, event)
}

// PublishProductRevised publishes a product.updated event for a re-synchronized product
func (p *Publisher) PublishProductRevised(ctx context.Context, product *models.Product) error {
	event := buildProductEvent(events.ProductUpdated, product, p.tenantID)
	event.ChangeType = "revised"
	event.ChangedFields = []string{"revisions"}
	event.NewValue = map[string]interface{}{"revisions": product.Revisions}
	return p.publish(ctx, event)
}

func buildProductEvent(eventType string, product *models.Product, tenantID string) *events.ProductEvent {
	event := events.NewProductEvent(eventType, tenantID)
	event.SourceID = uuid.New().String()
	event.ActorID = ActorCatalogSync
	event.ProductID = product.ID
	event.ProductName = product.Name
	event.SKU = product.DefaultSkuID
	event.Status = product.Class

	if price, err := decimal.NewFromString(product.DisplayPrice); err == nil {
		event.Price = price.InexactFloat64()
	}
	return event
}

func productValues(product *models.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":         product.Name,
		"defaultSkuId": product.DefaultSkuID,
		"displayPrice": product.DisplayPrice,
		"brandId":      product.BrandProductsID,
		"version":      product.Version,
		"revisions":    product.Revisions,
	}
}

// publish hands the event off asynchronously so the run is never blocked on NATS
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish product event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType":   event.EventType,
				"productID":   event.ProductID,
				"productName": event.ProductName,
			}).Debug("Product event published")
		}
	}()

	return nil
}
