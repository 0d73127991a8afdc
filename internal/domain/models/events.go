package models

import "time"

// ProductEventType names the product lifecycle transitions that are broadcast.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a successful mutation.
type ProductEvent struct {
	ID         string           `json:"id"`
	Type       ProductEventType `json:"type"`
	ProductID  string           `json:"productId"`
	Product    *Product         `json:"product,omitempty"`
	ActorID    string           `json:"actorId,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}
