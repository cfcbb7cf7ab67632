package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowsend/aegis/internal/core/domain"
)

// Entity-specific helpers. Thin description builders over LogUserAction so
// dashboard handlers record consistent verbs without repeating themselves.

// pastTense covers the lifecycle verbs used in audit actions
// (create, update, delete, publish, archive).
func pastTense(verb string) string {
	if strings.HasSuffix(verb, "e") {
		return verb + "d"
	}
	return verb + "ed"
}

func (r *Recorder) logEntity(ctx context.Context, userID *string, entity, verb, name, id string, metadata map[string]any, rc *RequestContext) {
	action := fmt.Sprintf("%s_%s", entity, verb)
	description := fmt.Sprintf("%s %q %s", entity, name, pastTense(verb))
	itemType := entity
	var itemID *string
	if id != "" {
		itemID = &id
	}
	r.Record(ctx, &domain.AuditEvent{
		UserID:      userID,
		Action:      action,
		Description: description,
		ItemType:    &itemType,
		ItemID:      itemID,
		Metadata:    metadata,
		IPAddress:   rc.ip(),
		UserAgent:   rc.userAgent(),
		Severity:    domain.AuditInfo,
		Category:    domain.CategoryUserAction,
	})
}

// LogProductAction records a product lifecycle action, e.g. "product_create".
func (r *Recorder) LogProductAction(ctx context.Context, userID *string, verb, name, productID string, metadata map[string]any, rc *RequestContext) {
	r.logEntity(ctx, userID, "product", verb, name, productID, metadata, rc)
}

// LogCampaignAction records a campaign lifecycle action.
func (r *Recorder) LogCampaignAction(ctx context.Context, userID *string, verb, name, campaignID string, metadata map[string]any, rc *RequestContext) {
	r.logEntity(ctx, userID, "campaign", verb, name, campaignID, metadata, rc)
}

// LogLeadAction records a lead lifecycle action.
func (r *Recorder) LogLeadAction(ctx context.Context, userID *string, verb, name, leadID string, metadata map[string]any, rc *RequestContext) {
	r.logEntity(ctx, userID, "lead", verb, name, leadID, metadata, rc)
}

// LogTemplateAction records a message-template lifecycle action.
func (r *Recorder) LogTemplateAction(ctx context.Context, userID *string, verb, name, templateID string, metadata map[string]any, rc *RequestContext) {
	r.logEntity(ctx, userID, "template", verb, name, templateID, metadata, rc)
}
