package models

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WebhookEvent stores provider webhook payloads with deduplication metadata
// for idempotent processing.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_event,unique,priority:1;index" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;default:'';index:ux_webhook_events_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// RecordWebhookEvent persists an incoming event exactly once per
// (provider, provider_event_id). It reports whether this call created the
// row; a false result means the event was already seen and the stored row is
// returned instead.
func RecordWebhookEvent(db *gorm.DB, event *WebhookEvent) (bool, *WebhookEvent, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(event)
	if res.Error != nil {
		return false, nil, res.Error
	}
	if res.RowsAffected > 0 {
		return true, event, nil
	}

	var stored WebhookEvent
	err := db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error
	if err != nil {
		return false, nil, err
	}
	return false, &stored, nil
}

// MarkProcessed stamps the event as handled, recording the processing error
// when there was one.
func (e *WebhookEvent) MarkProcessed(db *gorm.DB, processErr error) error {
	now := time.Now()
	e.ProcessedAt = &now
	e.ProcessingError = ""
	if processErr != nil {
		e.ProcessingError = processErr.Error()
	}
	return db.Model(e).Updates(map[string]interface{}{
		"processed_at":     e.ProcessedAt,
		"processing_error": e.ProcessingError,
	}).Error
}
