package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ArchivedWorkOrder is one work order captured during a report run. Rows
// accumulate across runs so consecutive reports can be diffed.
type ArchivedWorkOrder struct {
	ID                string           `db:"id" json:"id"`
	JobID             string           `db:"job_id" json:"jobId"`
	SourceName        string           `db:"source_name" json:"sourceName"`
	InternalReference string           `db:"internal_reference" json:"internalReference"`
	PublicID          string           `db:"public_id" json:"publicId"`
	Title             string           `db:"title" json:"title"`
	Pole              Pole             `db:"pole" json:"pole"`
	Entity            Entity           `db:"entity" json:"entity"`
	Kind              WorkOrderKind    `db:"kind" json:"kind"`
	IsCancelled       bool             `db:"is_cancelled" json:"isCancelled"`
	PeriodStart       time.Time        `db:"period_start" json:"periodStart"`
	PeriodEnd         time.Time        `db:"period_end" json:"periodEnd"`
	Payload           WorkOrderPayload `db:"payload" json:"payload"`
	AcquiredAt        time.Time        `db:"acquired_at" json:"acquiredAt"`
}

// WorkOrderPayload stores the full work order as JSONB.
type WorkOrderPayload struct {
	WorkOrder
}

// Value marshals the payload to JSON for persistence.
func (p WorkOrderPayload) Value() (driver.Value, error) {
	data, err := json.Marshal(p.WorkOrder)
	if err != nil {
		return nil, fmt.Errorf("marshal work order payload: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the work order.
func (p *WorkOrderPayload) Scan(value interface{}) error {
	if value == nil {
		*p = WorkOrderPayload{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for WorkOrderPayload", value)
	}
	if len(data) == 0 {
		*p = WorkOrderPayload{}
		return nil
	}
	if err := json.Unmarshal(data, &p.WorkOrder); err != nil {
		return fmt.Errorf("unmarshal work order payload: %w", err)
	}
	return nil
}

// ArchiveFilter narrows listing queries by metadata fields.
type ArchiveFilter struct {
	JobID     string
	Reference string
	Pole      *Pole
	Entity    *Entity
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
