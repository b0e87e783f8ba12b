package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hrledger/internal/platform/querier"
	"hrledger/internal/requestctx"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	EntityType string
	Action     string
	From       time.Time
	To         time.Time
}

type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

// Record writes one audit event. Callers treat it as fire-and-forget; the
// returned error is logged, never acted on.
func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error {
	var beforeJSON, afterJSON []byte
	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return err
		}
		beforeJSON = payload
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		afterJSON = payload
	}

	_, err := s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, entity_type, entity_id, before_json, after_json, request_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7)
  `, actorID, action, entityType, entityID, beforeJSON, afterJSON, requestctx.GetRequestID(ctx))
	return err
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, error) {
	query := `
    SELECT id, actor_id, action, entity_type, entity_id, COALESCE(request_id, ''), created_at, before_json, after_json
    FROM audit_events
    WHERE 1=1
  `
	var args []any
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		query += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		query += fmt.Sprintf(" AND action = $%d", len(args))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.CreatedAt, &evt.Before, &evt.After); err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
