package service

import (
	"context"
	"encoding/json"
	"log"

	"flourmill/internal/model"
	"flourmill/internal/repository"

	"github.com/google/uuid"
)

// AuditEntryResponse is the API shape for a single audit trail entry
type AuditEntryResponse struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id,omitempty"`
	EntityName string `json:"entity_name,omitempty"`
	Details    string `json:"details,omitempty"`
	CreatedAt  string `json:"created_at"`
}

// AuditService records and lists the who/what/when trail. Recording is
// best-effort: a failed audit write never fails the business operation.
type AuditService interface {
	Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{})
	List(ctx context.Context, page, limit int, action string) ([]AuditEntryResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details interface{}) {
	payload := ""
	if details != nil {
		if raw, err := json.Marshal(details); err == nil {
			payload = string(raw)
		}
	}

	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to record %s: %v", action, err)
	}
}

func (s *auditService) List(ctx context.Context, page, limit int, action string) ([]AuditEntryResponse, int64, error) {
	entries, total, err := s.repo.List(ctx, page, limit, action)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		item := AuditEntryResponse{
			ID:         e.ID.String(),
			Action:     e.Action,
			EntityID:   e.EntityID,
			EntityName: e.EntityName,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if e.UserID != nil {
			item.UserID = e.UserID.String()
		}
		if e.User != nil {
			item.UserEmail = e.User.Email
		}
		res = append(res, item)
	}
	return res, total, nil
}
