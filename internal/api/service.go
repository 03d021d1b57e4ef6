package api

import (
	"context"
	"errors"

	"polereview/internal/session"
)

// SessionService exposes read-only projections of the review session for API
// and CLI consumers.
type SessionService struct {
	store *session.Store
}

// NewSessionService wraps a session store.
func NewSessionService(store *session.Store) *SessionService {
	if store == nil {
		return nil
	}
	return &SessionService{store: store}
}

// List returns summaries for every pole in display order.
func (s *SessionService) List(ctx context.Context) ([]PoleSummary, error) {
	poles, err := s.store.ListPoles(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]PoleSummary, 0, len(poles))
	for _, pole := range poles {
		summaries = append(summaries, PoleSummary{
			ID:         pole.ID,
			Reviewed:   pole.Reviewed,
			Flagged:    pole.Flagged(),
			PhotoCount: len(pole.Photos),
			HasNotes:   pole.Notes != "",
		})
	}
	return summaries, nil
}

// Describe returns the full state of one pole, or nil when it is unknown.
func (s *SessionService) Describe(ctx context.Context, id string) (*PoleDetail, error) {
	pole, err := s.store.GetPole(ctx, id)
	if errors.Is(err, session.ErrPoleNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	detail := &PoleDetail{
		ID:        pole.ID,
		Reviewed:  pole.Reviewed,
		Flagged:   pole.Flagged(),
		Notes:     pole.Notes,
		Checklist: pole.Checklist,
	}
	for _, photo := range pole.Photos {
		detail.Photos = append(detail.Photos, PhotoView{
			Original:       photo.Original,
			MarkedUp:       photo.MarkedUp,
			PendingMarkups: len(photo.PendingMarkups),
		})
	}
	for _, rec := range pole.Lookup {
		detail.Lookup = append(detail.Lookup, LookupView{
			Type:        string(rec.Type),
			ID:          rec.ID,
			Info:        rec.Info,
			Location:    rec.Location,
			Requirement: rec.Requirement,
		})
	}
	return detail, nil
}
