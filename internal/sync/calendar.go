package sync

import (
	"context"

	"homeboard/internal/api"
	"homeboard/internal/model"
)

// CreateEvent adds a calendar event optimistically.
func (s *Syncer) CreateEvent(ctx context.Context, params api.EventParams) (*model.Event, error) {
	provisional := model.Event{
		Title:       params.Title,
		Description: params.Description,
		Date:        params.Date,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		Category:    model.EventCategory(params.Category),
	}
	if provisional.Category == "" {
		provisional.Category = model.CategoryOther
	}

	event, err := s.eventCoord.SubmitCreate(ctx, provisional, func(ctx context.Context) (model.Event, error) {
		created, err := s.client.CreateEvent(ctx, params)
		if err != nil {
			return model.Event{}, err
		}
		return *created, nil
	})
	if err != nil {
		return nil, s.fail(err)
	}
	return &event, nil
}

// EditEvent updates a calendar event optimistically.
func (s *Syncer) EditEvent(ctx context.Context, eventID int64, params api.EventParams) (*model.Event, error) {
	event, err := s.eventCoord.ApplyAndSubmit(ctx, eventID,
		func(e model.Event) model.Event {
			e.Title = params.Title
			e.Description = params.Description
			e.Date = params.Date
			e.StartTime = params.StartTime
			e.EndTime = params.EndTime
			if params.Category != "" {
				e.Category = model.EventCategory(params.Category)
			}
			return e
		},
		func(ctx context.Context) (model.Event, error) {
			updated, err := s.client.UpdateEvent(ctx, eventID, params)
			if err != nil {
				return model.Event{}, err
			}
			return *updated, nil
		},
	)
	if err != nil {
		return nil, s.fail(err)
	}
	return &event, nil
}

// DeleteEvent removes a calendar event optimistically.
func (s *Syncer) DeleteEvent(ctx context.Context, eventID int64) error {
	err := s.eventCoord.SubmitDelete(ctx, eventID, func(ctx context.Context) error {
		return s.client.DeleteEvent(ctx, eventID)
	})
	return s.fail(err)
}
