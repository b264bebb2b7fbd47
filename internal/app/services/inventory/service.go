package inventory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/policies"
	domainrateplan "staybook/internal/domain/rateplan"
	"staybook/internal/domain/shared/daterange"
)

var ErrUploaderUnavailable = errors.New("inventory: photo uploader not configured")

type Service struct {
	RoomTypes domainrateplan.Repository
	Uploader  policies.UploaderPort
	Logger    *slog.Logger
}

type UpsertRoomTypeParams struct {
	ID               domainrateplan.RoomTypeID
	PropertyID       string
	Name             string
	Description      string
	Occupancy        int
	MinOccupancy     int
	MaxOccupancy     int
	AvailableRooms   int
	AvailableRoomIDs []string
	RatePlanDates    []domainrateplan.RatePlanDate
}

// UpsertRoomType creates a room type or replaces the mutable fields of an
// existing one. Rates always go through ReplaceRates so bare date entries are
// dropped on the way in.
func (s *Service) UpsertRoomType(ctx context.Context, params UpsertRoomTypeParams) (*domainrateplan.RoomType, error) {
	now := time.Now()
	if params.ID == "" {
		params.ID = domainrateplan.RoomTypeID(uuid.NewString())
	}
	existing, err := s.RoomTypes.ByID(ctx, params.ID)
	if err != nil && !errors.Is(err, domainrateplan.ErrRoomTypeNotFound) {
		return nil, err
	}

	var rt *domainrateplan.RoomType
	if existing == nil {
		rt, err = domainrateplan.NewRoomType(domainrateplan.CreateParams{
			ID:               params.ID,
			PropertyID:       params.PropertyID,
			Name:             params.Name,
			Description:      params.Description,
			Occupancy:        params.Occupancy,
			MinOccupancy:     params.MinOccupancy,
			MaxOccupancy:     params.MaxOccupancy,
			AvailableRooms:   params.AvailableRooms,
			AvailableRoomIDs: params.AvailableRoomIDs,
			Now:              now,
		})
		if err != nil {
			return nil, err
		}
	} else {
		// Rebuild through the constructor so occupancy bounds are
		// re-validated on every update.
		rt, err = domainrateplan.NewRoomType(domainrateplan.CreateParams{
			ID:               existing.ID,
			PropertyID:       existing.PropertyID,
			Name:             params.Name,
			Description:      params.Description,
			Occupancy:        params.Occupancy,
			MinOccupancy:     params.MinOccupancy,
			MaxOccupancy:     params.MaxOccupancy,
			AvailableRooms:   params.AvailableRooms,
			AvailableRoomIDs: params.AvailableRoomIDs,
			Photos:           existing.Photos,
			Now:              now,
		})
		if err != nil {
			return nil, err
		}
		rt.Version = existing.Version
	}
	if err := rt.ReplaceRates(params.RatePlanDates, now); err != nil {
		return nil, err
	}
	if err := s.RoomTypes.Save(ctx, rt); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("room type saved", "room_type_id", rt.ID, "property_id", rt.PropertyID, "rate_dates", len(rt.RatePlanDates))
	}
	return rt, nil
}

// ReplaceRates swaps a room type's per-night pricing calendar.
func (s *Service) ReplaceRates(ctx context.Context, id domainrateplan.RoomTypeID, dates []domainrateplan.RatePlanDate) (*domainrateplan.RoomType, error) {
	rt, err := s.RoomTypes.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rt.ReplaceRates(dates, time.Now()); err != nil {
		return nil, err
	}
	if err := s.RoomTypes.Save(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// AttachPhoto uploads the image and links its public URL to the room type.
func (s *Service) AttachPhoto(ctx context.Context, id domainrateplan.RoomTypeID, filename, contentType string, reader io.Reader) (*domainrateplan.RoomType, error) {
	if s.Uploader == nil {
		return nil, ErrUploaderUnavailable
	}
	rt, err := s.RoomTypes.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	key := photoKey(rt, filename)
	url, err := s.Uploader.Upload(ctx, key, reader, contentType)
	if err != nil {
		return nil, err
	}
	rt.AttachPhoto(url, time.Now())
	if err := s.RoomTypes.Save(ctx, rt); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("room type photo attached", "room_type_id", rt.ID, "url", url)
	}
	return rt, nil
}

func (s *Service) ByProperty(ctx context.Context, propertyID string) ([]*domainrateplan.RoomType, error) {
	return s.RoomTypes.ByProperty(ctx, propertyID)
}

// SearchResult is one bookable room type with the meal plans priced on every
// night of the stay.
type SearchResult struct {
	RoomType  *domainrateplan.RoomType
	MealPlans []domainrateplan.MealPlanID
}

// Search returns the room types a traveler can book for the stay, with an
// empty slice (not an error) when nothing fits.
func (s *Service) Search(ctx context.Context, propertyID string, stay daterange.DateRange) ([]SearchResult, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	all, err := s.RoomTypes.ByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	bookable := domainrateplan.BookableForStay(all, stay)
	results := make([]SearchResult, 0, len(bookable))
	for _, rt := range bookable {
		results = append(results, SearchResult{RoomType: rt, MealPlans: rt.CommonMealPlans()})
	}
	return results, nil
}

func photoKey(rt *domainrateplan.RoomType, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("room-types/%s/%s%s", rt.ID, uuid.NewString(), ext)
}
