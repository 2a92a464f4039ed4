// Package favorites keeps the vehicles a signed-in visitor has saved.
package favorites

import (
	"context"
	"strings"
	"time"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"
)

const createdAtLayout = "2006-01-02T15:04:05.000000Z07:00"

type Vehicle struct {
	VehicleID string
	Title     string
	ImageURL  string
	Price     int64
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func New(db *database.Database) *Service {
	return NewWithRepository(NewDynamoRepository(db), time.Now)
}

func NewWithRepository(repo Repository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

// Add saves vehicle for userID. Saving the same vehicle again refreshes its
// details and moves it to the top of the list.
func (s *Service) Add(ctx context.Context, userID string, vehicle Vehicle) (model.FavoriteItem, error) {
	userID = strings.TrimSpace(userID)
	vehicleID := strings.TrimSpace(vehicle.VehicleID)
	if userID == "" {
		return model.FavoriteItem{}, newError(ErrorCodeUnauthorized, "sign in to save favorites", nil)
	}
	if vehicleID == "" {
		return model.FavoriteItem{}, newError(ErrorCodeValidation, "vehicleId is required", nil)
	}
	if vehicle.Price < 0 {
		return model.FavoriteItem{}, newError(ErrorCodeValidation, "price must not be negative", nil)
	}

	item := model.FavoriteItem{
		PK:        model.CompositePK(userID, vehicleID),
		UserID:    userID,
		VehicleID: vehicleID,
		Title:     strings.TrimSpace(vehicle.Title),
		ImageURL:  strings.TrimSpace(vehicle.ImageURL),
		Price:     vehicle.Price,
		CreatedAt: s.now().UTC().Format(createdAtLayout),
	}
	if err := s.repo.PutFavorite(ctx, item); err != nil {
		return model.FavoriteItem{}, newError(ErrorCodeInternal, "failed to save favorite", err)
	}
	return item, nil
}

func (s *Service) Remove(ctx context.Context, userID, vehicleID string) error {
	userID = strings.TrimSpace(userID)
	vehicleID = strings.TrimSpace(vehicleID)
	if userID == "" {
		return newError(ErrorCodeUnauthorized, "sign in to manage favorites", nil)
	}
	if vehicleID == "" {
		return newError(ErrorCodeValidation, "vehicleId is required", nil)
	}

	existed, err := s.repo.DeleteFavorite(ctx, userID, vehicleID)
	if err != nil {
		return newError(ErrorCodeInternal, "failed to remove favorite", err)
	}
	if !existed {
		return newError(ErrorCodeNotFound, "favorite not found", nil)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID string) ([]model.FavoriteItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, newError(ErrorCodeUnauthorized, "sign in to view favorites", nil)
	}

	favorites, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, newError(ErrorCodeInternal, "failed to list favorites", err)
	}
	return favorites, nil
}
