package favorites

import (
	"context"
	"fmt"
	"sort"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type Repository interface {
	PutFavorite(ctx context.Context, item model.FavoriteItem) error
	// DeleteFavorite reports whether the favorite existed.
	DeleteFavorite(ctx context.Context, userID, vehicleID string) (bool, error)
	ListFavorites(ctx context.Context, userID string) ([]model.FavoriteItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func favoriteKey(userID, vehicleID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: model.CompositePK(userID, vehicleID)},
	}
}

func (r *DynamoRepository) PutFavorite(ctx context.Context, item model.FavoriteItem) error {
	return r.db.Client.PutItem(ctx, model.FavoritesTable, item)
}

func (r *DynamoRepository) DeleteFavorite(ctx context.Context, userID, vehicleID string) (bool, error) {
	return r.db.Client.DeleteItem(ctx, model.FavoritesTable, favoriteKey(userID, vehicleID))
}

func (r *DynamoRepository) ListFavorites(ctx context.Context, userID string) ([]model.FavoriteItem, error) {
	items, err := r.db.Client.QueryIndexByValues(ctx, model.FavoritesTable, model.FavoritesByUserIndex, "userId", []string{userID})
	if err != nil {
		return nil, err
	}

	favorites := make([]model.FavoriteItem, 0, len(items))
	for _, item := range items {
		var favorite model.FavoriteItem
		if err := attributevalue.UnmarshalMap(item, &favorite); err != nil {
			return nil, fmt.Errorf("unmarshal favorite: %w", err)
		}
		favorites = append(favorites, favorite)
	}

	sortNewestFirst(favorites)
	return favorites, nil
}

func sortNewestFirst(favorites []model.FavoriteItem) {
	sort.SliceStable(favorites, func(i, j int) bool {
		if favorites[i].CreatedAt == favorites[j].CreatedAt {
			return favorites[i].VehicleID < favorites[j].VehicleID
		}
		return favorites[i].CreatedAt > favorites[j].CreatedAt
	})
}
