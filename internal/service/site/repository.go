package site

import (
	"context"
	"errors"
	"strconv"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound = errors.New("site repository: not found")
	// ErrVersionMismatch means the stored record is no longer at the version
	// the write was based on.
	ErrVersionMismatch = errors.New("site repository: version mismatch")
)

type Repository interface {
	GetConfig(ctx context.Context) (model.SiteConfigItem, error)
	// PutConfig stores item if the stored version equals baseVersion. A
	// baseVersion of 0 means the record must not exist yet.
	PutConfig(ctx context.Context, item model.SiteConfigItem, baseVersion int64) error
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

func (r *DynamoRepository) GetConfig(ctx context.Context) (model.SiteConfigItem, error) {
	var item model.SiteConfigItem
	err := r.db.Client.GetItem(
		ctx,
		model.SiteConfigTable,
		map[string]types.AttributeValue{
			"configId": &types.AttributeValueMemberS{Value: model.SiteConfigID},
		},
		&item,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.SiteConfigItem{}, ErrNotFound
		}
		return model.SiteConfigItem{}, err
	}
	if item.Sections == nil {
		item.Sections = map[string]interface{}{}
	}
	return item, nil
}

func (r *DynamoRepository) PutConfig(ctx context.Context, item model.SiteConfigItem, baseVersion int64) error {
	cond := &database.Condition{Expression: "attribute_not_exists(configId)"}
	if baseVersion > 0 {
		cond = &database.Condition{
			Expression: "#version = :baseVersion",
			Names:      map[string]string{"#version": "version"},
			Values: map[string]types.AttributeValue{
				":baseVersion": &types.AttributeValueMemberN{Value: strconv.FormatInt(baseVersion, 10)},
			},
		}
	}

	err := r.db.Client.PutItemConditional(ctx, model.SiteConfigTable, item, cond)
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrVersionMismatch
	}
	return err
}
