package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	ErrNotFound = errors.New("auth repository: not found")
	ErrExists   = errors.New("auth repository: already exists")
)

type Repository interface {
	CreateUser(ctx context.Context, user model.UserItem) error
	PutUser(ctx context.Context, user model.UserItem) error
	FindUserByEmail(ctx context.Context, email string) (model.UserItem, error)
	GetUser(ctx context.Context, userID string) (model.UserItem, error)
}

type DynamoRepository struct {
	db *database.Database
}

func NewDynamoRepository(db *database.Database) Repository {
	return &DynamoRepository{db: db}
}

// CreateUser stores a new user. The email check runs against the index, so
// two concurrent registrations of one address can both pass it.
func (r *DynamoRepository) CreateUser(ctx context.Context, user model.UserItem) error {
	if _, err := r.FindUserByEmail(ctx, user.Email); err == nil {
		return ErrExists
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	err := r.db.Client.PutItemConditional(ctx, model.UsersTable, user, &database.Condition{
		Expression: "attribute_not_exists(userId)",
	})
	if errors.Is(err, database.ErrConditionFailed) {
		return ErrExists
	}
	return err
}

func (r *DynamoRepository) PutUser(ctx context.Context, user model.UserItem) error {
	return r.db.Client.PutItem(ctx, model.UsersTable, user)
}

func (r *DynamoRepository) FindUserByEmail(ctx context.Context, email string) (model.UserItem, error) {
	items, err := r.db.Client.QueryItems(
		ctx,
		model.UsersTable,
		aws.String(model.UsersByEmailIndex),
		"email = :email",
		map[string]types.AttributeValue{
			":email": &types.AttributeValueMemberS{Value: email},
		},
		nil,
		nil,
	)
	if err != nil {
		return model.UserItem{}, err
	}

	if len(items) == 0 {
		return model.UserItem{}, ErrNotFound
	}

	var user model.UserItem
	if err := attributevalue.UnmarshalMap(items[0], &user); err != nil {
		return model.UserItem{}, fmt.Errorf("unmarshal user: %w", err)
	}

	return user, nil
}

func (r *DynamoRepository) GetUser(ctx context.Context, userID string) (model.UserItem, error) {
	var user model.UserItem
	err := r.db.Client.GetItem(
		ctx,
		model.UsersTable,
		map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		&user,
	)
	if err != nil {
		if errors.Is(err, database.ErrItemNotFound) {
			return model.UserItem{}, ErrNotFound
		}
		return model.UserItem{}, err
	}

	return user, nil
}
