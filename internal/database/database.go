package database

import (
	"context"
	"fmt"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

type DynamoDBClient struct {
	svc *dynamodb.Client
}

// LoadAWSConfig resolves region and static credentials from the environment.
// The media store shares it with the document store.
func LoadAWSConfig(ctx context.Context) (aws.Config, error) {
	region := env.Get(env.AWSRegion)
	credOne := env.Get(env.AWSID)
	credTwo := env.Get(env.AWSSecret)
	credThree := env.Get(env.AWSToken)

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}

	if credOne != "" && credTwo != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(credOne, credTwo, credThree)),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

func NewDynamoDBClient(ctx context.Context) (*DynamoDBClient, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := env.Get(env.DynamoDBEndpoint)
	clientOpts := []func(*dynamodb.Options){}
	if endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return &DynamoDBClient{
		svc: dynamodb.NewFromConfig(cfg, clientOpts...),
	}, nil
}

type Database struct {
	Client *DynamoDBClient
}

func NewDatabase(ctx context.Context) (*Database, error) {
	dbClient, err := NewDynamoDBClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("init dynamodb client: %w", err)
	}

	return &Database{
		Client: dbClient,
	}, nil
}
