package model

type FavoriteItem struct {
	PK        string `dynamodbav:"pk"`
	UserID    string `dynamodbav:"userId"`
	VehicleID string `dynamodbav:"vehicleId"`
	Title     string `dynamodbav:"title,omitempty"`
	ImageURL  string `dynamodbav:"imageUrl,omitempty"`
	Price     int64  `dynamodbav:"price,omitempty"`
	CreatedAt string `dynamodbav:"createdAt"`
}
