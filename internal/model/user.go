package model

const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

type UserItem struct {
	UserID       string `dynamodbav:"userId"`
	Email        string `dynamodbav:"email"`
	Name         string `dynamodbav:"name"`
	Role         string `dynamodbav:"role"`
	PasswordHash string `dynamodbav:"passwordHash"`
	CreatedAt    string `dynamodbav:"createdAt"`
}
