package env

import (
	"fmt"
	"os"
	"strings"
)

const (
	AWSRegion          = "AWS_REGION"
	AWSID              = "AWS_ID"
	AWSSecret          = "AWS_SECRET"
	AWSToken           = "AWS_TOKEN"
	DynamoDBEndpoint   = "DYNAMODB_ENDPOINT"
	S3Endpoint         = "S3_ENDPOINT"
	MediaBucket        = "MEDIA_BUCKET"
	MediaPublicURL     = "MEDIA_PUBLIC_URL"
	UserSecretKey      = "USER_SECRET"
	AdminSecretKey     = "ADMIN_SECRET"
	SessionTokenSecret = "SESSION_TOKEN_SECRET"
	AuthRedisURL       = "AUTH_REDIS_URL"
	AuthRedisPass      = "AUTH_REDIS_PASS"
	ChatRedisURL       = "CHAT_REDIS_URL"
	ChatRedisPass      = "CHAT_REDIS_PASS"
	WebUrl             = "WEB_URL"
	OpenAIAPIKey       = "OPENAI_API_KEY"
	OpenAIBaseURL      = "OPENAI_BASE_URL"
	OpenAIModel        = "OPENAI_MODEL"
	LogLevel           = "LOG_LEVEL"
)

// Common is the set of keys every server needs to reach the document store
// and verify tokens.
var Common = []string{
	AWSRegion,
	UserSecretKey,
	AdminSecretKey,
	SessionTokenSecret,
	AuthRedisURL,
	ChatRedisURL,
	WebUrl,
}

// Require reports every key in keys that is unset, in one error.
func Require(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("env: required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
