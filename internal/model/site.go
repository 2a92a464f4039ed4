package model

// SiteConfigID is the fixed key of the singleton site configuration record.
const SiteConfigID = "site"

type SiteConfigItem struct {
	ConfigID  string                 `dynamodbav:"configId"`
	Version   int64                  `dynamodbav:"version"`
	Sections  map[string]interface{} `dynamodbav:"sections"`
	UpdatedAt string                 `dynamodbav:"updatedAt"`
	UpdatedBy string                 `dynamodbav:"updatedBy,omitempty"`
}
