package dto

type MediaUploadResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Kind        string `json:"kind"`
	Size        int64  `json:"size"`
}
