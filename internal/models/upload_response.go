package models

type UploadImageResponse struct {
	URL string `json:"url"`
}
