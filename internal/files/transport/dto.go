// Package transport defines the file API payloads.
package transport

// UploadURLRequest asks for a presigned upload grant.
type UploadURLRequest struct {
	Purpose     string `json:"purpose" validate:"required,oneof=avatar portfolio message"`
	FileName    string `json:"fileName" validate:"required,max=256"`
	ContentType string `json:"contentType" validate:"required,max=128"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

// ResolveRequest resolves stored keys to download URLs.
type ResolveRequest struct {
	Keys []string `json:"keys" validate:"required,min=1,max=50,dive,max=512"`
}
