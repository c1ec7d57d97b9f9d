package model

import "errors"

const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024 // 5MB
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	AvatarCacheControl = "public, max-age=31536000" // 1 year

	ImageFolder       = "images"
	VideoFolder       = "videos"
	MediaCacheControl = "public, max-age=31536000"
	PresignExpirySecs = 900
)

// Supported content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypeJPG  = "image/jpg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"

	ContentTypeMP4  = "video/mp4"
	ContentTypeWebM = "video/webm"
	ContentTypeOGG  = "video/ogg"
	ContentTypeAVI  = "video/avi"
	ContentTypeMOV  = "video/mov"
)

var allowedImageTypes = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypeJPG:  ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeGIF:  ".gif",
	ContentTypeWebP: ".webp",
}

var allowedVideoTypes = map[string]string{
	ContentTypeMP4:  ".mp4",
	ContentTypeWebM: ".webm",
	ContentTypeOGG:  ".ogg",
	ContentTypeAVI:  ".avi",
	ContentTypeMOV:  ".mov",
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
	CodeInvalidMediaType = "INVALID_MEDIA_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

// UploadResult represents the uploaded object location.
// URL is the public-facing URL, Key the object key inside the bucket.
type UploadResult struct {
	URL       string `json:"url"`
	Key       string `json:"key"`
	MediaType string `json:"mediaType,omitempty"`
}

// PresignPostUploadRequest requests a presigned URL for uploading post media directly.
// The client uploads bytes to UploadURL, then uses PublicURL as the post's media.
type PresignPostUploadRequest struct {
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

// PresignPostUploadResponse returns upload details for direct uploads.
type PresignPostUploadResponse struct {
	UploadURL  string `json:"upload_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	MediaType  string `json:"mediaType"`
	ExpiresInS int    `json:"expires_in"`
}

// IsAllowedImageType reports if the provided content type is a supported image.
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// ClassifyMedia returns the media type ("image" or "video"), the storage folder
// and the file extension for a content type.
func ClassifyMedia(contentType string) (mediaType, folder, ext string, err error) {
	if ext, ok := allowedImageTypes[contentType]; ok {
		return MediaTypeImage, ImageFolder, ext, nil
	}
	if ext, ok := allowedVideoTypes[contentType]; ok {
		return MediaTypeVideo, VideoFolder, ext, nil
	}
	return "", "", "", ErrInvalidMediaType
}
