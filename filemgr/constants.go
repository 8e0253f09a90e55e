package filemgr

import "errors"

// FormField is the multipart field carrying the uploaded picture.
const FormField = "profile_pic"

// ThumbWidth is the width of generated thumbnails; height keeps the aspect ratio.
const ThumbWidth = 200

var (
	AllowedExtensions = []string{".jpeg", ".jpg", ".png", ".gif"}

	ErrInvalidExtension = errors.New("invalid file extension")
	ErrNoFile           = errors.New("no file uploaded")
	ErrFileTooLarge     = errors.New("file size exceeds limit")
)
