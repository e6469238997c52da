package validation

import (
	"mime/multipart"
	"path/filepath"
	"strings"
)

// AvatarMaxSize bounds avatar uploads at 5MB.
const AvatarMaxSize = 5 << 20

var avatarMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var avatarExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ValidateAvatar checks an uploaded avatar's size, extension and declared
// content type. The declared type is advisory; the stored object is only
// ever served back as an image.
func ValidateAvatar(header *multipart.FileHeader) error {
	if header.Size > AvatarMaxSize {
		return Fieldf("avatar", "file is too large (max 5MB)")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !avatarExtensions[ext] {
		return Fieldf("avatar", "unsupported file extension %q", ext)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !avatarMimeTypes[contentType] {
		return Fieldf("avatar", "unsupported content type %q", contentType)
	}

	return nil
}
