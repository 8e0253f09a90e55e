package filemgr

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"bandhub/utils"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
)

// CheckFileType accepts only filenames with an allowed image extension.
func CheckFileType(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
	}
	return nil
}

// Uploader writes accepted pictures under Dir.
type Uploader struct {
	Dir      string
	URLPath  string // public path prefix the files are served under
	MaxBytes int64
	Logger   zerolog.Logger
}

// SaveFormFile reads the picture from the request's multipart body and stores
// it as <owner>-<uuid><ext>. It returns the stored filename.
func (u *Uploader) SaveFormFile(w http.ResponseWriter, r *http.Request, owner string) (string, error) {
	if u.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, u.MaxBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", ErrFileTooLarge
		}
		return "", fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoFile, err)
	}
	defer file.Close()

	return u.Save(file, header, owner)
}

// Save validates header's filename and copies file to disk.
func (u *Uploader) Save(file multipart.File, header *multipart.FileHeader, owner string) (string, error) {
	if err := CheckFileType(header.Filename); err != nil {
		return "", err
	}
	if err := os.MkdirAll(u.Dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", u.Dir, err)
	}

	filename := fmt.Sprintf("%s-%s%s", owner, utils.GetUUID(), strings.ToLower(filepath.Ext(header.Filename)))
	fullPath := filepath.Join(u.Dir, filename)

	out, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", fullPath, err)
	}
	written, err := io.Copy(out, file)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("write %s: %w", fullPath, err)
	}

	u.Logger.Info().Str("file", filename).Int64("bytes", written).Msg("picture stored")
	u.makeThumbnail(filename)
	return filename, nil
}

// makeThumbnail is best effort: the upload is only checked by extension, so
// undecodable content is logged and skipped.
func (u *Uploader) makeThumbnail(filename string) {
	img, err := imaging.Open(filepath.Join(u.Dir, filename))
	if err != nil {
		u.Logger.Warn().Err(err).Str("file", filename).Msg("thumbnail skipped")
		return
	}
	thumbDir := filepath.Join(u.Dir, "thumb")
	if err := os.MkdirAll(thumbDir, 0o755); err != nil {
		u.Logger.Warn().Err(err).Msg("thumbnail dir")
		return
	}
	if err := imaging.Save(imaging.Resize(img, ThumbWidth, 0, imaging.Lanczos), filepath.Join(thumbDir, filename)); err != nil {
		u.Logger.Warn().Err(err).Str("file", filename).Msg("thumbnail save failed")
	}
}

// Remove deletes a stored picture and its thumbnail.
func (u *Uploader) Remove(filename string) {
	for _, p := range []string{filepath.Join(u.Dir, filename), filepath.Join(u.Dir, "thumb", filename)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			u.Logger.Warn().Err(err).Str("file", p).Msg("remove upload")
		}
	}
}

// PublicPath is the URL path a stored file is served under.
func (u *Uploader) PublicPath(filename string) string {
	return strings.TrimRight(u.URLPath, "/") + "/" + filename
}
