package repofiles

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/rescale-labs/safebox/internal/model"
)

var extCategories = map[string]model.FileCategory{
	".zip": model.CategoryArchive, ".tar": model.CategoryArchive, ".gz": model.CategoryArchive, ".7z": model.CategoryArchive, ".rar": model.CategoryArchive,
	".mp3": model.CategoryAudio, ".wav": model.CategoryAudio, ".flac": model.CategoryAudio, ".ogg": model.CategoryAudio,
	".go": model.CategoryCode, ".rs": model.CategoryCode, ".py": model.CategoryCode, ".js": model.CategoryCode, ".ts": model.CategoryCode, ".c": model.CategoryCode, ".java": model.CategoryCode,
	".doc": model.CategoryDocument, ".docx": model.CategoryDocument, ".odt": model.CategoryDocument,
	".png": model.CategoryImage, ".jpg": model.CategoryImage, ".jpeg": model.CategoryImage, ".gif": model.CategoryImage, ".webp": model.CategoryImage, ".svg": model.CategoryImage,
	".pdf": model.CategoryPdf,
	".ppt": model.CategoryPresentation, ".pptx": model.CategoryPresentation, ".key": model.CategoryPresentation,
	".xls": model.CategorySheet, ".xlsx": model.CategorySheet, ".csv": model.CategorySheet,
	".txt": model.CategoryText, ".md": model.CategoryText, ".log": model.CategoryText,
	".mp4": model.CategoryVideo, ".mov": model.CategoryVideo, ".mkv": model.CategoryVideo, ".avi": model.CategoryVideo,
}

// CategorizeByName buckets a decrypted name by its extension, falling
// back to Generic.
func CategorizeByName(name string) model.FileCategory {
	ext := strings.ToLower(filepath.Ext(name))
	if cat, ok := extCategories[ext]; ok {
		return cat
	}
	return model.CategoryGeneric
}

// ContentTypeByName guesses a MIME content type from the file extension,
// used for upload Content-Type headers and the details-view text filter.
func ContentTypeByName(name string) string {
	ext := filepath.Ext(name)
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
