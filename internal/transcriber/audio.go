package transcriber

import (
	"path/filepath"
	"strings"
)

// MimeForPath maps an audio file's extension to its declared mime type.
// Unknown extensions return the empty string.
func MimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a", ".mp4":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	case ".flac":
		return "audio/flac"
	default:
		return ""
	}
}
