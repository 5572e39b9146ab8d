package app

import (
	"log/slog"
	"mime"
)

// Minimal container images ship without /etc/mime.types, so the static
// handler would otherwise answer with sniffed types.
var staticTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "text/javascript; charset=utf-8",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".ico":  "image/x-icon",
}

func init() {
	for ext, typ := range staticTypes {
		registerMimeType(ext, typ)
	}
}

func registerMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		slog.Default().Warn("register mime type", slog.String("ext", ext), slog.Any("error", err))
	}
}
