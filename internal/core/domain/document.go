package domain

import "errors"

var ErrUnsupportedMedia = errors.New("unsupported media type")

// allowedMediaTypes is the exact whitelist for identity documents. The
// decision is made on the declared media type only: no wildcards, no
// content sniffing.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

// MediaTypeAllowed reports whether the declared media type may be attached
// to a registration request.
func MediaTypeAllowed(mediaType string) bool {
	return allowedMediaTypes[mediaType]
}

// UploadedDocument is the transient identity-verification artifact attached
// to a single registration request. It is never reused after the request
// completes.
type UploadedDocument struct {
	Filename  string
	MediaType string
	Content   []byte
}
