package remote

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DecodeDataURL splits a `data:` URL into its media type and payload.
func DecodeDataURL(raw string) (string, []byte, error) {
	if !strings.HasPrefix(raw, "data:") {
		return "", nil, errors.New("remote: not a data URL")
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(raw, "data:"), ",")
	if !ok {
		return "", nil, errors.New("remote: data URL has no payload")
	}
	mediaType := header
	encoded := false
	if strings.HasSuffix(header, ";base64") {
		mediaType = strings.TrimSuffix(header, ";base64")
		encoded = true
	}
	if mediaType == "" {
		mediaType = "text/plain;charset=US-ASCII"
	}
	if encoded {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("remote: decode data URL: %w", err)
		}
		return mediaType, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("remote: decode data URL: %w", err)
	}
	return mediaType, []byte(text), nil
}
