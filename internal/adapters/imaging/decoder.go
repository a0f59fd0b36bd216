package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"net/url"
	"strings"

	// Registered decoders for image.DecodeConfig
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kamal-hamza/pxo/internal/core/domain"
	"github.com/kamal-hamza/pxo/internal/core/ports"
)

// DataURI is a parsed RFC 2397 data URI
type DataURI struct {
	MediaType string
	Data      []byte
}

// ParseDataURI decodes "data:[<mediatype>][;base64],<data>"
func ParseDataURI(ref string) (DataURI, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return DataURI{}, fmt.Errorf("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return DataURI{}, fmt.Errorf("data URI has no payload")
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta = m
		isBase64 = true
	}

	mediaType, _, _ := strings.Cut(meta, ";")
	if mediaType == "" {
		mediaType = "text/plain"
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some encoders drop the padding
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
	} else {
		var s string
		s, err = url.PathUnescape(payload)
		data = []byte(s)
	}
	if err != nil {
		return DataURI{}, fmt.Errorf("invalid data URI payload: %w", err)
	}

	return DataURI{MediaType: strings.ToLower(mediaType), Data: data}, nil
}

// EncodeDataURI builds a base64 data URI
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DataURIDecoder reads the natural size of raster images carried as data
// URIs. Vector images have no intrinsic pixel size and report
// domain.ErrImageDecode.
type DataURIDecoder struct{}

func NewDataURIDecoder() *DataURIDecoder {
	return &DataURIDecoder{}
}

var _ ports.ImageDecoder = (*DataURIDecoder)(nil)

// DecodeSize parses the header of the image only
func (d *DataURIDecoder) DecodeSize(ctx context.Context, imageRef string) (domain.Size, error) {
	if err := ctx.Err(); err != nil {
		return domain.Size{}, err
	}

	uri, err := ParseDataURI(imageRef)
	if err != nil {
		return domain.Size{}, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	if uri.MediaType == mediaSVG {
		return domain.Size{}, fmt.Errorf("%w: svg has no natural pixel size", domain.ErrImageDecode)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(uri.Data))
	if err != nil {
		return domain.Size{}, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}

	size := domain.Size{Width: cfg.Width, Height: cfg.Height}
	if !size.Known() {
		return domain.Size{}, fmt.Errorf("%w: empty image", domain.ErrImageDecode)
	}
	return size, nil
}
