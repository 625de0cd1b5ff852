package stego

import (
	"errors"
	"iter"
	"slices"

	"lsb-steganography/img"
	"lsb-steganography/models"
)

var imageMimetypes = []string{MimePNG, MimeBMP, MimeTIFF}

// ImageCarrier hides bits in the colour channel bytes of a raster. With four
// channels the alpha byte of every pixel is skipped.
type ImageCarrier struct {
	raster   *img.Raster
	mimetype string
}

// LoadImageCarrier decodes a PNG, BMP or TIFF file. The magic bytes must agree
// with the declared mimetype.
func LoadImageCarrier(data []byte, mimetype string) (*ImageCarrier, error) {
	return loadImageCarrier(data, mimetype, 0)
}

func loadImageCarrier(data []byte, mimetype string, maxPixels int) (*ImageCarrier, error) {
	mt := NormalizeMimetype(mimetype)
	if !slices.Contains(imageMimetypes, mt) {
		return nil, unsupportedFormat(StageLoading, nil, "unsupported image type %q", mimetype)
	}
	if !MatchesSignature(data, mt) {
		return nil, unsupportedFormat(StageLoading, nil, "file content does not match %s", mt)
	}

	raster, err := img.DecodeLimit(data, mt, maxPixels)
	if err != nil {
		return nil, unsupportedFormat(StageLoading, err, "failed to load image")
	}

	return &ImageCarrier{raster: raster, mimetype: mt}, nil
}

// NewImageCarrier wraps an already decoded raster.
func NewImageCarrier(raster *img.Raster) (*ImageCarrier, error) {
	if raster == nil || len(raster.Pix) != raster.Width*raster.Height*raster.Channels {
		return nil, unsupportedFormat(StageLoading, errors.New("pixel buffer size mismatch"), "invalid raster")
	}
	switch raster.Channels {
	case 1, 3, 4:
	default:
		return nil, unsupportedFormat(StageLoading, nil, "unsupported channel count %d", raster.Channels)
	}
	return &ImageCarrier{raster: raster, mimetype: MimePNG}, nil
}

func (ic *ImageCarrier) Stream() []byte {
	return ic.raster.Pix
}

func (ic *ImageCarrier) Offsets() iter.Seq[int] {
	skipAlpha := ic.raster.Channels == 4
	return func(yield func(int) bool) {
		for i := range ic.raster.Pix {
			if skipAlpha && (i+1)%4 == 0 {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}

func (ic *ImageCarrier) Capacity() int {
	n := len(ic.raster.Pix)
	if ic.raster.Channels == 4 {
		return n - n/4
	}
	return n
}

// Serialize always emits PNG so the low bits survive.
func (ic *ImageCarrier) Serialize() ([]byte, error) {
	return ic.raster.EncodePNG()
}

func (ic *ImageCarrier) OutputMimetype() string {
	return MimePNG
}

func (ic *ImageCarrier) Width() int    { return ic.raster.Width }
func (ic *ImageCarrier) Height() int   { return ic.raster.Height }
func (ic *ImageCarrier) Channels() int { return ic.raster.Channels }

func (ic *ImageCarrier) Metadata() models.CarrierMetadata {
	capacity := ic.Capacity()
	return models.CarrierMetadata{
		Kind:          "image",
		Mimetype:      ic.mimetype,
		Width:         ic.raster.Width,
		Height:        ic.raster.Height,
		Channels:      ic.raster.Channels,
		TotalBytes:    len(ic.raster.Pix),
		CapacityBits:  capacity,
		CapacityBytes: capacity / 8,
	}
}
