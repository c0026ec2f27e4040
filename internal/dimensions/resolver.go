// Package dimensions resolves the pixel geometry of a conversion request.
//
// Width and height are resolved independently. For each axis an explicit pixel
// value wins, then an explicit centimetre value converted with the preset
// density, then the stored default. Blank fields count as absent; a field that
// is present but does not parse is an error, never a silent fallback.
package dimensions

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"examphoto/internal/common"
)

const (
	// CentimetresPerInch converts between dots per inch and physical centimetres.
	CentimetresPerInch = 2.54

	// MaxSide is the largest width or height a baseline JPEG can hold.
	MaxSide = 65535
)

var (
	errNotPositive   = errors.New("must be positive")
	errMissingDPI    = errors.New("density must be positive to convert centimetres")
	errNotFiniteUnit = errors.New("not a finite number")
	errTooLarge      = fmt.Errorf("must not exceed %d pixels", MaxSide)
)

// Spec is a resolved width and height in pixels.
type Spec struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Spec) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Validate checks that both sides are in (0, MaxSide].
func (s Spec) Validate() error {
	if err := checkSide("width", "value", strconv.Itoa(s.Width), s.Width); err != nil {
		return err
	}
	return checkSide("height", "value", strconv.Itoa(s.Height), s.Height)
}

func checkSide(axis, field, raw string, value int) error {
	if value <= 0 {
		return &common.DimensionError{Axis: axis, Field: field, Value: raw, Err: errNotPositive}
	}
	if value > MaxSide {
		return &common.DimensionError{Axis: axis, Field: field, Value: raw, Err: errTooLarge}
	}
	return nil
}

// Input carries the raw, optional dimension fields of a request.
type Input struct {
	PixelWidth  string `json:"width_px,omitempty"`
	PixelHeight string `json:"height_px,omitempty"`
	UnitWidth   string `json:"width_cm,omitempty"`
	UnitHeight  string `json:"height_cm,omitempty"`
}

// IsEmpty reports whether no field is present.
func (in Input) IsEmpty() bool {
	return isBlank(in.PixelWidth) && isBlank(in.PixelHeight) &&
		isBlank(in.UnitWidth) && isBlank(in.UnitHeight)
}

// Resolve turns in into a definite Spec. dpi is only consulted when a
// centimetre value is used; def supplies any axis with no explicit value.
func Resolve(in Input, dpi int, def Spec) (Spec, error) {
	width, err := resolveAxis("width", in.PixelWidth, in.UnitWidth, dpi, def.Width)
	if err != nil {
		return Spec{}, err
	}
	height, err := resolveAxis("height", in.PixelHeight, in.UnitHeight, dpi, def.Height)
	if err != nil {
		return Spec{}, err
	}
	return Spec{Width: width, Height: height}, nil
}

func resolveAxis(axis, px, cm string, dpi, fallback int) (int, error) {
	px = strings.TrimSpace(px)
	cm = strings.TrimSpace(cm)

	var value int
	var field, raw string

	switch {
	case px != "":
		field, raw = "px", px
		n, err := strconv.Atoi(px)
		if err != nil {
			return 0, &common.DimensionError{Axis: axis, Field: field, Value: raw, Err: err}
		}
		value = n

	case cm != "":
		field, raw = "cm", cm
		f, err := strconv.ParseFloat(cm, 64)
		if err != nil {
			return 0, &common.DimensionError{Axis: axis, Field: field, Value: raw, Err: err}
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, &common.DimensionError{Axis: axis, Field: field, Value: raw, Err: errNotFiniteUnit}
		}
		if dpi <= 0 {
			return 0, &common.DimensionError{Axis: axis, Field: field, Value: raw, Err: errMissingDPI}
		}
		// Checked in float so huge lengths cannot overflow the int conversion.
		if f*float64(dpi)/CentimetresPerInch > MaxSide {
			return 0, &common.DimensionError{Axis: axis, Field: field, Value: raw, Err: errTooLarge}
		}
		value = CentimetresToPixels(f, dpi)

	default:
		field, raw = "default", strconv.Itoa(fallback)
		value = fallback
	}

	if err := checkSide(axis, field, raw, value); err != nil {
		return 0, err
	}
	return value, nil
}

// CentimetresToPixels converts a physical length to pixels at dpi, rounded to
// the nearest pixel.
func CentimetresToPixels(cm float64, dpi int) int {
	return int(math.Round(cm * float64(dpi) / CentimetresPerInch))
}

// PixelsToCentimetres is the inverse of CentimetresToPixels without rounding.
func PixelsToCentimetres(px, dpi int) float64 {
	if dpi <= 0 {
		return 0
	}
	return float64(px) * CentimetresPerInch / float64(dpi)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
