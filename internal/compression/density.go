package compression

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
)

const (
	markerSOI  = 0xD8
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1

	jfifUnitsDPI     = 1
	exifUnitsInch    = 2
	maxSegmentLength = 0xFFFF
)

var exifPrefix = []byte("Exif\x00\x00")

// densitySegments builds the APP0 (JFIF) and, if withExif, APP1 (EXIF) segments
// carrying dpi.
func densitySegments(dpi int, withExif bool) ([]byte, error) {
	if dpi > 0xFFFF {
		dpi = 0xFFFF
	}

	var buf bytes.Buffer
	buf.Write(jfifSegment(dpi))

	if withExif {
		raw, err := exifResolutionBlock(dpi)
		if err != nil {
			return nil, fmt.Errorf("build exif: %w", err)
		}
		length := 2 + len(exifPrefix) + len(raw)
		if length > maxSegmentLength {
			return nil, fmt.Errorf("exif block too large: %d bytes", length)
		}
		buf.Write([]byte{0xFF, markerAPP1})
		binary.Write(&buf, binary.BigEndian, uint16(length))
		buf.Write(exifPrefix)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

func jfifSegment(dpi int) []byte {
	seg := []byte{
		0xFF, markerAPP0,
		0x00, 0x10, // length
		'J', 'F', 'I', 'F', 0x00,
		0x01, 0x02, // version 1.02
		jfifUnitsDPI,
		0, 0, // X density
		0, 0, // Y density
		0, 0, // no thumbnail
	}
	binary.BigEndian.PutUint16(seg[12:14], uint16(dpi))
	binary.BigEndian.PutUint16(seg[14:16], uint16(dpi))
	return seg
}

// exifResolutionBlock encodes an IFD0 with XResolution, YResolution and
// ResolutionUnit (inches).
func exifResolutionBlock(dpi int) ([]byte, error) {
	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return nil, err
	}
	ti := exif.NewTagIndex()

	ib := exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder)

	resolution := []exifcommon.Rational{{Numerator: uint32(dpi), Denominator: 1}}
	if err := ib.AddStandardWithName("XResolution", resolution); err != nil {
		return nil, err
	}
	if err := ib.AddStandardWithName("YResolution", resolution); err != nil {
		return nil, err
	}
	if err := ib.AddStandardWithName("ResolutionUnit", []uint16{exifUnitsInch}); err != nil {
		return nil, err
	}

	ibe := exif.NewIfdByteEncoder()
	return ibe.EncodeToExif(ib)
}

// insertAfterSOI splices segments between the SOI marker and the rest of a JPEG
// stream. The standard encoder writes no APPn segments, so nothing is replaced.
func insertAfterSOI(jpegData, segments []byte) ([]byte, error) {
	if len(jpegData) < 2 || jpegData[0] != 0xFF || jpegData[1] != markerSOI {
		return nil, fmt.Errorf("not a jpeg stream")
	}

	out := make([]byte, 0, len(jpegData)+len(segments))
	out = append(out, jpegData[:2]...)
	out = append(out, segments...)
	out = append(out, jpegData[2:]...)
	return out, nil
}

// ReadJFIFDensity returns the dots-per-inch stored in a JFIF APP0 header, or 0
// when the stream has none or uses another unit.
func ReadJFIFDensity(jpegData []byte) int {
	if len(jpegData) < 20 || jpegData[0] != 0xFF || jpegData[1] != markerSOI {
		return 0
	}
	seg := jpegData[2:]
	if seg[0] != 0xFF || seg[1] != markerAPP0 || !bytes.Equal(seg[4:9], []byte("JFIF\x00")) {
		return 0
	}
	switch seg[11] {
	case jfifUnitsDPI:
		return int(binary.BigEndian.Uint16(seg[12:14]))
	case 2: // dots per centimetre
		return int(float64(binary.BigEndian.Uint16(seg[12:14]))*2.54 + 0.5)
	}
	return 0
}
