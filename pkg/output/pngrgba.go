package output

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

const pngSignature = "\x89PNG\r\n\x1a\n"

// PNG filter types, in the order they are tried.
const (
	filterNone = iota
	filterSub
	filterUp
	filterAverage
	filterPaeth
	numFilters
)

// encodeRGBA writes img as an 8-bit PNG with an alpha channel (color type 6),
// even when every pixel is opaque. Rows use the adaptive filter choice of the
// standard encoder: no filter at NoCompression, otherwise the filter with the
// smallest sum of absolute signed residuals.
func encodeRGBA(w io.Writer, img image.Image, level png.CompressionLevel) error {
	src, ok := img.(*image.NRGBA)
	if !ok {
		src = imaging.Clone(img)
	}
	width, height := src.Rect.Dx(), src.Rect.Dy()
	if width <= 0 || height <= 0 || int64(width)*int64(height) >= 1<<32 {
		return fmt.Errorf("png: invalid image size %v", src.Rect)
	}

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height))
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha

	var idat bytes.Buffer
	zw, err := zlib.NewWriterLevel(&idat, zlibLevel(level))
	if err != nil {
		return err
	}
	rowLen := 4 * width
	prev := make([]byte, rowLen)
	var cand [numFilters][]byte
	for f := range cand {
		cand[f] = make([]byte, 1+rowLen)
		cand[f][0] = byte(f)
	}
	for y := 0; y < height; y++ {
		off := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		cur := src.Pix[off : off+rowLen]
		row := filterRow(cur, prev, &cand, level == png.NoCompression)
		if _, err := zw.Write(row); err != nil {
			return err
		}
		prev = cur
	}
	if err := zw.Close(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(pngSignature); err != nil {
		return err
	}
	for _, c := range []struct {
		typ  string
		data []byte
	}{
		{"IHDR", ihdr[:]},
		{"IDAT", idat.Bytes()},
		{"IEND", nil},
	} {
		if err := writeChunk(bw, c.typ, c.data); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// filterRow fills every candidate with cur filtered against prev and returns
// the one to write, filter type byte included.
func filterRow(cur, prev []byte, cand *[numFilters][]byte, unfiltered bool) []byte {
	if unfiltered {
		copy(cand[filterNone][1:], cur)
		return cand[filterNone]
	}
	for i, x := range cur {
		b := prev[i]
		var a, c byte
		if i >= 4 {
			a, c = cur[i-4], prev[i-4]
		}
		cand[filterNone][i+1] = x
		cand[filterSub][i+1] = x - a
		cand[filterUp][i+1] = x - b
		cand[filterAverage][i+1] = x - byte((int(a)+int(b))/2)
		cand[filterPaeth][i+1] = x - paeth(a, b, c)
	}

	best, bestSum := 0, -1
	for f := range cand {
		sum := 0
		for _, v := range cand[f][1:] {
			sum += absInt(int(int8(v)))
		}
		if bestSum < 0 || sum < bestSum {
			best, bestSum = f, sum
		}
	}
	return cand[best]
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := absInt(p-int(a)), absInt(p-int(b)), absInt(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func zlibLevel(l png.CompressionLevel) int {
	switch l {
	case png.NoCompression:
		return zlib.NoCompression
	case png.BestSpeed:
		return zlib.BestSpeed
	case png.BestCompression:
		return zlib.BestCompression
	default:
		return zlib.DefaultCompression
	}
}

func writeChunk(w io.Writer, typ string, data []byte) error {
	var head [8]byte
	binary.BigEndian.PutUint32(head[:4], uint32(len(data)))
	copy(head[4:], typ)

	crc := crc32.NewIEEE()
	crc.Write(head[4:])
	crc.Write(data)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())

	for _, b := range [][]byte{head[:], data, tail[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}
