package render

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	perrors "github.com/matzehuels/plotmap/pkg/errors"
)

// ConverterBinary is the external SVG converter.
const ConverterBinary = "rsvg-convert"

// ErrNoConverter is returned when rsvg-convert is not on PATH.
var ErrNoConverter = perrors.New(perrors.ErrCodeUnsupported,
	"%s not found: brew install librsvg (macOS), apt install librsvg2-bin (Linux)", ConverterBinary)

// ToPNG rasterises an SVG at the given scale (2.0 for high-DPI output).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

// ToPDF converts an SVG to a single-page PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// Available reports whether rsvg-convert can be found.
func Available() bool {
	_, err := exec.LookPath(ConverterBinary)
	return err == nil
}

func convert(svg []byte, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(ConverterBinary)
	if err != nil {
		return nil, ErrNoConverter
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) && stderr.Len() > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "%s", ConverterBinary)
	}
	return out.Bytes(), nil
}
