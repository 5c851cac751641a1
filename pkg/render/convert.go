package render

import (
	"bytes"
	"fmt"
	"os/exec"

	"github.com/zhengjing-huang/lighthouse/pkg/errors"
)

// converter is the external tool used for SVG rasterization. Graphviz
// produces the SVG; everything past that is librsvg's job.
const converter = "rsvg-convert"

// ToPDF converts rendered SVG bytes to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG converts rendered SVG bytes to PNG at the given resolution
// multiplier. A scale of 2.0 doubles the pixel dimensions for high-DPI
// displays.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	return convert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// convert pipes svg through rsvg-convert. The tool check runs first so a
// missing install surfaces as guidance instead of a bare exec error.
func convert(svg []byte, format string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(converter); err != nil {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s export needs librsvg (macOS: brew install librsvg, Debian/Ubuntu: apt install librsvg2-bin)",
			format)
	}

	cmd := exec.Command(converter, append([]string{"-f", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err,
			"%s %s conversion: %s", converter, format, stderr.String())
	}
	return out.Bytes(), nil
}
