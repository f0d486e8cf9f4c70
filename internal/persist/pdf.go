package persist

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/go-pdf/fpdf"

	"golang.org/x/image/bmp"
)

// screenDPI is assumed when sizing the PDF page; scope hardcopies carry
// no density metadata.
const screenDPI = 96

// WritePDF embeds the captured screen into a single-page PDF sized to
// the image. PNG captures embed directly; BMP captures are converted
// to PNG first since PDF image XObjects take PNG/JPEG only.
func WritePDF(data []byte, outputPath string) error {
	pdfBytes, err := GeneratePDF(data)
	if err != nil {
		return err
	}
	return os.WriteFile(outputPath, pdfBytes, 0644)
}

// GeneratePDF builds the PDF in memory.
func GeneratePDF(data []byte) ([]byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}

	reader := bytes.NewReader(data)
	if format == "bmp" {
		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode BMP: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("convert BMP to PNG: %w", err)
		}
		reader = bytes.NewReader(buf.Bytes())
	}

	widthMM := float64(cfg.Width) / screenDPI * 25.4
	heightMM := float64(cfg.Height) / screenDPI * 25.4

	pdf := fpdf.New("L", "mm", "", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("L", fpdf.SizeType{Wd: widthMM, Ht: heightMM})
	pdf.RegisterImageOptionsReader("screen", fpdf.ImageOptions{ImageType: "PNG"}, reader)
	pdf.ImageOptions("screen", 0, 0, widthMM, heightMM, false, fpdf.ImageOptions{}, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("generate PDF: %w", err)
	}
	return out.Bytes(), nil
}
