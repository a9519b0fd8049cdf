// Package summary renders the downloadable verification summary PDF.
package summary

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/draw"

	"github.com/junsooki/kyccapture/internal/decoder"
	"github.com/junsooki/kyccapture/internal/encoder"
	"github.com/junsooki/kyccapture/internal/kyc"
)

// thumbMax bounds the longer side of an embedded thumbnail, in pixels.
const thumbMax = 600

const (
	pageMargin = 15.0
	cellW      = 85.0
	cellH      = 60.0
	gutter     = 10.0
)

type entry struct {
	label string
	data  []byte
}

// Write renders s as an A4 PDF.
func Write(w io.Writer, s *kyc.Summary) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Verification Complete!", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 7, "Your KYC documents have been submitted successfully", "", 1, "C", false, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(45, 8, "Reference Number")
	pdf.SetFont("Courier", "", 12)
	pdf.Cell(0, 8, s.Reference)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.Cell(0, 6, fmt.Sprintf("Session %s, submitted %s", s.SessionID, s.SubmittedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "Uploaded Documents")
	pdf.Ln(10)

	var entries []entry
	for _, d := range kyc.Documents {
		if f := s.Data.File(d.Slot); f != nil {
			entries = append(entries, entry{label: d.Label, data: f.Data})
		}
	}
	if !s.Data.Signature.Empty() {
		_, data, err := s.Data.Signature.Decode()
		if err != nil {
			return fmt.Errorf("summary: signature: %w", err)
		}
		entries = append(entries, entry{label: "Signature", data: data})
	}

	top := pdf.GetY()
	for i, e := range entries {
		col, row := i%2, i/2
		x := pageMargin + float64(col)*(cellW+gutter)
		y := top + float64(row)*(cellH+gutter+6)
		if err := placeThumbnail(pdf, fmt.Sprintf("doc%d", i), e.data, x, y); err != nil {
			return fmt.Errorf("summary: %s: %w", e.label, err)
		}
		pdf.SetXY(x, y+cellH+1)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(cellW, 5, e.label, "", 0, "C", false, 0, "")
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("summary: %w", err)
	}
	return pdf.Output(w)
}

// WriteFile renders s to path.
func WriteFile(path string, s *kyc.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func placeThumbnail(pdf *gofpdf.Fpdf, name string, data []byte, x, y float64) error {
	img, err := decoder.NewImageDecoder().Decode(data)
	if err != nil {
		return err
	}
	thumb := Thumbnail(img, thumbMax)
	jpg, err := encoder.NewJPEGEncoder(85).Encode(thumb)
	if err != nil {
		return err
	}

	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(jpg))
	if pdf.Err() {
		return pdf.Error()
	}

	// Fit inside the cell, centred.
	b := thumb.Bounds()
	w, h := cellW, cellW*float64(b.Dy())/float64(b.Dx())
	if h > cellH {
		w, h = cellH*float64(b.Dx())/float64(b.Dy()), cellH
	}
	pdf.SetDrawColor(200, 200, 200)
	pdf.Rect(x, y, cellW, cellH, "D")
	pdf.ImageOptions(name, x+(cellW-w)/2, y+(cellH-h)/2, w, h, false, gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")
	return nil
}

// Thumbnail flattens img onto white and scales it so its longer side is at
// most limit pixels. Smaller images keep their size.
func Thumbnail(img image.Image, limit int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > limit || h > limit {
		if w >= h {
			w, h = limit, max(1, h*limit/b.Dx())
		} else {
			w, h = max(1, w*limit/b.Dy()), limit
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
