package artifact

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const qrSize = 256

// Generator produces and stores ticket artifacts (QR PNG + ticket PDF)
// under the uploads directory.
type Generator interface {
	Generate(ctx context.Context, data TicketData) (qrPath, pdfPath string, err error)
}

type generator struct {
	uploadsDir string
}

func NewGenerator(uploadsDir string) (Generator, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &generator{uploadsDir: uploadsDir}, nil
}

func (g *generator) Generate(ctx context.Context, data TicketData) (string, string, error) {
	if data.Code == "" {
		return "", "", fmt.Errorf("ticket code is required")
	}

	qrPath := filepath.Join(g.uploadsDir, "qr-"+data.Code+".png")
	pdfPath := filepath.Join(g.uploadsDir, "ticket-"+data.Code+".pdf")

	qrBytes, err := GenerateQRCode(data.Code, qrSize)
	if err != nil {
		return "", "", fmt.Errorf("generate QR for %s: %w", data.Code, err)
	}
	if err := os.WriteFile(qrPath, qrBytes, 0o644); err != nil {
		return "", "", fmt.Errorf("write QR for %s: %w", data.Code, err)
	}

	data.QRPath = qrPath
	pdfReader, err := renderTicketPDF(data)
	if err != nil {
		return "", "", fmt.Errorf("render PDF for %s: %w", data.Code, err)
	}

	pdfFile, err := os.Create(pdfPath)
	if err != nil {
		return "", "", fmt.Errorf("write PDF for %s: %w", data.Code, err)
	}
	defer pdfFile.Close()

	if _, err := io.Copy(pdfFile, pdfReader); err != nil {
		return "", "", fmt.Errorf("write PDF for %s: %w", data.Code, err)
	}

	return qrPath, pdfPath, nil
}
