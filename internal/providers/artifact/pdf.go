package artifact

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// TicketData carries everything rendered onto a single ticket PDF.
type TicketData struct {
	EventTitle string
	Venue      string
	StartsAt   string
	HolderName string
	Code       string
	QRPath     string
}

// renderTicketPDF renders a one-page ticket. The QR image must already
// exist on disk; a ticket PDF is never produced without its QR code.
func renderTicketPDF(data TicketData) (io.Reader, error) {
	if _, err := os.Stat(data.QRPath); err != nil {
		return nil, fmt.Errorf("ticket QR image %s: %w", data.QRPath, err)
	}

	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, "E-Ticket", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(10,
		text.NewCol(12, data.EventTitle, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
		}),
	)

	m.AddRow(24,
		col.New(7).Add(
			text.New("Venue: "+data.Venue, props.Text{Top: 0, Size: 10}),
			text.New("Starts: "+data.StartsAt, props.Text{Top: 6, Size: 10}),
			text.New("Holder: "+data.HolderName, props.Text{Top: 12, Size: 10}),
			text.New("Code: "+data.Code, props.Text{Top: 18, Size: 10, Style: fontstyle.Bold}),
		),
		col.New(5),
	)

	m.AddRow(60,
		col.New(3),
		image.NewFromFileCol(6, data.QRPath, props.Rect{
			Center:  true,
			Percent: 90,
		}),
		col.New(3),
	)

	m.AddRow(8,
		text.NewCol(12, "Present this QR code at the entrance.", props.Text{
			Size:  8,
			Align: align.Center,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
