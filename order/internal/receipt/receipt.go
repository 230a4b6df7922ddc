// Package receipt renders a downloadable PDF receipt for one order.
package receipt

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/rs/zerolog"

	"github.com/Alturino/focushoney/internal/common/money"
	"github.com/Alturino/focushoney/internal/log"
	"github.com/Alturino/focushoney/internal/otel"
	"github.com/Alturino/focushoney/order/pkg/response"
)

const (
	Title           = "Focus Honey - Order Receipt"
	Footer          = "Thank you for shopping with Focus Honey!"
	DefaultCustomer = "Customer"
	dateLayout      = "02 Jan 2006 15:04"
)

var whitespace = regexp.MustCompile(`\s`)

type Receipt struct {
	Filename string
	Content  []byte
}

// Filename is FocusHoney_<customer>_Order_<last 6 chars of the order id>.pdf.
func Filename(customerName string, orderID string) string {
	if customerName == "" {
		customerName = DefaultCustomer
	}
	suffix := orderID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return fmt.Sprintf("FocusHoney_%s_Order_%s.pdf", whitespace.ReplaceAllString(customerName, "_"), suffix)
}

func Render(c context.Context, order response.Order, customerName string) (Receipt, error) {
	c, span := otel.Tracer.Start(c, "receipt Render")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "receipt Render").
		Str(log.KeyOrderID, order.ID.String()).
		Logger()

	if customerName == "" {
		customerName = DefaultCustomer
	}

	logger = logger.With().Str(log.KeyProcess, "rendering receipt").Logger()
	logger.Trace().Msg("rendering receipt")
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetCreator("focushoney", true)
	pdf.SetCreationDate(order.CreatedAt)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 10, Footer, "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Text(14, 20, tr(Title))

	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(14, 30, tr("Customer Name: "+customerName))
	pdf.Text(14, 40, tr("Order ID: "+order.ID.String()))
	pdf.Text(14, 50, tr("Date: "+order.CreatedAt.Local().Format(dateLayout)))

	widths := []float64{100, 35, 47}
	pdf.SetXY(14, 60)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(242, 169, 0)
	for i, header := range []string{"Item", "Quantity", "Price"} {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range order.OrderItems {
		pdf.SetX(14)
		pdf.CellFormat(widths[0], 8, tr(item.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, strconv.Itoa(item.Quantity), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, money.Format(item.Price), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(14, pdf.GetY()+10, "Total: "+money.FormatFixed(order.TotalPrice))

	buf := bytes.Buffer{}
	if err := pdf.Output(&buf); err != nil {
		err = fmt.Errorf("failed rendering receipt with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Receipt{}, err
	}
	logger.Trace().Int("receiptSize", buf.Len()).Msg("rendered receipt")

	return Receipt{
		Filename: Filename(customerName, order.ID.String()),
		Content:  buf.Bytes(),
	}, nil
}
