package services

import (
	"bytes"
	"fmt"
	"strings"

	"invoiceflow/internal/billing"
	"invoiceflow/internal/models"

	"github.com/jung-kurt/gofpdf"
)

// SellerInfo is printed in the invoice header.
type SellerInfo struct {
	Name    string
	Address string
	GSTIN   string
}

// PDFService renders printable GST tax invoices.
type PDFService interface {
	RenderInvoice(inv *models.Invoice) ([]byte, error)
}

type pdfService struct {
	seller SellerInfo
}

func NewPDFService(seller SellerInfo) PDFService {
	return &pdfService{seller: seller}
}

func (s *pdfService) RenderInvoice(inv *models.Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 15.0
	marginY := 15.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Seller header
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.CellFormat(0, 9, tr(s.seller.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	if s.seller.Address != "" {
		pdf.MultiCell(0, 5, tr(s.seller.Address), "", "L", false)
	}
	if s.seller.GSTIN != "" {
		pdf.CellFormat(0, 5, "GSTIN: "+s.seller.GSTIN, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "TAX INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Invoice details
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 6, "Invoice Number: "+inv.InvoiceNumber, "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Invoice Date: "+inv.InvoiceDate.Format("02-Jan-2006"), "", 1, "R", false, 0, "")
	pdf.Ln(3)

	// Buyer block
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "BILL TO:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range buyerLines(inv.Buyer) {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Items table
	headers := []string{"#", "Description", "HSN/SAC", "Qty", "Rate", "Amount"}
	colWidths := []float64{8, 72, 25, 15, 30, 30}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 7, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for i, item := range inv.Items {
		pdf.CellFormat(colWidths[0], 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], 7, tr(truncate(item.Name, 45)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], 7, item.HSNSAC, "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[3], 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[4], 7, billing.FormatAmount(item.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[5], 7, billing.FormatAmount(item.Total), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	// Totals
	labelWidth := 150.0
	valueWidth := 30.0
	totalRow := func(label string, amount float64) {
		pdf.CellFormat(labelWidth, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valueWidth, 6, billing.FormatAmount(amount), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
	totalRow("Taxable Value:", inv.SubTotal)
	totalRow("CGST (9%):", inv.CGST)
	totalRow("SGST (9%):", inv.SGST)
	totalRow("Total Tax:", inv.TaxAmount)

	pdf.SetFont("Arial", "B", 11)
	pdf.SetTextColor(220, 20, 60)
	totalRow("GRAND TOTAL (Rs.):", inv.GrandTotal)
	pdf.SetTextColor(33, 37, 41)
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(0, 5, "Amount in words:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(0, 5, billing.AmountInWords(inv.GrandTotal), "", "L", false)
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 8)
	for _, term := range []string{
		"1. Goods once sold will not be taken back",
		"2. This is a computer generated invoice",
	} {
		pdf.CellFormat(0, 5, term, "", 1, "L", false, 0, "")
	}

	pdf.Ln(10)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 5, tr("For "+s.seller.Name), "", 1, "R", false, 0, "")
	pdf.CellFormat(0, 5, "Authorised Signatory", "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func buyerLines(b models.BuyerAddress) []string {
	var lines []string
	for _, l := range []string{b.Name, b.AddressLine1, b.AddressLine2} {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if b.StateNameAndCode != "" {
		lines = append(lines, "State: "+b.StateNameAndCode)
	}
	if b.HasRealGSTIN() {
		lines = append(lines, "GSTIN: "+models.NormalizeGSTIN(b.GSTIN))
	}
	if b.Contact != "" {
		lines = append(lines, "Contact: "+b.Contact)
	}
	if len(lines) == 0 {
		lines = append(lines, "Cash Customer")
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
