package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/saurabh-chakrabarthi/hermes/configs"
	"github.com/saurabh-chakrabarthi/hermes/models"
)

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Georgia, serif; margin: 60px; color: #1a1a2e; }
  .header { border-bottom: 3px solid #1a1a2e; padding-bottom: 12px; }
  .reference { font-size: 28px; letter-spacing: 2px; }
  table { width: 100%; margin-top: 30px; border-collapse: collapse; }
  td { padding: 8px 0; border-bottom: 1px solid #ddd; }
  td.label { color: #555; width: 40%; }
  .status { font-weight: bold; }
  .footer { margin-top: 40px; font-size: 12px; color: #888; }
</style>
</head>
<body>
  <div class="header">
    <h1>Tuition Payment Receipt</h1>
    <div class="reference">{{.Reference}}</div>
  </div>
  <table>
    <tr><td class="label">Sender</td><td>{{.Name}} ({{.Email}})</td></tr>
    <tr><td class="label">School</td><td>{{.School}}</td></tr>
    <tr><td class="label">Student ID</td><td>{{.StudentID}}</td></tr>
    <tr><td class="label">Amount Requested</td><td>{{printf "%.2f" .Amount}} {{.CurrencyFrom}}</td></tr>
    <tr><td class="label">Amount Received</td><td>{{printf "%.2f" .AmountReceived}} {{.CurrencyFrom}}</td></tr>
    <tr><td class="label">Fee ({{printf "%.1f" .FeePercentage}}%)</td><td>{{printf "%.2f" .FeeAmount}} {{.CurrencyFrom}}</td></tr>
    <tr><td class="label">Total With Fee</td><td>{{printf "%.2f" .FinalAmount}} {{.CurrencyFrom}}</td></tr>
    <tr><td class="label">Settlement</td><td class="status">{{.Status}}</td></tr>
    <tr><td class="label">Date</td><td>{{.CreatedAt.Format "January 2, 2006 15:04 MST"}}</td></tr>
  </table>
  <div class="footer">Simulated settlement — no funds were moved. Payment ID {{.ID}}</div>
</body>
</html>`))

// GenerateReceiptPDF renders the payment receipt to PDF via headless
// Chrome.
func GenerateReceiptPDF(payment *models.Payment) ([]byte, error) {
	var rendered bytes.Buffer
	if err := receiptTemplate.Execute(&rendered, payment); err != nil {
		return nil, err
	}

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	htmlContent := rendered.String()
	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

// ArchiveReceipt uploads a generated receipt to Cloudinary when a
// CLOUDINARY_URL is configured. Archival is best-effort; a failure only
// logs.
func ArchiveReceipt(pdfBytes []byte, payment *models.Payment) {
	cloudinaryURL := config.Config("CLOUDINARY_URL")
	if cloudinaryURL == "" {
		return
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		log.Printf("🔥 Cloudinary init failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("receipts/%s_%s", payment.Reference, payment.ID),
		Folder:       "hermes_receipts",
		ResourceType: "raw",
	}

	if _, err := cld.Upload.Upload(ctx, bytes.NewReader(pdfBytes), uploadParams); err != nil {
		log.Printf("🔥 Failed to archive receipt %s: %v", payment.Reference, err)
		return
	}
	log.Printf("✅ Archived receipt %s", payment.Reference)
}
