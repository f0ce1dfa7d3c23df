package receipt

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"bitesquicky/internal/models"
)

func sampleOrder() (models.Order, []models.OrderItem) {
	room := "B12"
	note := "No onions"
	order := models.Order{
		ReceiptCode:         "BQ-20250314-1234-AB7",
		ContactName:         "Wanjiru",
		ContactPhone:        "+254700000001",
		RoomNumber:          &room,
		SpecialInstructions: &note,
		DeliveryFee:         15,
		TotalAmount:         265,
		Status:              models.OrderStatusPending,
		CreatedAt:           time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
	}
	items := []models.OrderItem{
		{Title: "Beef Samosa", Quantity: 2, PriceAtTime: 100, Subtotal: 200},
		{Title: "A very long menu item title that overflows", Quantity: 1, PriceAtTime: 50, Subtotal: 50},
	}
	return order, items
}

var testBrand = Branding{StoreName: "BitesQuicky", Tagline: "Fast Campus Food Delivery", Phone: "+254 114 097 160"}

func TestRenderContainsAllBlocks(t *testing.T) {
	order, items := sampleOrder()
	doc := Render(order, items, "Hostel A", testBrand)

	if doc.ReceiptCode != order.ReceiptCode {
		t.Fatalf("expected receipt code %q, got %q", order.ReceiptCode, doc.ReceiptCode)
	}
	text := doc.Text(40)
	for _, want := range []string{
		"BitesQuicky",
		"Receipt: BQ-20250314-1234-AB7",
		"Wanjiru",
		"Hostel A",
		"PENDING",
		"B12",
		"Note: No onions",
		"Beef Samosa",
		"@ KES 100 each",
		"A very long menu item...",
		"KES 250",
		"KES 15",
		"KES 265",
		"Thank you for your order!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected receipt text to contain %q\n%s", want, text)
		}
	}
}

func TestRenderMissingNamesFallBack(t *testing.T) {
	order, _ := sampleOrder()
	order.ContactName = ""
	order.RoomNumber = nil
	doc := Render(order, []models.OrderItem{{Quantity: 1, PriceAtTime: 10, Subtotal: 10}}, "", testBrand)
	text := doc.Text(40)

	if strings.Count(text, "N/A") != 2 {
		t.Fatalf("expected customer and pickup fallbacks, got\n%s", text)
	}
	if strings.Contains(text, "Room:") {
		t.Fatal("room line rendered without a room number")
	}
	if !strings.Contains(text, "Unknown Item") {
		t.Fatal("expected placeholder for untitled item")
	}
}

func TestTextLinesFitWidth(t *testing.T) {
	order, items := sampleOrder()
	order.SpecialInstructions = nil
	for _, line := range strings.Split(strings.TrimRight(Render(order, items, "Hostel A", testBrand).Text(40), "\n"), "\n") {
		if n := len([]rune(line)); n > 40 {
			t.Errorf("line wider than 40 columns (%d): %q", n, line)
		}
	}
}

func TestWhatsAppLinkUsesSameDocument(t *testing.T) {
	order, items := sampleOrder()
	doc := Render(order, items, "Hostel A", testBrand)
	link := WhatsAppLink("+254 114-097-160", doc)

	if !strings.HasPrefix(link, "https://wa.me/254114097160?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if strings.Contains(link, "+") {
		t.Fatalf("spaces must be percent-encoded, got %s", link)
	}
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	msg := parsed.Query().Get("text")
	if msg != doc.Message() {
		t.Fatalf("decoded message differs from document message:\n%q\n%q", msg, doc.Message())
	}
	if !strings.Contains(msg, "2x Beef Samosa - KES 200") {
		t.Fatalf("expected item line in message, got %q", msg)
	}
}

func TestWritePDF(t *testing.T) {
	order, items := sampleOrder()
	var buf bytes.Buffer
	if err := WritePDF(&buf, Render(order, items, "Hostel A", testBrand)); err != nil {
		t.Fatalf("WritePDF returned error: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:8])
	}
}
