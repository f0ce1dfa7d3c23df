package receipt

import (
	"fmt"
	"strings"
	"time"

	"bitesquicky/internal/models"
)

type LineKind int

const (
	LineTitle LineKind = iota
	LineCentered
	LineField
	LineNote
	LineRule
	LineItemHeader
	LineItem
	LineItemDetail
	LineAmount
	LineGrandTotal
	LineFooter
)

// Line is one row of a receipt. Item rows use all three columns; fields and
// amounts use Left and Right.
type Line struct {
	Kind   LineKind `json:"kind"`
	Left   string   `json:"left,omitempty"`
	Middle string   `json:"middle,omitempty"`
	Right  string   `json:"right,omitempty"`
}

type Document struct {
	ReceiptCode string `json:"receiptCode"`
	Lines       []Line `json:"lines"`
}

type Branding struct {
	StoreName string
	Tagline   string
	Phone     string
	Location  *time.Location
}

const maxItemTitle = 22

// Render builds the receipt for a persisted order.
func Render(order models.Order, items []models.OrderItem, zoneName string, brand Branding) Document {
	loc := brand.Location
	if loc == nil {
		loc = time.UTC
	}
	if zoneName == "" {
		zoneName = "N/A"
	}
	customer := order.ContactName
	if customer == "" {
		customer = "N/A"
	}
	created := order.CreatedAt.In(loc)

	lines := []Line{
		{Kind: LineTitle, Left: brand.StoreName},
	}
	if brand.Tagline != "" {
		lines = append(lines, Line{Kind: LineCentered, Left: brand.Tagline})
	}
	if brand.Phone != "" {
		lines = append(lines, Line{Kind: LineCentered, Left: "Tel: " + brand.Phone})
	}
	lines = append(lines,
		Line{Kind: LineField, Left: "Date: " + created.Format("02/01/2006"), Right: "Time: " + created.Format("03:04 PM")},
		Line{Kind: LineRule},
		Line{Kind: LineCentered, Left: "Receipt: " + order.ReceiptCode},
		Line{Kind: LineField, Left: "Customer:", Right: customer},
		Line{Kind: LineField, Left: "Phone:", Right: order.ContactPhone},
		Line{Kind: LineField, Left: "Pickup:", Right: zoneName},
		Line{Kind: LineField, Left: "Status:", Right: strings.ToUpper(string(order.Status))},
	)
	if order.RoomNumber != nil && *order.RoomNumber != "" {
		lines = append(lines, Line{Kind: LineField, Left: "Room:", Right: *order.RoomNumber})
	}
	if order.SpecialInstructions != nil && *order.SpecialInstructions != "" {
		lines = append(lines, Line{Kind: LineNote, Left: "Note: " + *order.SpecialInstructions})
	}

	lines = append(lines,
		Line{Kind: LineRule},
		Line{Kind: LineItemHeader, Left: "ITEM", Middle: "QTY", Right: "AMOUNT"},
	)
	for _, item := range items {
		lines = append(lines,
			Line{Kind: LineItem, Left: truncate(itemTitle(item), maxItemTitle), Middle: fmt.Sprintf("%d", item.Quantity), Right: fmt.Sprintf("%d", item.Subtotal)},
			Line{Kind: LineItemDetail, Left: fmt.Sprintf("@ %s each", kes(item.PriceAtTime))},
		)
	}

	lines = append(lines,
		Line{Kind: LineRule},
		Line{Kind: LineAmount, Left: "Subtotal:", Right: kes(order.Subtotal())},
		Line{Kind: LineAmount, Left: "Delivery Fee:", Right: kes(order.DeliveryFee)},
		Line{Kind: LineGrandTotal, Left: "TOTAL:", Right: kes(order.TotalAmount)},
		Line{Kind: LineRule},
		Line{Kind: LineFooter, Left: "Thank you for your order!"},
		Line{Kind: LineFooter, Left: "Please keep this receipt for reference"},
	)
	if brand.Phone != "" {
		lines = append(lines, Line{Kind: LineFooter, Left: "Order queries: WhatsApp " + brand.Phone})
	}

	return Document{ReceiptCode: order.ReceiptCode, Lines: lines}
}

// Text lays the document out in a fixed-width column for previews.
func (d Document) Text(width int) string {
	if width < 30 {
		width = 30
	}
	var b strings.Builder
	for _, line := range d.Lines {
		switch line.Kind {
		case LineTitle, LineCentered, LineFooter:
			b.WriteString(center(line.Left, width))
		case LineRule:
			b.WriteString(strings.Repeat("=", width))
		case LineItemHeader, LineItem:
			b.WriteString(columns(line.Left, line.Middle, line.Right, width))
		case LineItemDetail:
			b.WriteString("  " + line.Left)
		case LineNote:
			b.WriteString(line.Left)
		default:
			b.WriteString(spread(line.Left, line.Right, width))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Message is the chat-friendly form: no padding, one fact per line.
func (d Document) Message() string {
	var b strings.Builder
	for _, line := range d.Lines {
		var text string
		switch line.Kind {
		case LineRule:
			text = ""
		case LineItemHeader:
			continue
		case LineItem:
			text = fmt.Sprintf("%sx %s - KES %s", line.Middle, line.Left, line.Right)
		case LineItemDetail:
			continue
		default:
			text = strings.TrimSpace(line.Left + " " + line.Right)
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func itemTitle(item models.OrderItem) string {
	if item.Title == "" {
		return "Unknown Item"
	}
	return item.Title
}

func kes(amount int64) string {
	return fmt.Sprintf("KES %d", amount)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "..."
}

func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return strings.Repeat(" ", (width-n)/2) + s
}

func spread(left, right string, width int) string {
	gap := width - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func columns(left, middle, right string, width int) string {
	const qtyCol, amountCol = 5, 10
	nameCol := width - qtyCol - amountCol
	return fmt.Sprintf("%-*s%*s%*s", nameCol, left, qtyCol, middle, amountCol, right)
}
