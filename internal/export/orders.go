// Package export writes the admin order list as CSV or Excel.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/tealeg/xlsx"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"bitesquicky/internal/models"
)

const timeLayout = "2006-01-02 15:04:05"

var headers = []string{
	"Receipt", "Date", "Customer", "Phone", "Pickup Zone", "Room",
	"Status", "Subtotal", "Delivery Fee", "Total", "Instructions",
}

type Row struct {
	ReceiptCode  string
	CreatedAt    time.Time
	ContactName  string
	ContactPhone string
	Zone         string
	Room         string
	Status       models.OrderStatus
	Subtotal     int64
	DeliveryFee  int64
	Total        int64
	Instructions string
}

// Rows flattens orders for export. Unknown zones are written as N/A.
func Rows(orders []models.Order, zoneNames map[primitive.ObjectID]string, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]Row, 0, len(orders))
	for _, o := range orders {
		zone, ok := zoneNames[o.PickupZoneID]
		if !ok {
			zone = "N/A"
		}
		rows = append(rows, Row{
			ReceiptCode:  o.ReceiptCode,
			CreatedAt:    o.CreatedAt.In(loc),
			ContactName:  o.ContactName,
			ContactPhone: o.ContactPhone,
			Zone:         zone,
			Room:         deref(o.RoomNumber),
			Status:       o.Status,
			Subtotal:     o.Subtotal(),
			DeliveryFee:  o.DeliveryFee,
			Total:        o.TotalAmount,
			Instructions: deref(o.SpecialInstructions),
		})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r Row) strings() []string {
	return []string{
		r.ReceiptCode,
		r.CreatedAt.Format(timeLayout),
		r.ContactName,
		r.ContactPhone,
		r.Zone,
		r.Room,
		string(r.Status),
		strconv.FormatInt(r.Subtotal, 10),
		strconv.FormatInt(r.DeliveryFee, 10),
		strconv.FormatInt(r.Total, 10),
		r.Instructions,
	}
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes one "Orders" sheet. Money columns are numeric cells.
func WriteXLSX(w io.Writer, rows []Row) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, r := range rows {
		row := sheet.AddRow()
		row.AddCell().SetValue(r.ReceiptCode)
		row.AddCell().SetValue(r.CreatedAt.Format(timeLayout))
		row.AddCell().SetValue(r.ContactName)
		row.AddCell().SetValue(r.ContactPhone)
		row.AddCell().SetValue(r.Zone)
		row.AddCell().SetValue(r.Room)
		row.AddCell().SetValue(string(r.Status))
		row.AddCell().SetInt64(r.Subtotal)
		row.AddCell().SetInt64(r.DeliveryFee)
		row.AddCell().SetInt64(r.Total)
		row.AddCell().SetValue(r.Instructions)
	}

	return file.Write(w)
}
