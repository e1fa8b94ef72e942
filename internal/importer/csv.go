package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-order-fulfillment.git/internal/orders"
	"github.com/ariefcatur/go-order-fulfillment.git/internal/tasks"
)

// ParseGroups reads a delimited file with a header row and groups its rows
// by order_number. Each group becomes one import task. Unknown columns are
// ignored; malformed qty/price values pass through as zero and are rejected
// row-by-row by the import plan.
func ParseGroups(r io.Reader) (map[string][]tasks.ImportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", orders.ErrInvalidInput)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	groups := make(map[string][]tasks.ImportRow)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %v: %w", err, orders.ErrInvalidInput)
		}

		qty, _ := strconv.Atoi(field(rec, "qty"))
		price, perr := decimal.NewFromString(field(rec, "price"))
		if perr != nil {
			price = decimal.Zero
		}
		row := tasks.ImportRow{
			OrderNumber:   field(rec, "order_number"),
			OrderDate:     field(rec, "order_date"),
			CustomerEmail: field(rec, "customer_email"),
			CustomerName:  field(rec, "customer_name"),
			SKU:           field(rec, "sku"),
			Qty:           qty,
			Price:         price,
		}
		groups[row.OrderNumber] = append(groups[row.OrderNumber], row)
	}
	return groups, nil
}
