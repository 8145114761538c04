package receipt

import (
	"fmt"
	"time"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

const (
	nameWidth  = 25
	qtyWidth   = 3
	totalWidth = 8
	currency   = "CFA"
)

// Thermal renders a finalized order into the styled text blocks the narrow
// receipt printer understands. The same order and timestamp always produce
// the same blocks.
func Thermal(header entity.ReceiptHeader, order *entity.Order, at time.Time) []entity.TextBlock {
	blocks := []entity.TextBlock{
		{Style: entity.BlockHeader, Text: header.BusinessName},
	}
	if header.Address != "" {
		blocks = append(blocks, entity.TextBlock{Style: entity.BlockHeader, Text: header.Address})
	}
	if header.Phone != "" {
		blocks = append(blocks, entity.TextBlock{Style: entity.BlockHeader, Text: header.Phone})
	}

	blocks = append(blocks,
		entity.TextBlock{Style: entity.BlockMeta, Text: fmt.Sprintf("Order #%s", order.OrderNumber)},
		entity.TextBlock{Style: entity.BlockMeta, Text: at.Format("02/01/2006 15:04")},
		entity.TextBlock{Style: entity.BlockMeta, Text: fmt.Sprintf("Table: %s", order.TableNumber)},
	)

	for i := range order.Lines {
		blocks = append(blocks, entity.TextBlock{Style: entity.BlockItem, Text: ItemRow(&order.Lines[i])})
	}

	if order.DiscountPercent > 0 {
		blocks = append(blocks, entity.TextBlock{
			Style: entity.BlockTotal,
			Text:  fmt.Sprintf("Discount: %.0f%%", order.DiscountPercent),
		})
	}
	blocks = append(blocks,
		entity.TextBlock{Style: entity.BlockTotal, Text: fmt.Sprintf("TOTAL: %.2f %s", order.Total(), currency)},
		entity.TextBlock{Style: entity.BlockFooter, Text: "Merci de votre visite"},
	)
	return blocks
}

// ItemRow lays one line out on the fixed-width monospace grid: name padded
// to 25, quantity in 3, line total in 8, currency suffix. Names are
// truncated by runes, not bytes, so accented names never leave a broken
// sequence on the printer.
func ItemRow(line *entity.CartLine) string {
	name := line.ItemName
	if runes := []rune(name); len(runes) > nameWidth {
		name = string(runes[:nameWidth])
	}
	return fmt.Sprintf("%-*s%*d%*.2f %s", nameWidth, name, qtyWidth, line.Quantity, totalWidth, line.Subtotal(), currency)
}
