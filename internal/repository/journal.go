package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/joe-hadchity/lescale-pos/internal/entity"
)

// Journal records finalized orders in the terminal's local MySQL database.
// It is an audit trail only: the submission service remains the source of
// truth and assigns order numbers.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// EnsureSchema creates the journal tables if they do not exist.
func (j *Journal) EnsureSchema(ctx context.Context, retries int) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS finalized_orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_number VARCHAR(50) NOT NULL,
			order_type VARCHAR(20) NOT NULL,
			table_number VARCHAR(10) NOT NULL,
			discount_percent DOUBLE NOT NULL,
			payment_method VARCHAR(20) NOT NULL,
			total DOUBLE NOT NULL,
			note TEXT,
			finalized_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS finalized_lines (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			item_name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL,
			unit_price DOUBLE NOT NULL,
			line_total DOUBLE NOT NULL,
			removals TEXT,
			add_ons TEXT,
			on_the_house BOOLEAN NOT NULL,
			note TEXT,
			FOREIGN KEY (order_id) REFERENCES finalized_orders(id) ON DELETE CASCADE
		);`,
	}
	for _, query := range queries {
		_, err := j.db.ExecContext(ctx, query)
		if err != nil {
			// Retry creating the table
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = j.db.ExecContext(ctx, query)
				if err == nil {
					break
				}
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Record inserts a finalized order and its lines in one transaction.
func (j *Journal) Record(ctx context.Context, order *entity.Order, finalizedAt time.Time) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	orderQuery := `INSERT INTO finalized_orders (order_number, order_type, table_number, discount_percent, payment_method, total, note, finalized_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery,
		order.OrderNumber, order.Type.String(), order.TableNumber,
		order.DiscountPercent, order.PaymentMethod.String(), order.Total(),
		order.Note, finalizedAt)
	if err != nil {
		tx.Rollback()
		return err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}

	if len(order.Lines) > 0 {
		// Insert lines with batch
		lineQuery := `INSERT INTO finalized_lines (order_id, item_name, quantity, unit_price, line_total, removals, add_ons, on_the_house, note) VALUES `

		var values []interface{}
		for i := range order.Lines {
			line := &order.Lines[i]
			removals, _ := json.Marshal(line.Removals)
			addOns, _ := json.Marshal(line.AddOns)
			lineQuery += "(?, ?, ?, ?, ?, ?, ?, ?, ?),"
			values = append(values, orderID, line.ItemName, line.Quantity,
				line.UnitPrice(), line.Subtotal(), string(removals), string(addOns),
				line.OnTheHouse, line.Note)
		}

		// Remove the trailing comma
		lineQuery = lineQuery[:len(lineQuery)-1]

		_, err = tx.ExecContext(ctx, lineQuery, values...)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
