package common

import (
	"etix/src/db"
	"etix/src/types"
)

// EventReport aggregates sales, waitlist and attendance counts per ticket
// type of the event. Revenue sums the final price actually paid, so
// promo-discounted purchases count at their discounted price.
func EventReport(eventID uint) ([]types.TicketTypeReport, error) {
	var rows []types.TicketTypeReport
	db := db.GetDb()
	err := db.Raw(`
		SELECT
			tt.id AS ticket_type_id,
			tt.name AS name,
			tt.quantity AS quantity,
			COUNT(DISTINCT pt.id) AS sold,
			COUNT(DISTINCT wt.id) AS waitlisted,
			COUNT(DISTINCT ci.id) AS checked_in,
			COALESCE(SUM(pt.final_price), 0) AS revenue
		FROM ticket_types tt
		LEFT JOIN tickets t ON t.ticket_type_id = tt.id AND t.deleted_at IS NULL
		LEFT JOIN purchased_tickets pt ON pt.ticket_id = t.id AND pt.deleted_at IS NULL
		LEFT JOIN waitlisted_tickets wt ON wt.ticket_id = t.id AND wt.deleted_at IS NULL
		LEFT JOIN check_ins ci ON ci.ticket_id = t.id AND ci.deleted_at IS NULL
		WHERE tt.event_id = ? AND tt.deleted_at IS NULL
		GROUP BY tt.id, tt.name, tt.quantity
		ORDER BY tt.id`, eventID).
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
