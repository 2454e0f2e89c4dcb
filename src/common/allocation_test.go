package common

import (
	"etix/src/db"
	"log"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func ticketTypeRows() *sqlmock.Rows {
	return sqlmock.
		NewRows([]string{"id", "event_id", "name", "price", "quantity"}).
		AddRow(3, 10, "General", 25.0, 5)
}

func eventRows() *sqlmock.Rows {
	return sqlmock.
		NewRows([]string{"id", "name", "organizer_id"}).
		AddRow(10, "Summer Jam", 1)
}

func TestCreateTicketTypeBuildsPool(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(eventRows())
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ticket_types"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "ticket_types"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(3))
	mock.ExpectCommit()

	id, err := CreateTicketType(10, "General", 25, 3)

	assert.Nil(t, err)
	assert.Equal(t, uint(3), id)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPurchaseTicketClaimsFreeTicket(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_types"`).
		WillReturnRows(ticketTypeRows())
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(eventRows())
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"(.+)FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "ticket_type_id", "code", "purchased", "waitlisted"}).
			AddRow(7, 3, "TCK-AAAA", false, false))
	mock.ExpectExec(`UPDATE "tickets" SET "purchased"=(.+) WHERE \(id = (.+) AND purchased = `).
		WithArgs(true, sqlmock.AnyArg(), 7, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "purchased_tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectCommit()

	result, err := PurchaseTicket(3, 9)

	assert.Nil(t, err)
	assert.Equal(t, uint(7), result.TicketID)
	assert.Equal(t, "TCK-AAAA", result.TicketCode)
	assert.Equal(t, int64(4), result.Remaining)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPurchaseTicketEmptyPool(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_types"`).
		WillReturnRows(ticketTypeRows())
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(eventRows())
	mock.ExpectQuery(`SELECT (.+) FROM "tickets"(.+)FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	result, err := PurchaseTicket(3, 9)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNoTicketAvailable)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestPurchaseTicketUnknownType(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_types"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	result, err := PurchaseTicket(999, 9)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestJoinWaitlistRankIsPostInsertCount(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_types"`).
		WillReturnRows(ticketTypeRows())
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(eventRows())
	mock.ExpectQuery(`INSERT INTO "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO "waitlisted_tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tickets"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	result, err := JoinWaitlist(3, 9, nil)

	assert.Nil(t, err)
	assert.Equal(t, uint(4), result.WaitlistID)
	assert.Equal(t, uint(11), result.TicketID)
	assert.Equal(t, int64(3), result.Rank)
	assert.Nil(t, result.FinalPrice)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestDeleteEventCascades(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(eventRows())
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tickets" JOIN ticket_types`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE "waitlisted_tickets" SET "deleted_at"=(.+) WHERE ticket_id IN \(SELECT(.+)\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "check_ins" SET "deleted_at"=(.+) WHERE ticket_id IN \(SELECT(.+)\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`UPDATE "tickets" SET "deleted_at"=(.+) WHERE ticket_type_id IN \(SELECT(.+)\)`).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec(`UPDATE "ticket_types" SET "deleted_at"=(.+) WHERE event_id = `).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`UPDATE "promo_codes" SET "deleted_at"=(.+) WHERE event_id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "events" SET "deleted_at"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := DeleteEvent(10)

	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestDeleteEventRefusedWhenSold(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(eventRows())
	mock.ExpectQuery(`SELECT count\(\*\) FROM "tickets" JOIN ticket_types`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	err := DeleteEvent(10)

	assert.ErrorIs(t, err, ErrHasSoldTickets)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestUserWaitlistEntries(t *testing.T) {
	gormDB, mock := newMockDB()
	db.NewDB(gormDB)

	at := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM "waitlisted_tickets" JOIN tickets ON tickets.id = waitlisted_tickets.ticket_id AND tickets.deleted_at IS NULL JOIN ticket_types ON (.+) AND ticket_types.deleted_at IS NULL JOIN events ON (.+) AND events.deleted_at IS NULL`).
		WillReturnRows(sqlmock.
			NewRows([]string{
				"waitlist_id", "waitlist_at", "event_id", "event_name",
				"ticket_type_id", "ticket_type_name", "price", "purchased",
				"ticket_id", "waitlist_rank",
			}).
			AddRow(4, at, 10, "Summer Jam", 3, "General", 25.0, false, 11, 2))

	entries, err := UserWaitlistEntries(9)

	assert.Nil(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, uint(4), entries[0].WaitlistID)
	assert.Equal(t, at, entries[0].WaitlistAt)
	assert.Equal(t, "Summer Jam", entries[0].EventName)
	assert.Equal(t, "General", entries[0].TicketTypeName)
	assert.Equal(t, uint(2), entries[0].WaitlistRank)
	assert.False(t, entries[0].Purchased)
	assert.Nil(t, mock.ExpectationsWereMet())
}
