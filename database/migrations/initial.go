package migrations

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/mapstack/app/models"
	"github.com/shashiranjanraj/mapstack/pkg/migration"
)

func init() {
	migration.Register("20260301000000_create_sessions_table", &CreateSessionsTable{})
	migration.Register("20260301000001_create_archived_tickets_table", &CreateArchivedTicketsTable{})
}

// -------- 0001: sessions --------

type CreateSessionsTable struct{}

func (m *CreateSessionsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.SessionRecord{})
}

func (m *CreateSessionsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("session_records")
}

// -------- 0002: archived tickets --------

type CreateArchivedTicketsTable struct{}

func (m *CreateArchivedTicketsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.ArchivedTicket{})
}

func (m *CreateArchivedTicketsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("archived_tickets")
}
