package audit

import (
	"log"

	"gorm.io/gorm"

	"healthmate-server/internal/models"
)

// Entry describes a single auditable action.
type Entry struct {
	ActorID    string
	ActorEmail string
	Action     string
	Details    string
	Level      models.AuditLevel
	IP         string
}

// Record persists an audit log row. Audit failures are logged and swallowed:
// they must never fail the action being audited.
func Record(db *gorm.DB, entry Entry) {
	if entry.Level == "" {
		entry.Level = models.AuditInfo
	}
	row := models.AuditLog{
		ActorID:    entry.ActorID,
		ActorEmail: entry.ActorEmail,
		Action:     entry.Action,
		Details:    entry.Details,
		Level:      entry.Level,
		IP:         entry.IP,
	}
	if err := db.Create(&row).Error; err != nil {
		log.Printf("failed to write audit log for action %q: %v", entry.Action, err)
	}
}
