package history

// Entry is one answered question.
type Entry struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Question string `gorm:"not null;type:text" json:"question"`
	Answer   string `gorm:"not null;type:text" json:"answer"`
}

// TableName returns the table name for the Entry entity.
func (Entry) TableName() string {
	return "history"
}
