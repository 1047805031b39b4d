package model

type StatusHistory struct {
	ID         uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	IssueIDRef string `gorm:"column:issue_id_ref;type:text;not null;index:idx_history_issue_created,priority:1"`
	Status     string `gorm:"column:status;type:text;not null"`
	Notes      string `gorm:"column:notes;type:text;not null"`
	UpdatedBy  string `gorm:"column:updated_by;type:text;not null;default:System"`
	CreatedAt  string `gorm:"column:created_at;type:text;not null;index:idx_history_issue_created,priority:2"`

	Issue *Issue `gorm:"foreignKey:IssueIDRef;references:IssueID;constraint:OnDelete:CASCADE"`
}

func (StatusHistory) TableName() string {
	return "issue_status_history"
}
