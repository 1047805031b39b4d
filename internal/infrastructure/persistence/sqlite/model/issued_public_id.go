package model

// IssuedPublicID records every public id ever handed out. Rows are never deleted.
type IssuedPublicID struct {
	PublicID string `gorm:"column:public_id;type:text;primaryKey"`
	IssuedAt string `gorm:"column:issued_at;type:text;not null"`
}

func (IssuedPublicID) TableName() string {
	return "issued_public_ids"
}

// All lists the models migrated by init-db, parents first.
func All() []any {
	return []any{
		&IssuedPublicID{},
		&Issue{},
		&StatusHistory{},
	}
}
