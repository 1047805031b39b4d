package model

type Issue struct {
	ID                 uint64   `gorm:"column:id;primaryKey;autoIncrement"`
	IssueID            string   `gorm:"column:issue_id;type:text;not null;uniqueIndex"`
	FullName           string   `gorm:"column:full_name;type:text;not null"`
	Email              string   `gorm:"column:email;type:text;not null;index"`
	Mobile             string   `gorm:"column:mobile;type:text;not null"`
	Age                *int     `gorm:"column:age"`
	Gender             string   `gorm:"column:gender;type:text"`
	Pincode            string   `gorm:"column:pincode;type:text"`
	City               string   `gorm:"column:city;type:text"`
	District           string   `gorm:"column:district;type:text"`
	State              string   `gorm:"column:state;type:text"`
	Country            string   `gorm:"column:country;type:text"`
	ResidentialAddress string   `gorm:"column:residential_address;type:text"`
	WorkAddress        string   `gorm:"column:work_address;type:text"`
	IssueCategory      string   `gorm:"column:issue_category;type:text;not null;index"`
	CustomIssueType    string   `gorm:"column:custom_issue_type;type:text"`
	IssueDescription   string   `gorm:"column:issue_description;type:text;not null"`
	Latitude           *float64 `gorm:"column:latitude"`
	Longitude          *float64 `gorm:"column:longitude"`
	LocationAddress    string   `gorm:"column:location_address;type:text"`
	Priority           string   `gorm:"column:priority;type:text;not null"`
	ImageFilename      *string  `gorm:"column:image_filename;type:text"`
	Status             string   `gorm:"column:status;type:text;not null;index"`
	SubmittedAt        string   `gorm:"column:submitted_at;type:text;not null;index"`
	UpdatedAt          string   `gorm:"column:updated_at;type:text;not null"`
}

func (Issue) TableName() string {
	return "issues"
}
