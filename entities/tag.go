package entities

type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:200;uniqueIndex" json:"name"`
	Color string `gorm:"size:7;uniqueIndex" json:"color"` // hex, #RRGGBB or #RGB
	Slug  string `gorm:"size:200;uniqueIndex" json:"slug"`

	Timestamp
}
