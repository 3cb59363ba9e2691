package entities

type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:200;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:24;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`

	Timestamp
}
