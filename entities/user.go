package entities

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Email     string `gorm:"size:254;uniqueIndex" json:"email"`
	Username  string `gorm:"size:32;uniqueIndex" json:"username"`
	FirstName string `gorm:"size:32" json:"first_name"`
	LastName  string `gorm:"size:32" json:"last_name"`
	Password  string `gorm:"size:128" json:"-"`
	IsAdmin   bool   `gorm:"default:false" json:"is_admin"`

	Recipes []*Recipe `gorm:"foreignKey:AuthorID" json:"-"`
	Timestamp
}
