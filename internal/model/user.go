package model

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Email          string `gorm:"size:128;not null;uniqueIndex" json:"email"`
	HashedPassword string `gorm:"size:255;not null" json:"-"`
	Chats          []Chat `gorm:"foreignKey:UserID" json:"chats"`
}
