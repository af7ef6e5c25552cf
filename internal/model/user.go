package model

// User 用户模型
type User struct {
	BaseModel
	Username string `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email    string `gorm:"size:120;not null;uniqueIndex" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // 哈希值, 不返回到前端
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
