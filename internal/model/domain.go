package model

// Domain 域名模型
type Domain struct {
	BaseModel
	UserID     int64  `gorm:"column:user_id;not null;index" json:"user_id"`
	DomainName string `gorm:"size:255;not null;uniqueIndex" json:"domain_name"`
	Registered bool   `gorm:"not null;default:false" json:"registered"`
	SSLEnabled bool   `gorm:"column:ssl_enabled;not null;default:false" json:"ssl_enabled"`
}

// TableName 指定表名
func (Domain) TableName() string {
	return "domains"
}
