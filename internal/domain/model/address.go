package model

import "time"

// 配送先住所
type Address struct {
	ID         int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64  `gorm:"not null;index" json:"user_id"`
	PostalCode string `gorm:"type:varchar(20);not null" json:"postal_code"` //郵便番号
	Prefecture string `gorm:"type:varchar(100);not null" json:"prefecture"` //都道府県
	City       string `gorm:"type:varchar(255);not null" json:"city"`       //市区町村
	Line1      string `gorm:"type:varchar(255);not null" json:"line1"`      //番地など
	Line2      string `gorm:"type:varchar(255)" json:"line2"`               //建物名など
	Name       string `gorm:"type:varchar(255);not null" json:"name"`       //宛名
	Phone      string `gorm:"type:varchar(30)" json:"phone"`

	//このユーザーのデフォルト住所か（1ユーザー1件）
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
