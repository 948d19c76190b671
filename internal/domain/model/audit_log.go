package model

import "time"

// 管理者が行った操作の種類。
type AuditAction string

const (
	//リソースを作成した操作。
	AuditActionCreate AuditAction = "CREATE"
	//リソースを更新した操作。
	AuditActionUpdate AuditAction = "UPDATE"
	//リソースを削除した操作。
	AuditActionDelete AuditAction = "DELETE"
	//在庫を更新した操作。
	AuditActionUpdateStock AuditAction = "UPDATE_STOCK"
)

// 何に対する操作か
type AuditResourceType string

const (
	//商品に対する操作。
	AuditResourceProduct AuditResourceType = "product"

	//カテゴリに対する操作。
	AuditResourceCategory AuditResourceType = "category"

	//ブランドに対する操作。
	AuditResourceBrand AuditResourceType = "brand"

	//ユーザーに対する操作。
	AuditResourceUser AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザー（主に管理者）のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	//操作の種類（CREATE / UPDATE / DELETE / UPDATE_STOCK）。
	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類（product / category / brand / user）。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID。
	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//変更前の状態をJSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//変更後の状態をJSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
