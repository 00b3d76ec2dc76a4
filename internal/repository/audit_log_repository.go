package repository

import (
	"context"

	"app/internal/domain/model"
)

// セキュリティ監査ログの保存の約束。
type AuditLogRepository interface {
	//監査ログを1件保存
	Create(ctx context.Context, log model.AuditLog) error
}
