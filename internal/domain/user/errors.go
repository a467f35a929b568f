package user

import "github.com/cmlabs-hris/timekeeping-backend-go/internal/pkg/apperror"

var (
	ErrUserNotFound           = apperror.NewNotFound("USER_NOT_FOUND", "user not found")
	ErrAdminPrivilegeRequired = apperror.NewForbidden("ADMIN_PRIVILEGE_REQUIRED", "administrator privilege is required")
)
