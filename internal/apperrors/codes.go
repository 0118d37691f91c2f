package apperrors

import "net/http"

const (
	// Auth
	CodeUnauthorized    ErrorCode = "unauthorized"
	CodeInvalidToken    ErrorCode = "invalid_token"
	CodeForbidden       ErrorCode = "forbidden"
	CodeAdminRequired   ErrorCode = "admin_required"
	CodeUserInactive    ErrorCode = "user_inactive"
	CodeInvalidCode     ErrorCode = "invalid_code"
	CodeTooManyRequests ErrorCode = "too_many_requests"

	// Validation
	CodeValidation        ErrorCode = "validation_failed"
	CodeInvalidStatus     ErrorCode = "invalid_status"
	CodeInvalidPhone      ErrorCode = "invalid_phone"
	CodeInvalidTransition ErrorCode = "invalid_transition"

	// Resources
	CodeNotFound     ErrorCode = "not_found"
	CodeUserNotFound ErrorCode = "user_not_found"
	CodeAdNotFound   ErrorCode = "ad_not_found"
	CodeChatNotFound ErrorCode = "chat_not_found"
	CodeDealNotFound ErrorCode = "deal_not_found"

	// Business rules
	CodeNotParticipant   ErrorCode = "not_participant"
	CodeAdLimitReached   ErrorCode = "ad_limit_reached"
	CodeOwnAd            ErrorCode = "own_ad"
	CodeDealNotCompleted ErrorCode = "deal_not_completed"
	CodeAlreadyReviewed  ErrorCode = "already_reviewed"
	CodeCannotBanAdmin   ErrorCode = "cannot_ban_admin"
	CodeNotSubscribed    ErrorCode = "not_subscribed"
	CodeNotificationsOff ErrorCode = "notifications_disabled"

	// System
	CodeInternal        ErrorCode = "internal_error"
	CodeExternalService ErrorCode = "external_service_error"
)

var (
	ErrUnauthorized    = New(CodeUnauthorized, "Not authenticated", http.StatusUnauthorized)
	ErrInvalidToken    = New(CodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
	ErrForbidden       = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrAdminRequired   = New(CodeAdminRequired, "Admin access required", http.StatusForbidden)
	ErrUserInactive    = New(CodeUserInactive, "User is banned or inactive", http.StatusForbidden)
	ErrInvalidCode     = New(CodeInvalidCode, "Invalid or expired code", http.StatusBadRequest)
	ErrTooManyRequests = New(CodeTooManyRequests, "Too many code requests, try again later", http.StatusTooManyRequests)

	ErrValidation        = New(CodeValidation, "Request validation failed", http.StatusBadRequest)
	ErrInvalidStatus     = New(CodeInvalidStatus, "Unknown deal status", http.StatusBadRequest)
	ErrInvalidPhone      = New(CodeInvalidPhone, "Invalid phone number", http.StatusBadRequest)
	ErrInvalidTransition = New(CodeInvalidTransition, "Status transition is not allowed", http.StatusBadRequest)

	ErrNotFound     = New(CodeNotFound, "Not found", http.StatusNotFound)
	ErrUserNotFound = New(CodeUserNotFound, "User not found", http.StatusNotFound)
	ErrAdNotFound   = New(CodeAdNotFound, "Ad not found", http.StatusNotFound)
	ErrChatNotFound = New(CodeChatNotFound, "Chat not found", http.StatusNotFound)
	ErrDealNotFound = New(CodeDealNotFound, "Deal not found", http.StatusNotFound)

	ErrNotParticipant   = New(CodeNotParticipant, "You are not a participant", http.StatusForbidden)
	ErrAdLimitReached   = New(CodeAdLimitReached, "Ad limit reached", http.StatusBadRequest)
	ErrOwnAd            = New(CodeOwnAd, "Cannot respond to your own ad", http.StatusBadRequest)
	ErrDealNotCompleted = New(CodeDealNotCompleted, "Reviews are allowed only for completed deals", http.StatusBadRequest)
	ErrAlreadyReviewed  = New(CodeAlreadyReviewed, "You have already reviewed this deal", http.StatusBadRequest)
	ErrCannotBanAdmin   = New(CodeCannotBanAdmin, "Cannot ban an administrator", http.StatusBadRequest)
	ErrNotSubscribed    = New(CodeNotSubscribed, "Telegram notifications are not enabled", http.StatusBadRequest)
	ErrNotificationsOff = New(CodeNotificationsOff, "Telegram bot is not configured", http.StatusServiceUnavailable)

	ErrInternal        = New(CodeInternal, "Internal server error", http.StatusInternalServerError)
	ErrExternalService = New(CodeExternalService, "External service failed", http.StatusBadGateway)
)
