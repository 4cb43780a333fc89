package apperror

import "net/http"

var (
	catalog   = map[int]*Error{}
	byMessage = map[string]*Error{}
)

// 1xxx: ошибки входных данных.
var (
	ErrValidation   = define(1001, "VALIDATION_FAILED", http.StatusBadRequest, "validation failed")
	ErrInvalidID    = define(1002, "INVALID_ID", http.StatusBadRequest, "invalid id format")
	ErrInvalidBody  = define(1003, "INVALID_BODY", http.StatusBadRequest, "invalid request body")
	ErrInvalidQuery = define(1004, "INVALID_QUERY", http.StatusBadRequest, "invalid query parameter")
)

// 2xxx: нарушения бизнес-правил.
var (
	ErrDevelopmentNotApproved = define(2001, "DEVELOPMENT_NOT_APPROVED", http.StatusBadRequest,
		"development is not approved")
	ErrProductionOrderExists = define(2002, "PRODUCTION_ORDER_EXISTS", http.StatusConflict,
		"an active production order already exists for this development")
	ErrDeliverySheetExists = define(2003, "DELIVERY_SHEET_EXISTS", http.StatusConflict,
		"an active delivery sheet already exists for this production sheet")
	ErrProductionReceiptExists = define(2004, "PRODUCTION_RECEIPT_EXISTS", http.StatusConflict,
		"an active production receipt already exists for this production order")
	ErrProductionOrderNotFinalized = define(2005, "PRODUCTION_ORDER_NOT_FINALIZED", http.StatusBadRequest,
		"production order is not finalized")
	ErrStageFinished = define(2006, "STAGE_ALREADY_FINISHED", http.StatusBadRequest,
		"production sheet is already finished")
	ErrInvalidTransition = define(2007, "INVALID_TRANSITION", http.StatusBadRequest,
		"invalid status transition")
	ErrPaidExceedsTotal = define(2008, "PAID_EXCEEDS_TOTAL", http.StatusBadRequest,
		"paid amount cannot exceed total amount")
	ErrTaxIDExists = define(2009, "TAX_ID_EXISTS", http.StatusConflict,
		"an active client with this tax id already exists")
	ErrEmailExists = define(2010, "EMAIL_EXISTS", http.StatusConflict,
		"a user with this email already exists")
	ErrReferenceConflict = define(2011, "REFERENCE_CONFLICT", http.StatusConflict,
		"could not allocate a unique reference code")
	ErrParentInactive = define(2012, "PARENT_INACTIVE", http.StatusBadRequest,
		"referenced record is inactive")
	ErrSelfModification = define(2013, "SELF_MODIFICATION", http.StatusBadRequest,
		"administrators cannot deactivate or demote themselves")
)

// 3xxx: ошибки аутентификации.
var (
	ErrTokenMissing       = define(3001, "TOKEN_MISSING", http.StatusUnauthorized, "authentication token is missing")
	ErrTokenInvalid       = define(3002, "TOKEN_INVALID", http.StatusUnauthorized, "authentication token is invalid")
	ErrTokenExpired       = define(3003, "TOKEN_EXPIRED", http.StatusUnauthorized, "authentication token has expired")
	ErrInvalidCredentials = define(3004, "INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrAccountLocked      = define(3005, "ACCOUNT_LOCKED", http.StatusLocked, "account is temporarily locked")
	ErrAccountDisabled    = define(3006, "ACCOUNT_DISABLED", http.StatusUnauthorized, "account is disabled")
	ErrUserNotFound       = define(3007, "USER_NOT_FOUND", http.StatusUnauthorized, "user no longer exists")
)

// 4xxx: ошибки авторизации.
var (
	ErrAccessDenied     = define(4001, "ACCESS_DENIED", http.StatusForbidden, "access denied")
	ErrFieldNotAllowed  = define(4002, "FIELD_NOT_ALLOWED", http.StatusForbidden, "changing these fields is not allowed")
	ErrStatusNotAllowed = define(4003, "STATUS_NOT_ALLOWED", http.StatusForbidden,
		"production order status does not allow this change")
)

// 5xxx: запрошенная запись не найдена.
var (
	ErrNotFound                  = define(5001, "NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrClientNotFound            = define(5002, "CLIENT_NOT_FOUND", http.StatusNotFound, "client not found")
	ErrDevelopmentNotFound       = define(5003, "DEVELOPMENT_NOT_FOUND", http.StatusNotFound, "development not found")
	ErrProductionOrderNotFound   = define(5004, "PRODUCTION_ORDER_NOT_FOUND", http.StatusNotFound, "production order not found")
	ErrProductionSheetNotFound   = define(5005, "PRODUCTION_SHEET_NOT_FOUND", http.StatusNotFound, "production sheet not found")
	ErrDeliverySheetNotFound     = define(5006, "DELIVERY_SHEET_NOT_FOUND", http.StatusNotFound, "delivery sheet not found")
	ErrProductionReceiptNotFound = define(5007, "PRODUCTION_RECEIPT_NOT_FOUND", http.StatusNotFound, "production receipt not found")
	ErrUserRecordNotFound        = define(5008, "USER_RECORD_NOT_FOUND", http.StatusNotFound, "user not found")
	ErrRouteNotFound             = define(5009, "ROUTE_NOT_FOUND", http.StatusNotFound, "route not found")
)

// 6xxx: системные ошибки.
var (
	ErrInternal         = define(6001, "INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrDatabase         = define(6002, "DATABASE_ERROR", http.StatusInternalServerError, "database error")
	ErrRateLimited      = define(6003, "RATE_LIMITED", http.StatusTooManyRequests, "too many requests, try again later")
	ErrMethodNotAllowed = define(6004, "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed, "method not allowed")
)
