package constants

// Roles carried in the identity token.
const (
	ROLE_STUDENT    = "student"
	ROLE_SHOPKEEPER = "shopkeeper"
)

// Order fulfillment statuses.
const (
	ORDER_PENDING   = "pending"
	ORDER_ACCEPTED  = "accepted"
	ORDER_REJECTED  = "rejected"
	ORDER_PREPARING = "preparing"
	ORDER_READY     = "ready"
	ORDER_COMPLETED = "completed"
	ORDER_CANCELLED = "cancelled"
)

// Payment statuses.
const (
	PAYMENT_UNPAID = "unpaid"
	PAYMENT_PAID   = "paid"
)

// Notification type tags.
const (
	NOTIFICATION_CHAT    = "chat"
	NOTIFICATION_PAYMENT = "payment"
	NOTIFICATION_ORDER   = "order"
)

// Menu categories.
var MENU_CATEGORIES = []string{"breakfast", "lunch", "snacks", "drinks"}

// Error keys returned alongside error responses so clients can branch on
// the failure class instead of parsing messages.
const (
	KEY_VALIDATION_ERROR    = "VALIDATION_ERROR"
	KEY_CONFLICT_ERROR      = "CONFLICT_ERROR"
	KEY_AUTHORIZATION_ERROR = "AUTHORIZATION_ERROR"
	KEY_TRANSIENT_ERROR     = "TRANSIENT_ERROR"
)

// Common messages.
const (
	DATA_INPUT_IS_NOT_NUMBER = "Input is not a number"
	UNAUTHORIZED             = "Please sign in"
	FORBIDDEN                = "You do not have permission to do this"
)

// Chat message length cap.
const MAX_MESSAGE_LENGTH = 500
