package constants

// Context keys
const (
	ContextKeyUserID     = "user_id"
	ContextKeyUser       = "user"
	ContextKeyRequestID  = "request_id"
	ContextKeyResourceID = "resource_id"
)

// Headers
const (
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "
)

// Credentials
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt input limit
)

// Task suggestions
const (
	MaxAIGeneratedTasks = 10
)

// Relay event names
const (
	EventOpenProject  = "open project"
	EventNewTask      = "new task"
	EventDeleteTask   = "delete task"
	EventDeletedTask  = "deleted task"
	EventUpdateTask   = "update task"
	EventUpdatedTask  = "updated task"
	EventChangeStatus = "change status"
	EventNewStatus    = "new status"
)
