package constants

const (
	MsgOperatorNotFound   = "Operator not found"
	MsgInvalidOperatorID  = "Invalid operator id"
	MsgInvalidBody        = "Invalid request body"
	MsgInvalidCredentials = "Invalid username or password"
	MsgUnauthorized       = "Authentication required"
	MsgInternal           = "Internal server error"
	MsgTooManyRequests    = "Too many requests"
	MsgExportFailed       = "Failed to generate export"
)
