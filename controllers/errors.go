package controllers

// ErrNoPermission is returned when a caller acts on another owner's record.
var ErrNoPermission = &CustomError{"You do not have permission"}

type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}
