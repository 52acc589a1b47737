package user_status_enum

const (
	NORMAL  = int8(0)
	DISABLE = int8(1)
)
