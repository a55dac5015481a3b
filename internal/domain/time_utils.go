package domain

// DatetimeLayout is the timestamp layout used in API responses
const DatetimeLayout = "2006-01-02T15:04:05Z"
