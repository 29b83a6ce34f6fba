package domain

import "database/sql/driver"

// Enum types are stored as plain text.

func (s Stage) Value() (driver.Value, error)            { return string(s), nil }
func (r Rating) Value() (driver.Value, error)           { return string(r), nil }
func (s SessionStatus) Value() (driver.Value, error)    { return string(s), nil }
func (s SessionCardState) Value() (driver.Value, error) { return string(s), nil }
func (a AlgorithmType) Value() (driver.Value, error)    { return string(a), nil }
func (s TopicStatus) Value() (driver.Value, error)      { return string(s), nil }
