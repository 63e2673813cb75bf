package models

// SequenceModel is the persistence model for the per-namespace number
// counters. Allocation increments Value in a single conditional statement;
// there is no version column because the row is never read-modify-written.
type SequenceModel struct {
	Namespace string `gorm:"size:100;primary_key"`
	Value     int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "sequences"
}
