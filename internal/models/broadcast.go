package models

// DeliveryFailure records one recipient a broadcast could not reach.
type DeliveryFailure struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
}

// DeliveryReport summarizes a broadcast run. A failed recipient never
// aborts the rest of the fan-out.
type DeliveryReport struct {
	ID        string            `json:"id"`
	Total     int               `json:"total"`
	Delivered int               `json:"delivered"`
	Failures  []DeliveryFailure `json:"failures,omitempty"`
}

// Failed is the number of recipients that could not be reached.
func (r DeliveryReport) Failed() int {
	return len(r.Failures)
}
