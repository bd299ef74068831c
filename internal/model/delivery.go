package model

import "time"

// DeliveryRecord is emitted exactly once per delivered bundle id
// (duplicate suppression enforces this in internal/contactplan).
type DeliveryRecord struct {
	BundleID    int
	CreatedAt   time.Time
	DeliveredAt time.Time
	SizeBytes   int
}

func (d DeliveryRecord) LatencySeconds() float64 {
	return d.DeliveredAt.Sub(d.CreatedAt).Seconds()
}
