package model

import "time"

// DeliveryFailure records one pairing whose send failed. Failures are kept in
// pairing order.
type DeliveryFailure struct {
	ChannelID    string
	ChannelTitle string
	Reason       string
}

// DistributionReport summarises one dispatch pass. Succeeded plus
// len(Failures) always equals Total.
type DistributionReport struct {
	SessionID  string
	Total      int
	Succeeded  int
	Failures   []DeliveryFailure
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *DistributionReport) AllDelivered() bool {
	return len(r.Failures) == 0 && r.Succeeded == r.Total
}
