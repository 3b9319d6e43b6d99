package model

// Referrer is a distribution partner identified by a short REF- code
// (the map key in referrals.json).
type Referrer struct {
	Name          string `json:"name"`
	CommissionPct int    `json:"commissionPct"`
	CreatedAt     int64  `json:"createdAt"`
	TotalOrders   int    `json:"totalOrders"`
	TotalRevenue  int64  `json:"totalRevenue"`
	Note          string `json:"note"`
	Disabled      bool   `json:"disabled"`
}

// ReferralHit records one redemption attributed to a referrer.
type ReferralHit struct {
	ID             string `json:"id"`
	RefCode        string `json:"refCode"`
	ActivationCode string `json:"activationCode"`
	Time           int64  `json:"time"`
	IP             string `json:"ip"`
}
