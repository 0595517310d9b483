package models

import "time"

type Status struct {
	Status    string
	Version   string
	Timestamp time.Time
	Client    ClientStatus
}

type ClientStatus struct {
	Ip          *string
	UserAgent   *string
	CountryCode *string
	RegionCode  *string
}

// ClientLocation is the location of the caller, as reported by a CDN in front of the
// server. Empty fields are unknown.
type ClientLocation struct {
	CountryCode string
	RegionCode  string
}
