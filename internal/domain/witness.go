package domain

import "time"

// Witness is a dependent row of an Application. WitnessOrder is the 1-based
// position on the submitted form and drives print order on the certificate;
// skipped form slots leave gaps rather than renumbering.
type Witness struct {
	ID            int64
	ApplicationID int64
	Name          string
	FatherName    string
	BirthDate     *string
	BirthPlace    string
	Address       string
	WitnessOrder  int
	CreatedAt     time.Time
}
