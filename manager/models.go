package manager

import "time"

// Record is the domain representation of one account manager's quarter.
// It mirrors the managers table and carries no JSON annotations so every
// presentation layer can shape its own payload.
type Record struct {
	ID             int64
	Name           string
	RenewalsMonth1 int
	RenewalsMonth2 int
	RenewalsMonth3 int
	// TotalRenewals is always the sum of the three monthly values.
	TotalRenewals  int
	LatePercentage float64
	ManagedCount   int
	QualityScore   int
	// Classification is the label assigned by the active Classifier.
	Classification string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SumRenewals returns the quarter total from the monthly values.
func (r Record) SumRenewals() int {
	return r.RenewalsMonth1 + r.RenewalsMonth2 + r.RenewalsMonth3
}

// NewRecord contains the caller-supplied fields of a manager to be created.
// Derived fields are computed by the Service.
type NewRecord struct {
	Name           string
	RenewalsMonth1 int
	RenewalsMonth2 int
	RenewalsMonth3 int
	LatePercentage float64
	ManagedCount   int
	QualityScore   int
}

func (n NewRecord) record() Record {
	return Record{
		Name:           n.Name,
		RenewalsMonth1: n.RenewalsMonth1,
		RenewalsMonth2: n.RenewalsMonth2,
		RenewalsMonth3: n.RenewalsMonth3,
		LatePercentage: n.LatePercentage,
		ManagedCount:   n.ManagedCount,
		QualityScore:   n.QualityScore,
	}
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Name           *string
	RenewalsMonth1 *int
	RenewalsMonth2 *int
	RenewalsMonth3 *int
	LatePercentage *float64
	ManagedCount   *int
	QualityScore   *int
}

// Apply returns r with every non-nil patch field copied over.
func (p Patch) Apply(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.RenewalsMonth1 != nil {
		r.RenewalsMonth1 = *p.RenewalsMonth1
	}
	if p.RenewalsMonth2 != nil {
		r.RenewalsMonth2 = *p.RenewalsMonth2
	}
	if p.RenewalsMonth3 != nil {
		r.RenewalsMonth3 = *p.RenewalsMonth3
	}
	if p.LatePercentage != nil {
		r.LatePercentage = *p.LatePercentage
	}
	if p.ManagedCount != nil {
		r.ManagedCount = *p.ManagedCount
	}
	if p.QualityScore != nil {
		r.QualityScore = *p.QualityScore
	}
	return r
}

// ListFilter narrows and orders List results.
type ListFilter struct {
	// Query matches a case-insensitive substring of the name.
	Query     string
	SortKey   string
	SortOrder string
}
