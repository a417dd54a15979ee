package domain

import "time"

// CurationCriteria controls the approval decision. Zero values are never
// used directly; DefaultCriteria supplies the built-in set.
type CurationCriteria struct {
	MinQuality           int
	MinAlignment         int
	AutoApproveThreshold int
	RequireGuardianFit   bool
}

// DefaultCriteria is the built-in approval bar.
func DefaultCriteria() CurationCriteria {
	return CurationCriteria{
		MinQuality:           50,
		MinAlignment:         40,
		AutoApproveThreshold: 65,
		RequireGuardianFit:   false,
	}
}

// CurationResult is the derived scoring outcome for one asset. The core
// never stores it; persistence is the caller's concern.
type CurationResult struct {
	AssetID     string
	Quality     int
	Alignment   int
	Originality int
	GuardianFit int
	Overall     int
	Feedback    []string
	Approved    bool
	CuratorID   string
	EvaluatedAt time.Time
}
