package core

// NeedsRefetch reports whether the cached window fails to cover the
// required one. There is no partial-refetch support: any gap means the
// whole required window is fetched again.
func NeedsRefetch(cached, required DateRange) bool {
	if !cached.Valid() {
		return true
	}
	return cached.From.Time.After(required.From.Time) ||
		cached.To.Time.Before(required.To.Time)
}
