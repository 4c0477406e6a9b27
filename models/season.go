package models

import "time"

// Season is a tenant-scoped scoring window. At most one season per tenant may
// be open (EndDate unset) at a time; a closed season is read-only.
type Season struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	TenantID  string     `json:"tenant_id" gorm:"uniqueIndex:idx_seasons_tenant_name;not null"`
	Name      string     `json:"name" gorm:"uniqueIndex:idx_seasons_tenant_name;not null"`
	Slug      string     `json:"slug" gorm:"index"`
	StartDate time.Time  `json:"start_date" gorm:"autoCreateTime"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Open reports whether the season is still accepting matches.
func (s *Season) Open() bool {
	return s.EndDate == nil
}
