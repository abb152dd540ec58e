package tenant

import "gorm.io/gorm"

// ForTenant returns a GORM scope that filters by app_id. An empty appID
// leaves the query unscoped, which only maintenance jobs use.
func ForTenant(appID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if appID == "" {
			return db
		}
		return db.Where("app_id = ?", appID)
	}
}
