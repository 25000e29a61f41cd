package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "sale:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView       = "user:view"
	PrivUserManage     = "user:manage"
	PrivProductView    = "product:view"
	PrivProductManage  = "product:manage"
	PrivCategoryManage = "category:manage"
	PrivStockAdjust    = "stock:adjust"
	PrivRateUpdate     = "rate:update"
	PrivSaleCreate     = "sale:create"
	PrivSaleView       = "sale:view"
	PrivCashView       = "cash:view"
	PrivCashCreate     = "cash:create"
	PrivDashboardView  = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View Users"},
	{Code: PrivUserManage, Name: "Manage Users"},
	{Code: PrivProductView, Name: "View Products"},
	{Code: PrivProductManage, Name: "Manage Products"},
	{Code: PrivCategoryManage, Name: "Manage Categories"},
	{Code: PrivStockAdjust, Name: "Record Stock Movements"},
	{Code: PrivRateUpdate, Name: "Update Exchange Rate"},
	{Code: PrivSaleCreate, Name: "Register Sales"},
	{Code: PrivSaleView, Name: "View Sales"},
	{Code: PrivCashView, Name: "View Cash Transactions"},
	{Code: PrivCashCreate, Name: "Record Cash Transactions"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}

// SalespersonPrivileges is the counter-only subset granted to SALESPERSON.
var SalespersonPrivileges = []string{
	PrivProductView,
	PrivSaleCreate,
	PrivSaleView,
}
