package contractor

// Capability names checked by the market.
const (
	ManageMarket = "manage_market"
	ManageOrders = "manage_orders"
)

// Member is a user belonging to a contractor organisation.
type Member struct {
	ContractorID string `gorm:"column:contractor_id;primaryKey;size:36"`
	UserID       string `gorm:"column:user_id;primaryKey;size:36"`
}

func (Member) TableName() string { return "contractor_members" }

// Grant gives a member one capability.
type Grant struct {
	ContractorID string `gorm:"column:contractor_id;primaryKey;size:36"`
	UserID       string `gorm:"column:user_id;primaryKey;size:36"`
	Capability   string `gorm:"column:capability;primaryKey;size:32"`
}

func (Grant) TableName() string { return "contractor_capabilities" }
