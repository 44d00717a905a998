package catalog

// Item is a catalog entry. Listings link to it through their details row.
type Item struct {
	ID        string `gorm:"column:id;primaryKey;size:36" json:"id"`
	Name      string `gorm:"column:name;size:100;not null;uniqueIndex" json:"name"`
	ItemType  string `gorm:"column:item_type;size:50" json:"item_type"`
	DetailsID string `gorm:"column:details_id;size:36" json:"details_id"`
}

// TableName overrides the table name.
func (Item) TableName() string {
	return "game_items"
}

// searchItems implements fuzzy.Source over item names.
type searchItems []Item

func (s searchItems) String(i int) string { return s[i].Name }
func (s searchItems) Len() int            { return len(s) }
