package models

// FoodItem is the already-normalized food record handed to the engine by the
// catalog collaborator (or typed in by the user). It is immutable once
// passed to a scan; ScanRecord keeps its own snapshot.
type FoodItem struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Ingredients StringList `json:"ingredients"`
	Allergens   StringList `json:"allergens"`
	Additives   StringList `json:"additives"`
	DataSource  string     `json:"data_source"` // "verified" | "catalog" | "manual"
}
