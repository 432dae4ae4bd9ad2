package ir

// Entity is a fully loaded host object, handed to computed columns.
type Entity struct {
	ID       int64          `json:"id"`
	ParentID int64          `json:"parent_id"`
	Template string         `json:"template"`
	Name     string         `json:"name"`
	Status   int64          `json:"status"`
	Sort     int64          `json:"sort"`
	Fields   map[string]any `json:"fields"`
}

// Get returns a field value by name. Built-in attributes are reachable
// under their column names.
func (e *Entity) Get(name string) any {
	switch name {
	case "id":
		return e.ID
	case "parent_id":
		return e.ParentID
	case "template":
		return e.Template
	case "name":
		return e.Name
	case "status":
		return e.Status
	case "sort":
		return e.Sort
	}
	if e.Fields == nil {
		return nil
	}
	return e.Fields[name]
}
