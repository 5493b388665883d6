package model

// Desk is a bookable seat on a floor of a building. Desks are managed outside
// this service and are read-only here.
type Desk struct {
	ID         int64  `json:"id" bson:"_id"`
	BuildingID int64  `json:"buildingId" bson:"building_id"`
	Floor      int    `json:"floor" bson:"floor"`
	Label      string `json:"label" bson:"label"`
}

// DeskFilter narrows desk listings. Zero values match everything.
type DeskFilter struct {
	BuildingID int64
	Floor      *int
}

func (f DeskFilter) Match(d *Desk) bool {
	if f.BuildingID != 0 && d.BuildingID != f.BuildingID {
		return false
	}
	if f.Floor != nil && d.Floor != *f.Floor {
		return false
	}
	return true
}
