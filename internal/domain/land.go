package domain

// Land is the selection view of a land parcel owned by the user.
type Land struct {
	ID              int64      `json:"id"`
	LandID          string     `json:"land_id"`
	LandType        string     `json:"land_type"`
	LandTypeDisplay string     `json:"land_type_display"`
	RegionName      string     `json:"region_name"`
	Blueprint       *Blueprint `json:"blueprint,omitempty"`
}

type Blueprint struct {
	LandTypeDisplay string `json:"land_type_display"`
}

// TypeDisplay returns the land type label, falling back to the blueprint's.
func (l Land) TypeDisplay() string {
	var bp string
	if l.Blueprint != nil {
		bp = l.Blueprint.LandTypeDisplay
	}
	return CoalesceStr(l.LandTypeDisplay, bp, l.LandType)
}

// Label is the one-line picker label for a land.
func (l Land) Label() string {
	label := CoalesceStr(l.LandID, "#"+itoa(l.ID))
	if t := l.TypeDisplay(); t != "" {
		label += " · " + t
	}
	if l.RegionName != "" {
		label += " · " + l.RegionName
	}
	return label
}
