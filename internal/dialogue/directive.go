package dialogue

// Position is a point on the ground plane.
type Position struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// ObjectList names the decoration kinds to display. An empty list clears them.
type ObjectList struct {
	Kinds []string `json:"kinds"`
}

// Directives are the scene side effects carried by narration tags. A nil field
// means no tag of that kind was seen.
type Directives struct {
	Position   *Position   `json:"position,omitempty"`
	Fog        *float64    `json:"fog,omitempty"`
	AudioTrack *string     `json:"audio_track,omitempty"`
	Objects    *ObjectList `json:"objects,omitempty"`
}

// merge overwrites the fields of d that are set in o.
func (d *Directives) merge(o Directives) {
	if o.Position != nil {
		d.Position = o.Position
	}
	if o.Fog != nil {
		d.Fog = o.Fog
	}
	if o.AudioTrack != nil {
		d.AudioTrack = o.AudioTrack
	}
	if o.Objects != nil {
		d.Objects = o.Objects
	}
}
