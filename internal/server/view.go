package server

import (
	"github.com/matzehuels/piemenu/pkg/hittest"
	"github.com/matzehuels/piemenu/pkg/menu"
	"github.com/matzehuels/piemenu/pkg/node"
)

// MenuView is the serialized form of a stack.
type MenuView struct {
	Center     hittest.Point `json:"center" yaml:"center"`
	Active     int           `json:"active" yaml:"active"`
	Generation uint64        `json:"generation" yaml:"generation"`
	Navigating bool          `json:"navigating" yaml:"navigating"`
	Breadcrumb []string      `json:"breadcrumb,omitempty" yaml:"breadcrumb,omitempty"`
	Rings      []RingView    `json:"rings" yaml:"rings"`
}

// RingView is one ring of a MenuView. Angles are in degrees.
type RingView struct {
	Level       int        `json:"level" yaml:"level"`
	Shape       string     `json:"shape" yaml:"shape"`
	Start       float64    `json:"start" yaml:"start"`
	End         float64    `json:"end" yaml:"end"`
	Direction   string     `json:"direction" yaml:"direction"`
	ItemAngle   float64    `json:"item_angle" yaml:"item_angle"`
	StartRadius float64    `json:"start_radius" yaml:"start_radius"`
	Thickness   float64    `json:"thickness" yaml:"thickness"`
	IconSize    float64    `json:"icon_size" yaml:"icon_size"`
	Collapsed   bool       `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Selected    int        `json:"selected" yaml:"selected"`
	Hovered     int        `json:"hovered" yaml:"hovered"`
	Provider    string     `json:"provider,omitempty" yaml:"provider,omitempty"`
	Content     string     `json:"content,omitempty" yaml:"content,omitempty"`
	Items       []ItemView `json:"items" yaml:"items"`
}

// ItemView is one item of a RingView.
type ItemView struct {
	Index    int       `json:"index" yaml:"index"`
	ID       string    `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Kind     node.Kind `json:"kind" yaml:"kind"`
	Provider string    `json:"provider" yaml:"provider"`
	Start    float64   `json:"start" yaml:"start"`
	End      float64   `json:"end" yaml:"end"`
	Branch   bool      `json:"branch,omitempty" yaml:"branch,omitempty"`
}

// Snapshot captures s. It must run on the stack's owner.
func Snapshot(s *menu.Stack, center hittest.Point) MenuView {
	v := MenuView{
		Center:     center,
		Active:     s.ActiveLevel(),
		Generation: s.Generation(),
		Navigating: s.Navigating(),
	}
	for _, n := range s.Breadcrumb() {
		v.Breadcrumb = append(v.Breadcrumb, n.Name)
	}
	rings := s.Rings()
	for i, rc := range s.Configurations() {
		rv := RingView{
			Level:       rc.Level,
			Shape:       "partial",
			Start:       rc.Slice.Start,
			End:         rc.Slice.End,
			Direction:   rc.Slice.Direction.String(),
			ItemAngle:   rc.Slice.ItemAngle,
			StartRadius: rc.StartRadius,
			Thickness:   rc.Thickness,
			IconSize:    rc.IconSize,
			Collapsed:   rc.Collapsed,
			Selected:    rc.Selected,
			Hovered:     menu.None,
		}
		if rc.Slice.FullCircle {
			rv.Shape = "full"
		}
		if i < len(rings) {
			rv.Hovered = rings[i].Hovered
			rv.Provider = rings[i].ProviderID
			rv.Content = rings[i].ContentID
		}
		for j, n := range rc.Nodes {
			start, end := rc.Slice.ItemRange(j)
			rv.Items = append(rv.Items, ItemView{
				Index:    j,
				ID:       n.ID,
				Name:     n.Name,
				Kind:     n.Kind,
				Provider: n.ProviderID,
				Start:    start,
				End:      end,
				Branch:   !n.ActsAsLeaf(),
			})
		}
		v.Rings = append(v.Rings, rv)
	}
	return v
}
