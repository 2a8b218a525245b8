package reconcile

import "github.com/sells-group/starlinker/internal/model"

// PushItem is one nickname write destined for the Starlink API.
type PushItem struct {
	Sln      string
	Nickname string
}

// PushPlan selects the devices whose nicknames should be written back.
// Only text-derived recommendations are trusted for automatic pushes; a
// manually overridden nickname is pushed as-is regardless of match
// confidence, since the API has no record of it at all.
func PushPlan(devices []*model.Device) []PushItem {
	var plan []PushItem
	for _, d := range devices {
		if d.RecommendedLabel != "" &&
			d.RouterSource == model.RouterSourceText &&
			d.RecommendedLabel != d.CurrentLabel {
			plan = append(plan, PushItem{Sln: d.Sln, Nickname: d.RecommendedLabel})
			continue
		}
		if d.CurrentLabel != "" &&
			d.LabelSource == model.LabelSourceOverride &&
			d.RecommendedLabel != d.CurrentLabel {
			plan = append(plan, PushItem{Sln: d.Sln, Nickname: d.CurrentLabel})
		}
	}
	return plan
}
