package merging

import (
	"regexp"
	"sort"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/normalizers"
)

// SortItemsFabricFollowsFurniture orders merged items so each fabric
// accessory appears immediately after every furniture item its description
// references. An accessory referencing multiple furniture items appears once
// after each of them. Accessories whose targets do not exist are appended at
// the end sorted by item number; items with no parseable targets sort as
// furniture regardless of category.
func SortItemsFabricFollowsFurniture(items []models.LineItem, tokenPattern *regexp.Regexp) []models.LineItem {
	if len(items) == 0 {
		return items
	}

	type accessory struct {
		item    models.LineItem
		targets []string
	}

	furniture := make([]models.LineItem, 0, len(items))
	accessories := make([]accessory, 0)
	for _, item := range items {
		targets := ParseFabricTargets(item.Description, tokenPattern)
		if len(targets) == 0 {
			furniture = append(furniture, item)
			continue
		}
		accessories = append(accessories, accessory{item: item, targets: targets})
	}

	sort.SliceStable(furniture, func(i, j int) bool {
		return furniture[i].ItemNo < furniture[j].ItemNo
	})
	sort.SliceStable(accessories, func(i, j int) bool {
		return accessories[i].item.ItemNo < accessories[j].item.ItemNo
	})

	furniturePos := make(map[string]int, len(furniture))
	for i, item := range furniture {
		key := normalizers.Normalize(item.ItemNo)
		if _, ok := furniturePos[key]; !ok {
			furniturePos[key] = i
		}
	}

	dependents := make(map[int][]models.LineItem)
	orphans := make([]models.LineItem, 0)
	for _, acc := range accessories {
		placed := false
		for _, target := range acc.targets {
			pos, ok := furniturePos[normalizers.Normalize(target)]
			if !ok {
				continue
			}
			dependents[pos] = append(dependents[pos], acc.item)
			placed = true
		}
		if !placed {
			orphans = append(orphans, acc.item)
		}
	}

	sort.SliceStable(orphans, func(i, j int) bool {
		return orphans[i].ItemNo < orphans[j].ItemNo
	})

	sorted := make([]models.LineItem, 0, len(items))
	for i, item := range furniture {
		sorted = append(sorted, item)
		sorted = append(sorted, dependents[i]...)
	}
	sorted = append(sorted, orphans...)

	return sorted
}
