package plan

import (
	"encoding/json"
	"fmt"
	"os"

	ppErrors "github.com/aryeko/planpilot/internal/errors"
)

// Paths names the plan input files. Either Unified is set, or any subset
// of Epics/Stories/Tasks is set. The two forms are mutually exclusive;
// Load does not enforce that itself (the config validator does) but will
// refuse to load if neither form yields any items.
type Paths struct {
	Unified string
	Epics   string
	Stories string
	Tasks   string
}

// Load reads plan items from disk per Paths and returns an unvalidated,
// unhashed Plan. In unified mode the single file is a JSON object
// `{"items": [...]}` and each item's own `type` field is trusted. In
// multi-file mode each file is a JSON array and every item in it is
// stamped with the type implied by which file it came from, overriding
// any `type` field present in the source.
func Load(paths Paths) (*Plan, error) {
	var items []PlanItem

	if paths.Unified != "" {
		unified, err := loadUnified(paths.Unified)
		if err != nil {
			return nil, err
		}
		items = unified
	} else {
		for _, typed := range []struct {
			path string
			typ  ItemType
		}{
			{paths.Epics, Epic},
			{paths.Stories, Story},
			{paths.Tasks, Task},
		} {
			if typed.path == "" {
				continue
			}
			loaded, err := loadTyped(typed.path, typed.typ)
			if err != nil {
				return nil, err
			}
			items = append(items, loaded...)
		}
	}

	if len(items) == 0 {
		return nil, ppErrors.NewPlanLoadError("plan is empty: no items loaded", ppErrors.ErrPlanEmpty)
	}

	return &Plan{Items: items}, nil
}

func loadUnified(path string) ([]PlanItem, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Items []PlanItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ppErrors.NewPlanLoadError(fmt.Sprintf("malformed plan JSON in %s", path), err).WithPath(path)
	}

	return doc.Items, nil
}

func loadTyped(path string, typ ItemType) ([]PlanItem, error) {
	raw, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var items []PlanItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ppErrors.NewPlanLoadError(fmt.Sprintf("malformed plan JSON in %s", path), err).WithPath(path)
	}

	for i := range items {
		items[i].Type = typ
	}

	return items, nil
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ppErrors.NewPlanLoadError(fmt.Sprintf("plan file not found: %s", path), ppErrors.ErrPlanFileMissing).WithPath(path)
		}
		return nil, ppErrors.NewPlanLoadError(fmt.Sprintf("failed to read plan file %s", path), err).WithPath(path)
	}
	return raw, nil
}
