package planner

import (
	"strings"

	"github.com/wonpyo/jeju-chatpi/internal/knowledge"
)

// AccessResult carries the filtered candidates plus whether the
// congestion pass dropped anything. The notice reflects the attempted
// removal even when the drop was reverted to avoid an empty list.
type AccessResult struct {
	POIs             []knowledge.POI
	CongestionNotice bool
}

// ApplyAccessRules removes blacklisted candidates first, then
// candidates sitting in high-congestion areas. The congestion pass
// never empties the list: if it would remove every remaining candidate
// the pre-congestion list is kept instead.
func ApplyAccessRules(pois []knowledge.POI, blacklist []knowledge.BlacklistEntry, rules []knowledge.CongestionRule) AccessResult {
	blocked := make(map[string]struct{}, len(blacklist))
	for _, e := range blacklist {
		if !strings.EqualFold(strings.TrimSpace(e.Severity), "high") {
			continue
		}
		if key := strings.ToLower(strings.TrimSpace(e.Key)); key != "" {
			blocked[key] = struct{}{}
		}
	}

	kept := make([]knowledge.POI, 0, len(pois))
	for _, p := range pois {
		if key := strings.ToLower(p.Key()); key != "" {
			if _, bad := blocked[key]; bad {
				continue
			}
		}
		kept = append(kept, p)
	}

	crowded := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if !strings.EqualFold(strings.TrimSpace(r.Level), "high") {
			continue
		}
		if area := strings.TrimSpace(r.Area); area != "" {
			crowded[area] = struct{}{}
		}
	}

	calm := make([]knowledge.POI, 0, len(kept))
	for _, p := range kept {
		if _, busy := crowded[strings.TrimSpace(p.Area)]; busy {
			continue
		}
		calm = append(calm, p)
	}

	notice := len(calm) < len(kept)
	if len(calm) == 0 {
		calm = kept
	}
	return AccessResult{POIs: calm, CongestionNotice: notice}
}
