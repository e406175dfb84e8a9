package services

// LevelInfo describes where a cumulative XP total sits on the level curve
type LevelInfo struct {
	Level     int `json:"level"`
	XPForNext int `json:"xp_for_next"`
	XPInLevel int `json:"xp_in_level"`
}

// CalculateLevel maps cumulative XP to a level on the triangular curve:
// finishing level n costs n*100 XP (1->2 costs 100, 2->3 costs 200, ...).
// Achievement and UI consumers depend on this exact rule, so the level is
// always recomputed from the total, never incremented.
func CalculateLevel(totalXP int) LevelInfo {
	level := 1
	xpRemaining := totalXP
	xpNeeded := 100

	for xpRemaining >= xpNeeded {
		xpRemaining -= xpNeeded
		level++
		xpNeeded = level * 100
	}

	return LevelInfo{
		Level:     level,
		XPForNext: xpNeeded,
		XPInLevel: xpRemaining,
	}
}
