package scoring

import "math"

// Level derives the level for an XP total
func Level(xp int64) int {
	if xp <= 0 {
		return 1
	}
	return int(math.Floor(math.Sqrt(float64(xp)/100))) + 1
}

// XPForLevel is the XP total at which level starts
func XPForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * 100
}

// Progress describes where an XP total sits inside its level
type Progress struct {
	Level        int     `json:"level"`
	CurrentXP    int64   `json:"currentXp"`
	LevelStartXP int64   `json:"levelStartXp"`
	NextLevelXP  int64   `json:"nextLevelXp"`
	Percent      float64 `json:"percent"`
}

// LevelProgress computes the progress toward the next level
func LevelProgress(xp int64) Progress {
	level := Level(xp)
	start := XPForLevel(level)
	next := XPForLevel(level + 1)

	percent := 0.0
	if next > start {
		percent = math.Round(float64(xp-start)/float64(next-start)*10000) / 100
	}

	return Progress{
		Level:        level,
		CurrentXP:    xp,
		LevelStartXP: start,
		NextLevelXP:  next,
		Percent:      percent,
	}
}
