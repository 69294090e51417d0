package domain

import "time"

// PointsPerLevel is the number of points needed to advance one level.
const PointsPerLevel = 500

// Profile is the user's editable identity plus derived progress.
type Profile struct {
	Name          string        `json:"name"`
	Bio           string        `json:"bio"`
	Level         int           `json:"level"`
	Title         string        `json:"title"`
	TotalPoints   int           `json:"total_points"`
	XPToNextLevel int           `json:"xp_to_next_level"`
	AccuracyRate  int           `json:"accuracy_rate"`
	Correct       int           `json:"correct_predictions"`
	Achievements  []Achievement `json:"achievements"`
	FirstSeen     time.Time     `json:"first_seen"`
}

// LevelFor returns the level reached with the given points, starting at 1.
func LevelFor(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// LevelTitle names a level.
func LevelTitle(level int) string {
	switch {
	case level <= 2:
		return "时尚新手"
	case level <= 5:
		return "时尚探索者"
	case level <= 10:
		return "时尚达人"
	default:
		return "时尚大师"
	}
}

// XPToNextLevel is the number of points still missing for the next level.
func XPToNextLevel(level, points int) int {
	return max(0, level*PointsPerLevel-points)
}

// Achievement is a derived milestone.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
}
