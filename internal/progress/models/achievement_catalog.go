package models

// AchievementCatalog is the fixed badge catalog in evaluation order. Stored
// records carry a copy of the metadata; the catalog stays the source of
// truth for names, icons and targets.
func AchievementCatalog() []Achievement {
	return []Achievement{
		// Getting started
		{ID: "first_game", Name: "First Steps", Description: "Play your first game", Icon: "🎯", Target: 1, Category: "beginner"},
		{ID: "first_win", Name: "Winner!", Description: "Win your first game with 50%+ accuracy", Icon: "🏆", Target: 1, Category: "beginner"},

		// Accuracy
		{ID: "perfect_score", Name: "Perfect!", Description: "Get 100% accuracy in any game", Icon: "⭐", Target: 1, Category: "skill"},
		{ID: "perfect_5", Name: "Perfectionist", Description: "Get 5 perfect scores", Icon: "💫", Target: 5, Category: "skill"},

		// Streaks
		{ID: "streak_5", Name: "On Fire", Description: "Get 5 correct answers in a row", Icon: "🔥", Target: 5, Category: "skill"},
		{ID: "streak_10", Name: "Unstoppable", Description: "Get 10 correct answers in a row", Icon: "⚡", Target: 10, Category: "skill"},
		{ID: "streak_20", Name: "Legendary", Description: "Get 20 correct answers in a row", Icon: "👑", Target: 20, Category: "skill"},

		// XP milestones
		{ID: "xp_100", Name: "Rising Star", Description: "Earn 100 XP", Icon: "🌟", Target: 100, Category: "progress"},
		{ID: "xp_500", Name: "Knowledge Seeker", Description: "Earn 500 XP", Icon: "📚", Target: 500, Category: "progress"},
		{ID: "xp_1000", Name: "Scholar", Description: "Earn 1000 XP", Icon: "🎓", Target: 1000, Category: "progress"},
		{ID: "xp_5000", Name: "Genius", Description: "Earn 5000 XP", Icon: "🧠", Target: 5000, Category: "progress"},

		// Games completed
		{ID: "games_5", Name: "Gamer", Description: "Complete 5 games", Icon: "🎮", Target: 5, Category: "progress"},
		{ID: "games_10", Name: "Game Master", Description: "Complete 10 games", Icon: "🕹️", Target: 10, Category: "progress"},
		{ID: "games_25", Name: "Champion", Description: "Complete 25 games", Icon: "🏅", Target: 25, Category: "progress"},
		{ID: "games_50", Name: "Legend", Description: "Complete 50 games", Icon: "🌈", Target: 50, Category: "progress"},

		// Correct answers
		{ID: "correct_10", Name: "Quick Learner", Description: "Get 10 correct answers", Icon: "✅", Target: 10, Category: "progress"},
		{ID: "correct_50", Name: "Smart Cookie", Description: "Get 50 correct answers", Icon: "🍪", Target: 50, Category: "progress"},
		{ID: "correct_100", Name: "Brain Power", Description: "Get 100 correct answers", Icon: "💪", Target: 100, Category: "progress"},

		// Speed
		{ID: "speed_demon", Name: "Speed Demon", Description: "Complete a game in under 30 seconds", Icon: "⚡", Target: 1, Category: "skill"},

		// Subject variety
		{ID: "explorer", Name: "Explorer", Description: "Try games in 3 different subjects", Icon: "🌍", Target: 3, Category: "variety"},
		{ID: "all_rounder", Name: "All-Rounder", Description: "Play games in all subjects", Icon: "🎭", Target: 5, Category: "variety"},
	}
}

// CatalogEntry looks up a catalog definition by id
func CatalogEntry(id string) (Achievement, bool) {
	for _, a := range AchievementCatalog() {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
