package achievements

type Category string

const (
	CategoryMilestone   Category = "milestone"
	CategoryAccuracy    Category = "accuracy"
	CategoryStreak      Category = "streak"
	CategoryVolume      Category = "volume"
	CategoryImprovement Category = "improvement"
	CategoryLeaderboard Category = "leaderboard"
	CategorySpeed       Category = "speed"
	CategorySpecial     Category = "special"
	CategoryFun         Category = "fun"
)

// Rarity is descriptive only.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type Definition struct {
	ID          string
	Name        string
	Description string
	Category    Category
	Rarity      Rarity
	Icon        string
	Condition   Condition
}

// Catalog is an ordered, read-only list of definitions. Evaluation and
// listing follow its order.
type Catalog struct {
	defs  []Definition
	index map[string]int
}

func NewCatalog(defs []Definition) *Catalog {
	c := &Catalog{
		defs:  make([]Definition, len(defs)),
		index: make(map[string]int, len(defs)),
	}
	copy(c.defs, defs)
	for i, d := range c.defs {
		c.index[d.ID] = i
	}
	return c
}

// Definitions returns a copy of the catalog entries.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalog) Len() int { return len(c.defs) }

func (c *Catalog) Lookup(id string) (Definition, bool) {
	i, ok := c.index[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

// DefaultCatalog returns the badges shipped with the app.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Definition{
		// Milestones
		{"first_steps", "First Steps", "Complete your first quiz", CategoryMilestone, RarityCommon, "🎯", QuizzesCompleted{Value: 1}},
		{"getting_started", "Getting Started", "Complete 10 quizzes", CategoryMilestone, RarityCommon, "📚", QuizzesCompleted{Value: 10}},
		{"dedicated_learner", "Dedicated Learner", "Complete 50 quizzes", CategoryMilestone, RarityUncommon, "📖", QuizzesCompleted{Value: 50}},
		{"study_master", "Study Master", "Complete 100 quizzes", CategoryMilestone, RarityRare, "🎓", QuizzesCompleted{Value: 100}},
		{"legend", "Legend", "Complete 500 quizzes", CategoryMilestone, RarityLegendary, "👑", QuizzesCompleted{Value: 500}},
		{"topic_explorer", "Topic Explorer", "Study 5 different topics", CategoryMilestone, RarityCommon, "🗺️", DifferentTopics{Value: 5}},
		{"renaissance_mind", "Renaissance Mind", "Study 20 different topics", CategoryMilestone, RarityEpic, "🧠", DifferentTopics{Value: 20}},

		// Accuracy
		{"perfect_score", "Perfect Score", "Get 100% on any quiz", CategoryAccuracy, RarityCommon, "⭐", PerfectScore{Value: 1}},
		{"perfectionist", "Perfectionist", "Get 100% on 5 quizzes", CategoryAccuracy, RarityUncommon, "💫", PerfectScore{Value: 5}},
		{"flawless", "Flawless", "Get 100% on 10 consecutive quizzes", CategoryAccuracy, RarityEpic, "💎", ConsecutivePerfect{Value: 10}},
		{"sharp_mind", "Sharp Mind", "Maintain 90%+ average over 20 quizzes", CategoryAccuracy, RarityRare, "🧩", AccuracyAverage{Value: 90, Over: 20}},
		{"genius", "Genius", "Score 95%+ on a 20-question quiz", CategoryAccuracy, RarityRare, "🌟", AccuracyWithScore{Accuracy: 95, MinScore: 19}},

		// Speed
		{"quick_thinker", "Quick Thinker", "Complete quiz in under 2 minutes with 90%+", CategorySpeed, RarityUncommon, "⚡", QuizTime{MaxTime: 120, MinQuestions: 10, MinAccuracy: 90}},

		// Streaks
		{"week_warrior", "Week Warrior", "7-day study streak", CategoryStreak, RarityUncommon, "🔥", StreakDays{Value: 7}},
		{"month_master", "Month Master", "30-day study streak", CategoryStreak, RarityRare, "🔥", StreakDays{Value: 30}},
		{"unstoppable", "Unstoppable", "100-day study streak", CategoryStreak, RarityEpic, "🔥", StreakDays{Value: 100}},
		{"golden_streak", "Golden Streak", "Never miss a day for 365 days", CategoryStreak, RarityLegendary, "🏆", StreakDays{Value: 365}},
		{"morning_scholar", "Morning Scholar", "Study 7 days in a row before 9am", CategoryStreak, RarityRare, "🌅", StudyHour{Hour: 9, Days: 7}},
		{"night_owl", "Night Owl", "Study 7 days in a row after 10pm", CategoryStreak, RarityRare, "🦉", StudyHour{Hour: 22, Days: 7}},

		// Volume
		{"question_crusher", "Question Crusher", "Answer 100 questions", CategoryVolume, RarityCommon, "💪", QuestionsAnswered{Value: 100}},
		{"answer_machine", "Answer Machine", "Answer 1,000 questions", CategoryVolume, RarityRare, "🤖", QuestionsAnswered{Value: 1000}},
		{"quiz_marathon", "Quiz Marathon", "Complete 10 quizzes in one day", CategoryVolume, RarityUncommon, "🏃", QuizzesInDay{Value: 10}},
		{"study_session", "Study Session", "Study for 30 minutes straight", CategoryVolume, RarityCommon, "⏰", StudyTime{Value: 30}},
		{"deep_dive", "Deep Dive", "Complete 50 questions on single topic", CategoryVolume, RarityUncommon, "🏊", QuestionsInTopic{Value: 50, Topic: "any"}},

		// Improvement
		{"rising_star", "Rising Star", "Improve score by 20% on same topic", CategoryImprovement, RarityUncommon, "📈", Improvement{Value: 20}},
		{"comeback_kid", "Comeback Kid", "Score 90%+ after getting below 50%", CategoryImprovement, RarityUncommon, "🎯", Improvement{Value: 40}},
		{"mastery", "Mastery", "Go from 60% to 95%+ on a topic", CategoryImprovement, RarityRare, "🏅", Improvement{Value: 35}},

		// Leaderboard
		{"top_ten", "Top 10", "Reach top 10 on leaderboard", CategoryLeaderboard, RarityUncommon, "🥉", LeaderboardPosition{Value: 10}},
		{"top_five", "Top 5", "Reach top 5 on leaderboard", CategoryLeaderboard, RarityRare, "🥈", LeaderboardPosition{Value: 5}},
		{"number_one", "#1 Spot", "Reach #1 on leaderboard", CategoryLeaderboard, RarityEpic, "🥇", LeaderboardRankOne{Value: true}},
		{"competitive", "Competitive", "Beat 10 different users' scores", CategoryLeaderboard, RarityUncommon, "⚔️", UsersBeaten{Value: 10}},

		// Speed
		{"lightning_fast", "Lightning Fast", "Complete 10-question quiz in under 60 seconds", CategorySpeed, RarityUncommon, "⚡", QuizTime{MaxTime: 60, MinQuestions: 10, MinAccuracy: 70}},
		{"speed_demon", "Speed Demon", "Answer 100 questions in under 10 minutes", CategorySpeed, RarityRare, "🏎️", QuizTime{MaxTime: 600, MinQuestions: 100, MinAccuracy: 75}},

		// Fun
		{"lucky_sevens", "Lucky Number Seven", "Score exactly 77%", CategoryFun, RarityUncommon, "🎰", ExactScore{Value: 77}},
		{"perfectionist_100", "Century", "Score exactly 100 points", CategoryFun, RarityUncommon, "💯", ExactScore{Value: 100}},
		{"midnight_scholar", "Midnight Scholar", "Complete quiz at exactly midnight", CategoryFun, RarityRare, "🌙", StudyHour{Hour: 0, Days: 1}},

		// Special
		{"early_adopter", "Early Adopter", "One of the first 100 users", CategorySpecial, RarityEpic, "🌱", QuizzesCompleted{Value: 1}},
		{"perfect_week", "Perfect Week", "100% accuracy on all quizzes for 7 days", CategorySpecial, RarityLegendary, "✨", ConsecutivePerfect{Value: 50}},
	})
}
