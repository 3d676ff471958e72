package achievements

// Progress returns how far s is towards a value-threshold condition, capped at
// the goal. ok is false for conditions without a natural numeric measure.
func Progress(c Condition, s *Stats) (progress, total int, ok bool) {
	var current int
	switch c := c.(type) {
	case QuizzesCompleted:
		current, total = s.TotalQuizzes, c.Value
	case PerfectScore:
		current, total = s.PerfectScores, c.Value
	case ConsecutivePerfect:
		current, total = s.ConsecutivePerfect, c.Value
	case QuestionsAnswered:
		current, total = s.TotalQuestions, c.Value
	case QuizzesInDay:
		current, total = s.TodayQuizzes, c.Value
	case DifferentTopics:
		current, total = len(s.UniqueTopics), c.Value
	case QuestionsInTopic:
		current, total = s.TotalQuestions, c.Value
	case StreakDays:
		current, total = s.Streak, c.Value
	case StudyTime:
		current, total = s.TotalStudyTime, c.Value
	default:
		return 0, 0, false
	}

	if total <= 0 {
		return 0, 0, false
	}
	if current > total {
		current = total
	}
	return current, total, true
}
