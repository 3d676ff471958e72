package achievements

import "math"

// Evaluate reports whether c holds. Conditions with no data behind them
// (rankings, timings, improvement history) never hold.
func Evaluate(c Condition, s *Stats, latest Attempt) bool {
	switch c := c.(type) {
	case QuizzesCompleted:
		return s.TotalQuizzes >= c.Value
	case PerfectScore:
		return s.PerfectScores >= c.Value
	case ConsecutivePerfect:
		return s.ConsecutivePerfect >= c.Value
	case AccuracyAverage:
		if c.Over <= 0 || len(s.RecentAccuracy) < c.Over {
			return false
		}
		var sum float64
		for _, a := range s.RecentAccuracy[:c.Over] {
			sum += a
		}
		return sum/float64(c.Over) >= c.Value
	case AccuracyWithScore:
		return latest.TotalQuestions > 0 && latest.Percentage() >= c.Accuracy && latest.Score >= c.MinScore
	case QuestionsAnswered:
		return s.TotalQuestions >= c.Value
	case QuizzesInDay:
		return s.TodayQuizzes >= c.Value
	case DifferentTopics:
		return len(s.UniqueTopics) >= c.Value
	case QuestionsInTopic:
		// Topic is not tracked per answer; every answered question counts.
		return s.TotalQuestions >= c.Value
	case StreakDays:
		return s.Streak >= c.Value
	case StudyTime:
		return s.TotalStudyTime >= c.Value
	case ExactScore:
		if latest.TotalQuestions > 0 && int(math.Round(latest.Percentage())) == c.Value {
			return true
		}
		return latest.Score == c.Value
	case StudyHour:
		if c.Hour == 0 {
			return latest.Hour%24 == 0
		}
		return latest.Hour < c.Hour && s.Streak >= c.Days
	case LeaderboardPosition, LeaderboardRankOne, UsersBeaten, QuizTime, Improvement:
		return false
	}
	return false
}
