// Package achievements holds the badge catalog and the engine that awards
// badges after each graded quiz.
package achievements

import (
	"encoding/json"
	"fmt"
)

const (
	TagQuizzesCompleted    = "quizzes_completed"
	TagPerfectScore        = "perfect_score"
	TagConsecutivePerfect  = "consecutive_perfect"
	TagAccuracyAverage     = "accuracy_average"
	TagAccuracyWithScore   = "accuracy_with_score"
	TagQuestionsAnswered   = "questions_answered"
	TagQuizzesInDay        = "quizzes_in_day"
	TagDifferentTopics     = "different_topics"
	TagQuestionsInTopic    = "questions_in_topic"
	TagStreakDays          = "streak_days"
	TagStudyTime           = "study_time"
	TagLeaderboardPosition = "leaderboard_position"
	TagLeaderboardRankOne  = "leaderboard_rank_one"
	TagUsersBeaten         = "users_beaten"
	TagQuizTime            = "quiz_time"
	TagImprovement         = "improvement"
	TagExactScore          = "exact_score"
	TagStudyHour           = "study_hour"
)

// Condition is the closed set of badge predicates. Only the types in this
// file implement it.
type Condition interface {
	Tag() string
	condition()
}

type QuizzesCompleted struct {
	Value int `json:"value"`
}

type PerfectScore struct {
	Value int `json:"value"`
}

type ConsecutivePerfect struct {
	Value int `json:"value"`
}

// AccuracyAverage needs at least Over accuracy samples.
type AccuracyAverage struct {
	Value float64 `json:"value"`
	Over  int     `json:"over"`
}

type AccuracyWithScore struct {
	Accuracy float64 `json:"accuracy"`
	MinScore int     `json:"minScore"`
}

type QuestionsAnswered struct {
	Value int `json:"value"`
}

type QuizzesInDay struct {
	Value int `json:"value"`
}

type DifferentTopics struct {
	Value int `json:"value"`
}

// QuestionsInTopic counts answered questions across every topic. Topic is kept
// for display and is not used as a filter.
type QuestionsInTopic struct {
	Value int    `json:"value"`
	Topic string `json:"topic"`
}

type StreakDays struct {
	Value int `json:"value"`
}

// StudyTime is in minutes.
type StudyTime struct {
	Value int `json:"value"`
}

type LeaderboardPosition struct {
	Value int `json:"value"`
}

type LeaderboardRankOne struct {
	Value bool `json:"value"`
}

type UsersBeaten struct {
	Value int `json:"value"`
}

// QuizTime is in seconds.
type QuizTime struct {
	MaxTime      int     `json:"maxTime"`
	MinQuestions int     `json:"minQuestions"`
	MinAccuracy  float64 `json:"minAccuracy"`
}

type Improvement struct {
	Value float64 `json:"value"`
}

type ExactScore struct {
	Value int `json:"value"`
}

// StudyHour with Hour 0 means "at midnight"; otherwise the attempt must come
// before Hour while the streak is at least Days.
type StudyHour struct {
	Hour int `json:"hour"`
	Days int `json:"days"`
}

func (QuizzesCompleted) Tag() string { return TagQuizzesCompleted }
func (PerfectScore) Tag() string { return TagPerfectScore }
func (ConsecutivePerfect) Tag() string { return TagConsecutivePerfect }
func (AccuracyAverage) Tag() string { return TagAccuracyAverage }
func (AccuracyWithScore) Tag() string { return TagAccuracyWithScore }
func (QuestionsAnswered) Tag() string { return TagQuestionsAnswered }
func (QuizzesInDay) Tag() string { return TagQuizzesInDay }
func (DifferentTopics) Tag() string { return TagDifferentTopics }
func (QuestionsInTopic) Tag() string { return TagQuestionsInTopic }
func (StreakDays) Tag() string { return TagStreakDays }
func (StudyTime) Tag() string { return TagStudyTime }
func (LeaderboardPosition) Tag() string { return TagLeaderboardPosition }
func (LeaderboardRankOne) Tag() string { return TagLeaderboardRankOne }
func (UsersBeaten) Tag() string { return TagUsersBeaten }
func (QuizTime) Tag() string { return TagQuizTime }
func (Improvement) Tag() string { return TagImprovement }
func (ExactScore) Tag() string { return TagExactScore }
func (StudyHour) Tag() string { return TagStudyHour }

func (QuizzesCompleted) condition() {}
func (PerfectScore) condition() {}
func (ConsecutivePerfect) condition() {}
func (AccuracyAverage) condition() {}
func (AccuracyWithScore) condition() {}
func (QuestionsAnswered) condition() {}
func (QuizzesInDay) condition() {}
func (DifferentTopics) condition() {}
func (QuestionsInTopic) condition() {}
func (StreakDays) condition() {}
func (StudyTime) condition() {}
func (LeaderboardPosition) condition() {}
func (LeaderboardRankOne) condition() {}
func (UsersBeaten) condition() {}
func (QuizTime) condition() {}
func (Improvement) condition() {}
func (ExactScore) condition() {}
func (StudyHour) condition() {}

// MarshalCondition encodes c as a flat JSON object whose "type" member holds
// the tag.
func MarshalCondition(c Condition) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("nil condition")
	}

	body, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(c.Tag())
	fields["type"] = tag

	return json.Marshal(fields)
}

func decodeAs[T Condition](data []byte) (Condition, error) {
	var c T
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// UnmarshalCondition is the inverse of MarshalCondition.
func UnmarshalCondition(data []byte) (Condition, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("invalid condition: %w", err)
	}

	switch head.Type {
	case TagQuizzesCompleted:
		return decodeAs[QuizzesCompleted](data)
	case TagPerfectScore:
		return decodeAs[PerfectScore](data)
	case TagConsecutivePerfect:
		return decodeAs[ConsecutivePerfect](data)
	case TagAccuracyAverage:
		return decodeAs[AccuracyAverage](data)
	case TagAccuracyWithScore:
		return decodeAs[AccuracyWithScore](data)
	case TagQuestionsAnswered:
		return decodeAs[QuestionsAnswered](data)
	case TagQuizzesInDay:
		return decodeAs[QuizzesInDay](data)
	case TagDifferentTopics:
		return decodeAs[DifferentTopics](data)
	case TagQuestionsInTopic:
		return decodeAs[QuestionsInTopic](data)
	case TagStreakDays:
		return decodeAs[StreakDays](data)
	case TagStudyTime:
		return decodeAs[StudyTime](data)
	case TagLeaderboardPosition:
		return decodeAs[LeaderboardPosition](data)
	case TagLeaderboardRankOne:
		return decodeAs[LeaderboardRankOne](data)
	case TagUsersBeaten:
		return decodeAs[UsersBeaten](data)
	case TagQuizTime:
		return decodeAs[QuizTime](data)
	case TagImprovement:
		return decodeAs[Improvement](data)
	case TagExactScore:
		return decodeAs[ExactScore](data)
	case TagStudyHour:
		return decodeAs[StudyHour](data)
	case "":
		return nil, fmt.Errorf("condition has no type")
	}
	return nil, fmt.Errorf("unknown condition type %q", head.Type)
}
