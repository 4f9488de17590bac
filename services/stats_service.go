package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"quizhub/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// QuizStats aggregates completed attempts for one quiz. Score figures are
// percentages of the quiz's current maximum score, rounded to two decimals.
type QuizStats struct {
	QuizID        uint    `json:"quiz_id"`
	QuizTitle     string  `json:"quiz_title"`
	TotalAttempts int     `json:"total_attempts"`
	AverageScore  float64 `json:"average_score"`
	PassRate      float64 `json:"pass_rate"`
	AverageTime   float64 `json:"average_time"`
}

// StatsCache keeps computed quiz statistics in Redis for a short TTL.
// Every operation is best-effort: Redis being unreachable only costs a
// recomputation, never a failed request. A nil cache disables caching.
type StatsCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{redis: client, ttl: ttl}
}

func statsKey(quizID uint) string {
	return fmt.Sprintf("quiz:stats:%d", quizID)
}

func (c *StatsCache) Get(quizID uint) *QuizStats {
	if c == nil || c.redis == nil {
		return nil
	}
	data, err := c.redis.Get(context.Background(), statsKey(quizID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Redis error reading stats for quiz %d: %v", quizID, err)
		}
		return nil
	}

	var stats QuizStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		log.Printf("Failed to unmarshal cached stats for quiz %d: %v", quizID, err)
		return nil
	}
	return &stats
}

func (c *StatsCache) Set(quizID uint, stats *QuizStats) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		log.Printf("Failed to marshal stats for quiz %d: %v", quizID, err)
		return
	}
	if err := c.redis.Set(context.Background(), statsKey(quizID), data, c.ttl).Err(); err != nil {
		log.Printf("Redis error storing stats for quiz %d: %v", quizID, err)
	}
}

// Invalidate drops the cached stats for a quiz. Called after every write that
// can change the aggregates: answer submission, attempt deletion, quiz or
// question edits.
func (c *StatsCache) Invalidate(quizID uint) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Del(context.Background(), statsKey(quizID)).Err(); err != nil {
		log.Printf("Redis error invalidating stats for quiz %d: %v", quizID, err)
	}
}

type StatsService struct {
	db    *gorm.DB
	cache *StatsCache
}

func NewStatsService(db *gorm.DB, cache *StatsCache) *StatsService {
	return &StatsService{db: db, cache: cache}
}

// GetQuizStats computes aggregates over a quiz's completed attempts. The max
// score denominator always comes from the quiz's current questions, never an
// attempt-time snapshot.
func (s *StatsService) GetQuizStats(quizID uint) (*QuizStats, error) {
	if stats := s.cache.Get(quizID); stats != nil {
		return stats, nil
	}

	var quiz models.Quiz
	if err := s.db.First(&quiz, quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrQuizNotFound
		}
		return nil, fmt.Errorf("fetching quiz %d: %w", quizID, err)
	}

	var attempts []models.QuizAttempt
	if err := s.db.Where("quiz_id = ? AND is_completed = ?", quizID, true).
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("fetching attempts for quiz %d: %w", quizID, err)
	}

	stats := &QuizStats{
		QuizID:    quizID,
		QuizTitle: quiz.Title,
	}

	if len(attempts) == 0 {
		s.cache.Set(quizID, stats)
		return stats, nil
	}

	maxScore, err := quizMaxScore(s.db, quizID)
	if err != nil {
		return nil, err
	}

	totalAttempts := len(attempts)
	totalScore := 0
	totalTime := 0
	passed := 0
	for _, attempt := range attempts {
		totalScore += attempt.Score
		totalTime += attempt.TimeTaken
		if maxScore > 0 && float64(attempt.Score)/float64(maxScore)*100 >= passThreshold {
			passed++
		}
	}

	stats.TotalAttempts = totalAttempts
	if maxScore > 0 {
		stats.AverageScore = round2(float64(totalScore) / float64(totalAttempts) / float64(maxScore) * 100)
	}
	stats.PassRate = round2(float64(passed) / float64(totalAttempts) * 100)
	stats.AverageTime = round2(float64(totalTime) / float64(totalAttempts))

	log.Printf("Computed stats for quiz %d over %d attempts", quizID, totalAttempts)
	s.cache.Set(quizID, stats)
	return stats, nil
}

// quizMaxScore sums the point values of a quiz's current questions.
func quizMaxScore(db *gorm.DB, quizID uint) (int, error) {
	var maxScore int
	err := db.Model(&models.Question{}).
		Where("quiz_id = ?", quizID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&maxScore).Error
	if err != nil {
		return 0, fmt.Errorf("summing points for quiz %d: %w", quizID, err)
	}
	return maxScore, nil
}
