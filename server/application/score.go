package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"singularity/internal/worker"
	"singularity/server/domain"
)

// ScoreEntry は吸収完了1件分のスコア記録です。
type ScoreEntry struct {
	SessionID     domain.SessionID
	Kind          BodyState
	BodyMass      float64
	AttractorMass float64
}

// SessionScore はセッション単位の集計結果です。
type SessionScore struct {
	AbsorbedCount uint32
	TotalPayout   float64
	LastMass      float64
}

// ScoreKeeper は全セッションのスコアを集計します。
// 複数ルームのtickゴルーチンから記録が届くため、書き込みは
// worker.Loopの単一コンシューマに直列化しています。
type ScoreKeeper struct {
	loop *worker.Loop[ScoreEntry]

	mu     sync.RWMutex
	scores map[domain.SessionID]*SessionScore
}

func NewScoreKeeper(logger *slog.Logger) (*ScoreKeeper, error) {
	s := &ScoreKeeper{
		scores: make(map[domain.SessionID]*SessionScore),
	}
	loop, err := worker.New(worker.Config[ScoreEntry]{
		Handler: worker.HandlerFunc[ScoreEntry](s.apply),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	s.loop = loop
	return s, nil
}

func (s *ScoreKeeper) Start(ctx context.Context) error {
	return s.loop.Start(ctx)
}

func (s *ScoreKeeper) Stop(timeout time.Duration) error {
	return s.loop.DrainTimeout(timeout)
}

// Record は吸収イベントを集計キューへ投入します。
func (s *ScoreKeeper) Record(ctx context.Context, entry ScoreEntry) error {
	return s.loop.Submit(ctx, entry)
}

func (s *ScoreKeeper) apply(entry ScoreEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	score, ok := s.scores[entry.SessionID]
	if !ok {
		score = &SessionScore{}
		s.scores[entry.SessionID] = score
	}
	score.AbsorbedCount++
	score.TotalPayout += entry.BodyMass * entry.Kind.PayoutFactor()
	score.LastMass = entry.AttractorMass
	return nil
}

// Score は集計値のコピーを返します。
func (s *ScoreKeeper) Score(sessionID domain.SessionID) (SessionScore, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	score, ok := s.scores[sessionID]
	if !ok {
		return SessionScore{}, false
	}
	return *score, true
}

// Forget はセッション離脱時に集計を破棄します。
func (s *ScoreKeeper) Forget(sessionID domain.SessionID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scores, sessionID)
}
