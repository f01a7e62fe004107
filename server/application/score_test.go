package application

import (
	"context"
	"math"
	"testing"
	"time"

	"singularity/server/domain"
)

func TestScoreKeeper_Accumulates(t *testing.T) {
	s, err := NewScoreKeeper(nil)
	if err != nil {
		t.Fatalf("NewScoreKeeper failed: %v", err)
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sessionID := domain.NewSessionID()
	entries := []ScoreEntry{
		{SessionID: sessionID, Kind: KindStar, BodyMass: 2.0, AttractorMass: 1.06},
		{SessionID: sessionID, Kind: KindPlanet, BodyMass: 1.0, AttractorMass: 1.08},
		{SessionID: sessionID, Kind: KindDebris, BodyMass: 0.5, AttractorMass: 1.084},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	score, ok := s.Score(sessionID)
	if !ok {
		t.Fatalf("score not found")
	}
	if score.AbsorbedCount != 3 {
		t.Errorf("AbsorbedCount = %d, want 3", score.AbsorbedCount)
	}
	want := 2.0*PayoutStar + 1.0*PayoutPlanet + 0.5*PayoutDebris
	if math.Abs(score.TotalPayout-want) > 1e-9 {
		t.Errorf("TotalPayout = %f, want %f", score.TotalPayout, want)
	}
	if score.LastMass != 1.084 {
		t.Errorf("LastMass = %f, want 1.084", score.LastMass)
	}
}

func TestScoreKeeper_Forget(t *testing.T) {
	s, err := NewScoreKeeper(nil)
	if err != nil {
		t.Fatalf("NewScoreKeeper failed: %v", err)
	}
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	sessionID := domain.NewSessionID()
	if err := s.Record(ctx, ScoreEntry{SessionID: sessionID, Kind: KindStar, BodyMass: 1.0}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := s.Stop(time.Second); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	s.Forget(sessionID)
	if _, ok := s.Score(sessionID); ok {
		t.Errorf("score still present after Forget")
	}
}
