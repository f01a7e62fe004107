package application

import (
	"math"
	"math/rand/v2"

	"singularity/server/domain"
)

const (
	botRetargetNoise   = 6.0  // 目標位置に加えるゆらぎ [world units]
	botDistancePenalty = 0.05 // 遠い獲物を避ける度合い
)

// BotController はスナップショットから次のポインター目標を決めるボットAIです。
// ボットごとに異なる個性パラメータを持ちます。
type BotController struct {
	Greed    float64 // 獲物の種別価値をどれだけ重視するか
	Laziness float64 // 目標を据え置く確率
}

// NewBotController はランダムな個性を持つボットAIを生成します。
func NewBotController() *BotController {
	return &BotController{
		Greed:    0.5 + rand.Float64()*1.5, // 0.5〜2.0
		Laziness: 0.3 + rand.Float64()*0.5, // 0.3〜0.8
	}
}

// Decide は次に追うべき目標座標を返します。
// 据え置きの場合や獲物が見つからない場合は ok=false です。
func (r *BotController) Decide(attractor domain.SnapshotAttractor, bodies []domain.SnapshotBody) (x, y float32, ok bool) {
	if rand.Float64() < r.Laziness {
		return 0, 0, false
	}

	var best *domain.SnapshotBody
	bestScore := math.Inf(-1)
	for i := range bodies {
		b := &bodies[i]
		if !BodyState(b.State).IsActive() {
			continue
		}
		dx := float64(b.Position.X - attractor.Position.X)
		dy := float64(b.Position.Y - attractor.Position.Y)
		score := r.kindValue(BodyState(b.State))*r.Greed - math.Hypot(dx, dy)*botDistancePenalty
		if score > bestScore {
			bestScore = score
			best = b
		}
	}
	if best == nil {
		return 0, 0, false
	}

	noiseX := (rand.Float64()*2 - 1) * botRetargetNoise
	noiseY := (rand.Float64()*2 - 1) * botRetargetNoise
	return best.Position.X + float32(noiseX), best.Position.Y + float32(noiseY), true
}

// kindValue は獲物の種別価値です。ペイアウト比率に合わせています。
func (r *BotController) kindValue(s BodyState) float64 {
	switch s.Kind() {
	case KindStar:
		return 3.0
	case KindPlanet:
		return 2.0
	default:
		return 1.0
	}
}
