package application

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

var (
	ErrSessionRunning     = errors.New("session already running")
	ErrSessionStartFailed = errors.New("session start failed")
)

// AbsorptionEvent は吸収完了1件の通知です。スコアや演出側が購読します。
type AbsorptionEvent struct {
	Kind          BodyState
	BodyMass      float64
	AttractorMass float64 // 加算後の質量
}

// FinalReport はセッション終了時の結果です。
type FinalReport struct {
	FinalMass     float64
	AbsorbedCount uint32
}

// SessionConfig はGameSessionの生成パラメータです。
type SessionConfig struct {
	Bounds Bounds
	// Seedが0の場合は現在時刻から初期化します。
	// テストでは固定シードを渡して決定的に動かせます。
	Seed         int64
	OnAbsorption func(AbsorptionEvent)
	Logger       *slog.Logger
}

// GameSession は1ゲームセッションのシミュレーション全体を保持します。
// すべての状態変更はStepを呼ぶ単一のゴルーチンから行う前提で、
// 内部にロックはありません。
type GameSession struct {
	bounds     Bounds
	field      *Field
	attractor  *Attractor
	population *Population
	rng        *rand.Rand
	logger     *slog.Logger

	tick    uint64
	running bool
	ended   bool

	onAbsorption func(AbsorptionEvent)
}

func NewGameSession(cfg SessionConfig) (*GameSession, error) {
	field, err := NewField(cfg.Bounds)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := rand.New(rand.NewSource(seed))
	return &GameSession{
		bounds:       cfg.Bounds,
		field:        field,
		attractor:    NewAttractor(InitialAttractorMass),
		population:   NewPopulation(field, rng),
		rng:          rng,
		logger:       logger,
		onAbsorption: cfg.OnAbsorption,
	}, nil
}

// Start はアトラクターと初期個体群を生成してティックを受け付ける状態にします。
// 初期個体群を1体も配置できなかった場合は開始せずエラーを返します。
func (g *GameSession) Start() error {
	if g.running && !g.ended {
		return ErrSessionRunning
	}
	g.attractor = NewAttractor(InitialAttractorMass)
	g.field.Clear()
	if g.population.SpawnBatch(DesiredBodyCount) == 0 {
		return ErrSessionStartFailed
	}
	g.tick = 0
	g.running = true
	g.ended = false
	return nil
}

// Reset は全ボディと吸収アニメーション状態を破棄して開始し直します。
// ポーリング駆動のタイマーしか持たないため、破棄後に古いアニメーションが
// 発火することはありません。
func (g *GameSession) Reset() error {
	g.running = false
	g.ended = false
	g.field.Clear()
	return g.Start()
}

// End はシミュレーションを凍結し、最終結果を返します。
// 以後のStepは何も変更しません。
func (g *GameSession) End() FinalReport {
	g.ended = true
	return FinalReport{
		FinalMass:     g.attractor.Mass,
		AbsorbedCount: g.attractor.AbsorbedCount(),
	}
}

func (g *GameSession) Running() bool {
	return g.running && !g.ended
}

func (g *GameSession) Tick() uint64 {
	return g.tick
}

// SetTarget はポインター入力からアトラクターの移動目標を設定します。
// フィールド境界へのクランプはAttractor側で行います。
func (g *GameSession) SetTarget(x, y float64) {
	g.attractor.SetTarget(x, y, g.bounds)
}

// AttractorView は描画用のアトラクター状態スナップショットです。
type AttractorView struct {
	Position Vec3
	Mass     float64
	Radius   float64
}

// BodyView は描画用のボディ状態スナップショットです。
type BodyView struct {
	ID       BodyID
	State    BodyState
	Position Vec3
	Scale    float64
}

// Snapshot は現在の状態の読み取り専用コピーを返します。
// Absorbed（除去待ち）のボディは含みません。
func (g *GameSession) Snapshot() (AttractorView, []BodyView) {
	attractor := AttractorView{
		Position: g.attractor.Position,
		Mass:     g.attractor.Mass,
		Radius:   g.attractor.Radius(),
	}
	bodies := make([]BodyView, 0, g.field.Count())
	g.field.ForEach(func(b *Body) {
		if b.State.IsAbsorbed() {
			return
		}
		bodies = append(bodies, BodyView{
			ID:       b.ID,
			State:    b.State,
			Position: b.Position,
			Scale:    b.RenderScale(),
		})
	})
	return attractor, bodies
}
