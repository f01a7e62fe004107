package application

import (
	"math"
	"math/rand"
)

// Population はボディ数をゲームプレイに適した帯域に保つ管理者です。
// スポーンと消失処理はベストエフォートであり、失敗してもティックは継続します。
type Population struct {
	field *Field
	rng   *rand.Rand
}

func NewPopulation(field *Field, rng *rand.Rand) *Population {
	return &Population{field: field, rng: rng}
}

// Cull は吸収済みボディと、フィールド中心から離れすぎたボディを取り除きます。
// 離れすぎたボディは消失扱いで、質量ペイアウトは発生しません。
func (p *Population) Cull() (absorbed, lost int) {
	lostDistance := p.field.Bounds().Diagonal() * LostDistanceFactor
	p.field.ForEach(func(b *Body) {
		if b.State.IsAbsorbed() {
			p.field.Remove(b.ID)
			absorbed++
			return
		}
		if b.State.IsActive() && b.Position.Length() > lostDistance {
			p.field.Remove(b.ID)
			lost++
		}
	})
	return absorbed, lost
}

// Replenish は低水位を割ったらバッチスポーンし、水位が足りていても
// 一定ティックごとに少量補充して長時間セッションの変化を保ちます。
func (p *Population) Replenish(tick uint64) int {
	count := p.field.Count()
	if count < MinBodyCount {
		deficit := DesiredBodyCount - count
		batch := deficit
		if batch < SpawnBatchMin {
			batch = SpawnBatchMin
		}
		if batch > SpawnBatchMax {
			batch = SpawnBatchMax
		}
		return p.SpawnBatch(batch)
	}
	if tick > 0 && tick%TopUpInterval == 0 && count < DesiredBodyCount {
		return p.SpawnBatch(TopUpBatch)
	}
	return 0
}

// SpawnBatch は最大n体をスポーンし、実際に配置できた数を返します。
func (p *Population) SpawnBatch(n int) int {
	spawned := 0
	for i := 0; i < n; i++ {
		if p.spawnOne() != nil {
			spawned++
		}
	}
	return spawned
}

func (p *Population) spawnOne() *Body {
	state, mass := p.rollKind()

	// 惑星は一定確率で既存の恒星の衛星としてスポーンする
	if state.Kind() == KindPlanet && p.rng.Float64() < OrbitChildChance {
		if star := p.pickStar(); star != nil {
			return p.spawnOrbitChild(star, mass)
		}
	}

	bounds := p.field.Bounds()
	fieldRadius := bounds.Diagonal() / 2

	// フィールド外周のリング上に配置する
	r := fieldRadius * (SpawnRingInnerFactor + p.rng.Float64()*(SpawnRingOuterFactor-SpawnRingInnerFactor))
	angle := p.rng.Float64() * 2 * math.Pi
	position := Vec3{
		X: math.Cos(angle) * r,
		Y: math.Sin(angle) * r,
		Z: (p.rng.Float64()*2 - 1) * bounds.DepthSpread / 2,
	}

	// 中心周りの接線方向を主成分に、動径方向のゆらぎを少し混ぜる
	speed := OrbitSpeedFactor / math.Sqrt(r)
	tangent := Vec3{-math.Sin(angle), math.Cos(angle), 0}
	if p.rng.Float64() < 0.5 {
		tangent = tangent.Scale(-1)
	}
	radial := Vec3{-math.Cos(angle), -math.Sin(angle), 0}
	velocity := tangent.Scale(speed).Add(radial.Scale(speed * RadialJitter * p.rng.Float64()))

	return p.field.Spawn(state, mass, position, velocity)
}

func (p *Population) rollKind() (BodyState, float64) {
	u := p.rng.Float64()
	switch {
	case u < StarWeight:
		return KindStar, StarMassMin + p.rng.Float64()*(StarMassMax-StarMassMin)
	case u < StarWeight+PlanetWeight:
		return KindPlanet, PlanetMassMin + p.rng.Float64()*(PlanetMassMax-PlanetMassMin)
	default:
		return KindDebris, DebrisMassMin + p.rng.Float64()*(DebrisMassMax-DebrisMassMin)
	}
}

// pickStar はActiveな恒星を1体ランダムに選びます。いなければnilです。
func (p *Population) pickStar() *Body {
	var stars []*Body
	p.field.ForEach(func(b *Body) {
		if b.State.Kind() == KindStar && b.State.IsActive() {
			stars = append(stars, b)
		}
	})
	if len(stars) == 0 {
		return nil
	}
	return stars[p.rng.Intn(len(stars))]
}

func (p *Population) spawnOrbitChild(parent *Body, mass float64) *Body {
	radius := OrbitChildRadiusMin + p.rng.Float64()*(OrbitChildRadiusMax-OrbitChildRadiusMin)
	phase := p.rng.Float64() * 2 * math.Pi
	position := parent.Position.Add(Vec3{
		X: math.Cos(phase) * radius,
		Y: math.Sin(phase) * radius,
	})

	body := p.field.Spawn(KindPlanet, mass, position, Vec3{})
	if body == nil {
		return nil
	}
	body.Parent = parent.ID
	body.OrbitRadius = radius
	body.OrbitSpeed = 0.8 + p.rng.Float64()*0.8
	if p.rng.Float64() < 0.5 {
		body.OrbitSpeed = -body.OrbitSpeed
	}
	body.OrbitPhase = phase
	return body
}
