package application

import "time"

// ゲームフィールとバランス調整用の定数群。
// 物理的な正しさよりも見た目の気持ちよさを優先してチューニングしている。
const (
	TickRate     = 60
	TickInterval = time.Second / TickRate

	// --- フィールド ---
	DefaultFieldWidth  = 400.0 // X方向の論理サイズ（原点中心）
	DefaultFieldHeight = 240.0 // Y方向の論理サイズ（原点中心）
	DefaultDepthSpread = 40.0  // Z方向のスポーン幅（±）
	LostDistanceFactor = 1.25  // フィールド対角 × この倍率を超えたら消失扱い

	// --- アトラクター（ブラックホール） ---
	InitialAttractorMass = 1.0
	AttractorRadiusScale = 1.2  // radius = cbrt(mass) * scale
	TargetLerpRate       = 4.0  // 目標位置への指数平滑レート [1/s]
	TargetEpsilon        = 0.05 // これ以下の平面距離なら移動しない

	// --- 引力の法則 ---
	GravityConstant    = 40.0 // ゲームプレイ用の重力定数（物理値ではない）
	ForceEpsilon       = 0.1  // 特異点ガード。これ未満の距離ではゼロベクトル
	EventHorizonScale  = 6.0  // 事象の地平面 = アトラクター半径 × この倍率
	HorizonBoostGain   = 3.0  // 地平面近傍での吸い込みブースト係数
	FarBlendStart      = 30.0 // 逆二乗→逆一乗ブレンドの開始距離
	FarBlendEnd        = 50.0 // ブレンド完了距離
	LongRangeSoftening = 12.0 // 逆一乗項のスケール（遠距離の減衰をなだらかに）
	MinForceFloor      = 0.15 // 力の下限 = MinForceFloor × 対象質量
	DepthEmphasisGain  = 1.6  // 平面上で重なっている時のZ成分増幅
	DepthAlignFactor   = 1.5  // 平面距離がアトラクター半径×この値未満なら「重なり」

	// --- ボディの積分 ---
	MinAcceleration    = 0.02 // これ未満の加速度にはアトラクター方向の補助を足す
	AccelerationAssist = 0.05 // 補助加速度の大きさ
	SlowSpeedThreshold = 0.3  // これ未満の速度にブーストを掛ける
	SlowSpeedBoost     = 1.05 // 低速時の速度倍率
	NudgeChance        = 0.01 // 1ステップあたりの垂直ナッジ確率
	NudgeSpeed         = 0.5  // ナッジで加わる速度
	MaxBodySpeed       = 60.0 // 速度上限
	SpeedDamping       = 0.9  // 上限超過時の減衰係数

	// --- 吸収 ---
	AbsorbGrowthExponent = 0.1 // 吸収半径 = 半径 × mass^この指数 + ボディ半径
	DepthBehindBonus     = 0.5 // 奥側のボディへの吸収半径ボーナス（最大+50%）
	DepthBehindRange     = 20.0
	DepthAbsorbFactor    = 2.0 // 深度方向の吸収範囲 = 半径 × この値
	DepthAbsorbCap       = 8.0 // 深度方向の吸収範囲の上限
	LooseAbsorbFactor    = 1.6 // 3D距離によるゆるい吸収判定の倍率
	AbsorbDuration       = 1.5 // 吸収アニメーションの長さ [s]
	SpiralRadius         = 2.0 // 吸収スパイラルの初期半径
	SpiralTurns          = 2.0 // 吸収中の周回数

	// --- 吸収ペイアウト（種別ごとの質量換算率）---
	PayoutStar   = 0.03
	PayoutPlanet = 0.02
	PayoutDebris = 0.008

	// --- 個体数管理 ---
	DesiredBodyCount = 60
	MinBodyCount     = 25
	SpawnBatchMin    = 5
	SpawnBatchMax    = 15
	TopUpInterval    = 300 // このティック数ごとに少量補充
	TopUpBatch       = 2

	// --- スポーン ---
	SpawnRingInnerFactor = 0.55 // スポーンリング内径 = フィールド半径 × この値
	SpawnRingOuterFactor = 1.0
	OrbitSpeedFactor     = 9.0  // 接線速度 = factor / sqrt(距離)
	RadialJitter         = 0.2  // 接線速度に混ぜる動径方向成分の比率
	OrbitChildChance     = 0.25 // 惑星が恒星の衛星としてスポーンする確率
	OrbitChildRadiusMin  = 4.0
	OrbitChildRadiusMax  = 10.0

	// --- ボディの質量レンジ ---
	StarMassMin   = 1.5
	StarMassMax   = 4.0
	PlanetMassMin = 0.4
	PlanetMassMax = 1.2
	DebrisMassMin = 0.05
	DebrisMassMax = 0.3

	// --- スポーン種別の重み ---
	StarWeight   = 0.6
	PlanetWeight = 0.3 // 残りはデブリ
)
