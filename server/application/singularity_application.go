package application

import (
	"context"
	"log/slog"

	"singularity/server/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SingularityApplication はワイヤープロトコルとシミュレーションの橋渡しです。
// Roomのtickゴルーチンからのみ呼ばれるため、内部状態にロックはありません。
type SingularityApplication struct {
	session *GameSession
	scores  *ScoreKeeper
	tracer  trace.Tracer

	owner  domain.SessionID
	seq    uint16
	events []AbsorptionEvent

	pendingReport *FinalReport
}

// ApplicationConfig はSingularityApplicationの生成パラメータです。
type ApplicationConfig struct {
	Bounds Bounds
	Seed   int64
	Scores *ScoreKeeper
	Logger *slog.Logger
}

func NewSingularityApplication(cfg ApplicationConfig) (*SingularityApplication, error) {
	app := &SingularityApplication{
		scores: cfg.Scores,
		tracer: otel.Tracer("singularity/server/application"),
	}
	bounds := cfg.Bounds
	if bounds == (Bounds{}) {
		bounds = DefaultBounds()
	}
	session, err := NewGameSession(SessionConfig{
		Bounds: bounds,
		Seed:   cfg.Seed,
		Logger: cfg.Logger,
		OnAbsorption: func(ev AbsorptionEvent) {
			app.events = append(app.events, ev)
		},
	})
	if err != nil {
		return nil, err
	}
	app.session = session
	return app, nil
}

func (app *SingularityApplication) HandleJoin(ctx context.Context, sessionID domain.SessionID) error {
	if app.owner.IsEmpty() {
		app.owner = sessionID
	}
	slog.InfoContext(ctx, "session joined", "sessionID", sessionID)

	if err := app.session.Start(); err != nil && err != ErrSessionRunning {
		return err
	}
	return nil
}

func (app *SingularityApplication) HandleLeave(ctx context.Context, sessionID domain.SessionID) error {
	slog.InfoContext(ctx, "session left", "sessionID", sessionID)
	if sessionID == app.owner {
		report := app.session.End()
		slog.InfoContext(ctx, "session frozen",
			"finalMass", report.FinalMass,
			"absorbedCount", report.AbsorbedCount,
		)
		if app.scores != nil {
			app.scores.Forget(sessionID)
		}
	}
	return nil
}

func (app *SingularityApplication) HandleMessage(ctx context.Context, sessionID domain.SessionID, data []byte) error {
	header, err := domain.ParseHeader(data)
	if err != nil {
		return err
	}

	payloadData := data[domain.HeaderSize:]
	payloadHeader, err := domain.ParsePayloadHeader(payloadData)
	if err != nil {
		return err
	}

	payload := payloadData[domain.PayloadHeaderSize:]
	switch payloadHeader.DataType {
	case domain.DataTypeInput:
		return app.handleInput(ctx, sessionID, header, payloadHeader.SubType, payload)
	case domain.DataTypeControl:
		return app.handleControl(ctx, sessionID, payloadHeader.SubType)
	default:
		slog.WarnContext(ctx, "unknown data type", "dataType", payloadHeader.DataType)
		return nil
	}
}

func (app *SingularityApplication) handleInput(ctx context.Context, sessionID domain.SessionID, header *domain.Header, subType uint8, data []byte) error {
	switch domain.InputSubType(subType) {
	case domain.InputSubTypePointer:
		pointer, err := domain.ParsePointerPayload(data)
		if err != nil {
			return err
		}
		slog.DebugContext(ctx, "handleInput:pointer",
			"sessionID", sessionID,
			"seq", header.Seq,
			"targetX", pointer.TargetX,
			"targetY", pointer.TargetY,
		)
		app.session.SetTarget(float64(pointer.TargetX), float64(pointer.TargetY))
	default:
		slog.WarnContext(ctx, "unknown input subtype", "subType", subType)
	}
	return nil
}

func (app *SingularityApplication) handleControl(ctx context.Context, sessionID domain.SessionID, subType uint8) error {
	switch domain.ControlSubType(subType) {
	case domain.ControlSubTypeStart:
		if err := app.session.Start(); err != nil && err != ErrSessionRunning {
			slog.ErrorContext(ctx, "session start failed", "sessionID", sessionID, "error", err)
			return err
		}
	case domain.ControlSubTypeRestart:
		if err := app.session.Reset(); err != nil {
			slog.ErrorContext(ctx, "session restart failed", "sessionID", sessionID, "error", err)
			return err
		}
	case domain.ControlSubTypeEnd:
		report := app.session.End()
		app.pendingReport = &report
	default:
		slog.WarnContext(ctx, "unknown control subtype", "subType", subType)
	}
	return nil
}

// Tick はシミュレーションを1ステップ進め、配信するフレーム群を返します。
// スナップショットを毎ティック、吸収イベントとゲーム終了は発生時のみ送ります。
func (app *SingularityApplication) Tick(ctx context.Context) [][]byte {
	if app.owner.IsEmpty() {
		return nil
	}
	if !app.session.Running() && app.pendingReport == nil {
		return nil
	}

	ctx, span := app.tracer.Start(ctx, "simulation.tick")
	defer span.End()

	app.session.Step(1.0 / TickRate)

	attractor, bodies := app.session.Snapshot()
	span.SetAttributes(
		attribute.Int64("tick", int64(app.session.Tick())),
		attribute.Int("bodies", len(bodies)),
		attribute.Int("absorptions", len(app.events)),
	)

	frames := make([][]byte, 0, 1+len(app.events))
	app.seq++
	frames = append(frames, domain.EncodeSnapshotMessage(app.owner, app.seq, buildSnapshot(attractor, bodies)))

	for _, ev := range app.events {
		app.seq++
		frames = append(frames, domain.EncodeAbsorptionEventMessage(app.owner, app.seq, &domain.AbsorptionEventPayload{
			Kind:          uint8(ev.Kind),
			BodyMass:      float32(ev.BodyMass),
			AttractorMass: float32(ev.AttractorMass),
		}))
		if app.scores != nil {
			if err := app.scores.Record(ctx, ScoreEntry{
				SessionID:     app.owner,
				Kind:          ev.Kind,
				BodyMass:      ev.BodyMass,
				AttractorMass: ev.AttractorMass,
			}); err != nil {
				slog.WarnContext(ctx, "score record failed", "error", err)
			}
		}
	}
	app.events = app.events[:0]

	if app.pendingReport != nil {
		app.seq++
		frames = append(frames, domain.EncodeGameOverMessage(app.owner, app.seq, &domain.GameOverPayload{
			FinalMass:     float32(app.pendingReport.FinalMass),
			AbsorbedCount: app.pendingReport.AbsorbedCount,
		}))
		app.pendingReport = nil
	}

	return frames
}

func buildSnapshot(attractor AttractorView, bodies []BodyView) *domain.SnapshotPayload {
	snapshot := &domain.SnapshotPayload{
		Attractor: domain.SnapshotAttractor{
			Position: domain.Position3D{
				X: float32(attractor.Position.X),
				Y: float32(attractor.Position.Y),
				Z: float32(attractor.Position.Z),
			},
			Mass:   float32(attractor.Mass),
			Radius: float32(attractor.Radius),
		},
		Bodies: make([]domain.SnapshotBody, 0, len(bodies)),
	}
	for _, b := range bodies {
		snapshot.Bodies = append(snapshot.Bodies, domain.SnapshotBody{
			ID:    uint16(b.ID),
			State: uint8(b.State),
			Position: domain.Position3D{
				X: float32(b.Position.X),
				Y: float32(b.Position.Y),
				Z: float32(b.Position.Z),
			},
			Scale: float32(b.Scale),
		})
	}
	return snapshot
}
