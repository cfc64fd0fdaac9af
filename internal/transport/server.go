package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ohkbilal/certa/internal/assess"
	"github.com/ohkbilal/certa/internal/audit"
)

// #region hooks

// Recorder persists assessments. *audit.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, out assess.Output) (audit.Record, error)
	Get(ctx context.Context, runID string) (audit.Record, error)
}

// Archive stores assessment snapshots. *archive.Archiver satisfies it.
type Archive interface {
	Put(ctx context.Context, out assess.Output) (string, error)
}

// #endregion hooks

// #region server

// Server implements CompatibilityServer over an assessment engine.
// Assessment outcomes, including invalid and fail-closed ones, are OK
// responses; only malformed requests and persistence failures are errors.
type Server struct {
	engine  *assess.Engine
	rec     Recorder
	archive Archive
	log     *zap.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRecorder records every assessment before it is returned.
func WithRecorder(r Recorder) ServerOption { return func(s *Server) { s.rec = r } }

// WithArchive stores every assessment snapshot.
func WithArchive(a Archive) ServerOption { return func(s *Server) { s.archive = a } }

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) ServerOption { return func(s *Server) { s.log = l } }

// NewServer creates a server. A nil engine uses the default registry.
func NewServer(engine *assess.Engine, opts ...ServerOption) *Server {
	if engine == nil {
		engine = assess.NewEngine(nil)
	}
	s := &Server{engine: engine, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ CompatibilityServer = (*Server)(nil)

// Assess runs a full assessment. Request fields: fluid_id, temperature,
// unit, materials (list of strings).
func (s *Server) Assess(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	materials, err := stringList(in["materials"])
	if err != nil {
		return nil, err
	}

	out := s.engine.RunRaw(in["fluid_id"], in["temperature"], in["unit"], materials)
	hash, err := out.Hash()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "hash output: %v", err)
	}

	if s.rec != nil {
		if _, err := s.rec.Record(ctx, out); err != nil {
			s.log.Error("record assessment failed", zap.String("run_id", out.Context.RunID), zap.Error(err))
			return nil, status.Errorf(codes.Internal, "record assessment: %v", err)
		}
	}
	var key string
	if s.archive != nil {
		if key, err = s.archive.Put(ctx, out); err != nil {
			s.log.Error("archive assessment failed", zap.String("run_id", out.Context.RunID), zap.Error(err))
			return nil, status.Errorf(codes.Internal, "archive assessment: %v", err)
		}
	}

	s.log.Info("assessment served",
		zap.String("run_id", out.Context.RunID),
		zap.String("fluid_id", out.Context.FluidID),
		zap.String("regime", string(out.Context.PrimaryRegime)),
		zap.String("seal_state", string(out.Seal.State)),
		zap.String("fao_hash", hash),
	)

	resp := map[string]any{"output": out, "fao_hash": hash}
	if key != "" {
		resp["archive_key"] = key
	}
	return toStruct(resp)
}

// Evaluate scores a single material. Request fields: fluid_id,
// temperature, unit, material.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	m, ok := in["material"].(string)
	if !ok && in["material"] != nil {
		return nil, status.Error(codes.InvalidArgument, "material must be a string")
	}
	out := s.engine.RunRaw(in["fluid_id"], in["temperature"], in["unit"], []string{m})
	s.log.Debug("material evaluated",
		zap.String("run_id", out.Context.RunID),
		zap.String("material_id", m),
		zap.String("status", string(out.Materials[0].Status)))
	return toStruct(map[string]any{
		"context":       out.Context,
		"verdict":       out.Materials[0],
		"recommendable": s.engine.Evaluator().IsMetalRecommendable(m, out.Context.PrimaryRegime),
	})
}

// GetAssessment returns a recorded assessment by run_id.
func (s *Server) GetAssessment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := requestFields(req)
	if err != nil {
		return nil, err
	}
	if s.rec == nil {
		return nil, status.Error(codes.FailedPrecondition, "assessment store not configured")
	}
	runID, _ := in["run_id"].(string)
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, err := s.rec.Get(ctx, runID)
	if errors.Is(err, audit.ErrNotFound) {
		return nil, status.Errorf(codes.NotFound, "assessment %s not found", runID)
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get assessment: %v", err)
	}
	return toStruct(map[string]any{"record": rec})
}

// #endregion server

// #region grpc-server

// NewGRPCServer builds a grpc.Server with srv registered and a logging
// interceptor installed.
func NewGRPCServer(srv *Server, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(loggingInterceptor(srv.log))}, opts...)
	g := grpc.NewServer(opts...)
	RegisterCompatibilityServer(g, srv)
	return g
}

// Serve runs g on lis until ctx is cancelled, then stops gracefully.
func Serve(ctx context.Context, g *grpc.Server, lis net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- g.Serve(lis) }()
	select {
	case <-ctx.Done():
		g.GracefulStop()
		<-errc
		return nil
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	}
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("rpc",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

// #endregion grpc-server

// #region helpers
func requestFields(req *structpb.Struct) (map[string]any, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request struct is required")
	}
	return req.AsMap(), nil
}

func stringList(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "materials must be a list")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "materials[%d] must be a string", i)
		}
		out = append(out, s)
	}
	return out, nil
}

// toStruct converts v to a Struct through its JSON form so field names
// follow the json tags of the domain types.
func toStruct(v map[string]any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "unmarshal response: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return st, nil
}

// fromStruct decodes a Struct into v through its JSON form.
func fromStruct(st *structpb.Struct, v any) error {
	b, err := json.Marshal(st.AsMap())
	if err != nil {
		return fmt.Errorf("marshal struct: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("unmarshal struct: %w", err)
	}
	return nil
}

// #endregion helpers
