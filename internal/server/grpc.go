package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/notes-summarizer/internal/common"
)

const SummaryServiceName = "notes.summary.v1.SummaryService"

// SummaryServiceServer is the gRPC summary API. Messages are google.protobuf.Struct
// values carrying the same JSON shapes as the REST API.
type SummaryServiceServer interface {
	Start(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Status(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func startHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SummaryServiceServer).Start(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + SummaryServiceName + "/Start"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SummaryServiceServer).Start(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func statusHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SummaryServiceServer).Status(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + SummaryServiceName + "/Status"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SummaryServiceServer).Status(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var SummaryServiceDesc = grpc.ServiceDesc{
	ServiceName: SummaryServiceName,
	HandlerType: (*SummaryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Start", Handler: startHandler},
		{MethodName: "Status", Handler: statusHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "notes/summary/v1/summary.proto",
}

// SummaryService implements SummaryServiceServer over a JobAPI.
type SummaryService struct {
	jobs        JobAPI
	logger      *slog.Logger
	waitTimeout time.Duration
}

func NewSummaryService(jobs JobAPI, logger *slog.Logger, waitTimeout time.Duration) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	if waitTimeout <= 0 {
		waitTimeout = 2 * time.Minute
	}
	return &SummaryService{jobs: jobs, logger: logger, waitTimeout: waitTimeout}
}

// Start expects {"text": string, "wait"?: bool} and returns {"jobId"[, "status"]}.
func (s *SummaryService) Start(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	id, err := s.jobs.Start(ctx, fields["text"].GetStringValue())
	if err != nil {
		return nil, common.ToGRPCError(err)
	}

	resp := StartResponse{JobID: id}
	if fields["wait"].GetBoolValue() {
		waitCtx, cancel := context.WithTimeout(ctx, s.waitTimeout)
		defer cancel()
		st, err := s.jobs.Wait(waitCtx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "grpc.start.wait_incomplete", "job_id", id, "error", err)
		}
		resp.Status = &st
	}
	return toStruct(resp)
}

// Status expects {"jobId": string} and returns the job status.
func (s *SummaryService) Status(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := req.GetFields()["jobId"].GetStringValue()
	if id == "" {
		return nil, common.InvalidArgumentError("jobId is required")
	}
	return toStruct(s.jobs.Status(id))
}

func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

// NewGRPCServer returns a server with the summary service, health and reflection registered.
func NewGRPCServer(jobs JobAPI, logger *slog.Logger, waitTimeout time.Duration) *grpc.Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(unaryLogger(logger)))
	s.RegisterService(&SummaryServiceDesc, NewSummaryService(jobs, logger, waitTimeout))

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(SummaryServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(s)
	return s
}

func unaryLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		ctx = common.WithRequestID(ctx, uuid.NewString())
		resp, err := handler(ctx, req)
		attrs := []any{"method", info.FullMethod, "elapsed_ms", time.Since(start).Milliseconds()}
		if err != nil {
			logger.WarnContext(ctx, "grpc.request", append(attrs, "error", fmt.Sprint(err))...)
		} else {
			logger.InfoContext(ctx, "grpc.request", attrs...)
		}
		return resp, err
	}
}
