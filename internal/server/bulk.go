package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/batch"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/inspect"
	"github.com/joseph-ayodele/hr-bulk/internal/matching"
	"github.com/joseph-ayodele/hr-bulk/internal/pipeline"
	"github.com/joseph-ayodele/hr-bulk/internal/report"
)

// Runner executes one bulk invocation; *pipeline.Bulk satisfies it.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Outcome, error)
}

type Config struct {
	Dictionaries matching.Dictionaries
	Strategy     matching.Strategy
	// AdminID is used when a request carries no admin_id.
	AdminID int64
}

type BulkService struct {
	runner Runner
	cfg    Config
	logger *slog.Logger
}

func NewBulkService(runner Runner, cfg Config, logger *slog.Logger) *BulkService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Dictionaries == nil {
		cfg.Dictionaries = matching.DefaultDictionaries()
	}
	return &BulkService{runner: runner, cfg: cfg, logger: logger}
}

// bulkRequest is the Struct payload every method accepts.
type bulkRequest struct {
	FilePath   string `json:"file_path"`
	Operation  string `json:"operation"`
	AdminID    int64  `json:"admin_id"`
	EmployerID int64  `json:"employer_id"`
}

// BulkResponse is what ImportEmployees and UpdateManagers return.
type BulkResponse struct {
	OperationID string              `json:"operation_id"`
	Operation   constants.Operation `json:"operation"`
	EmployerID  int64               `json:"employer_id"`
	Result      *batch.Result       `json:"result"`
	Leave       *batch.LeaveResult  `json:"leave,omitempty"`
	Summary     report.Summary      `json:"summary"`
	Artifacts   []string            `json:"artifacts"`
}

// InspectResponse carries the structure report for one file.
type InspectResponse struct {
	Operation constants.Operation `json:"operation"`
	Report    inspect.Report      `json:"report"`
}

// Inspect profiles a file and suggests column mappings. It never touches the store.
func (s *BulkService) Inspect(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(req.FilePath)
	if path == "" {
		return nil, common.InvalidArgumentError("file_path is required")
	}

	op := constants.OperationAuto
	if req.Operation != "" {
		parsed, ok := constants.ParseOperation(req.Operation)
		if !ok {
			return nil, common.InvalidArgumentErrorf("unknown operation %q", req.Operation)
		}
		op = parsed
	}
	if op.IsAuto() {
		// an undetectable file is still profiled, against the employee dictionary
		op = constants.OperationImportEmployees
		if detected, derr := pipeline.DetectOperation(path, s.cfg.Dictionaries); derr == nil {
			op = detected
		}
	}

	matcher := matching.NewMatcher(s.cfg.Dictionaries.For(op),
		matching.WithStrategy(s.cfg.Strategy),
		matching.WithLogger(s.logger),
	)
	rep := inspect.NewInspector(matcher, s.logger).Inspect(ctx, path)
	if !rep.Success {
		s.logger.WarnContext(ctx, "server.inspect.failed", "path", path, "error", rep.Error)
	}
	return toStruct(InspectResponse{Operation: op, Report: rep})
}

func (s *BulkService) ImportEmployees(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.run(ctx, constants.OperationImportEmployees, in)
}

func (s *BulkService) UpdateManagers(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.run(ctx, constants.OperationUpdateManagers, in)
}

func (s *BulkService) run(ctx context.Context, op constants.Operation, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := decodeRequest(in)
	if err != nil {
		return nil, err
	}
	path := strings.TrimSpace(req.FilePath)
	if path == "" {
		return nil, common.InvalidArgumentError("file_path is required")
	}
	adminID := req.AdminID
	if adminID == 0 {
		adminID = s.cfg.AdminID
	}
	if adminID <= 0 {
		return nil, common.InvalidArgumentError("admin_id is required")
	}

	s.logger.InfoContext(ctx, "server.run.started", "operation", op, "admin_id", adminID, "employer_id", req.EmployerID, "path", path)
	out, err := s.runner.Run(ctx, pipeline.Request{
		Operation:  op,
		FilePath:   path,
		AdminID:    adminID,
		EmployerID: req.EmployerID,
	})
	if err != nil {
		opID := ""
		if out != nil {
			opID = out.OperationID
		}
		s.logger.WarnContext(ctx, "server.run.failed", "operation", op, "operation_id", opID, "error", err)
		return nil, common.GRPCStatus(err)
	}
	s.logger.InfoContext(ctx, "server.run.done",
		"operation_id", out.OperationID,
		"success", out.Summary.SuccessCount,
		"failed", out.Summary.FailureCount,
	)

	return toStruct(BulkResponse{
		OperationID: out.OperationID,
		Operation:   out.Operation,
		EmployerID:  out.TenantID,
		Result:      out.Result,
		Leave:       out.Leave,
		Summary:     out.Summary,
		Artifacts:   out.Artifacts.Paths(),
	})
}

func decodeRequest(in *structpb.Struct) (bulkRequest, error) {
	var req bulkRequest
	if in == nil {
		return req, common.InvalidArgumentError("request body is required")
	}
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return req, common.InvalidArgumentErrorf("invalid request: %v", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, common.InvalidArgumentErrorf("invalid request: %v", err)
	}
	return req, nil
}

// toStruct converts v through its JSON form so the response keeps the pipeline's field names.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("encode response: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, common.InternalError(fmt.Sprintf("encode response: %v", err))
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalError(fmt.Sprintf("encode response: %v", err))
	}
	return st, nil
}
