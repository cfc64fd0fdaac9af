package transport

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ohkbilal/certa/internal/assess"
	"github.com/ohkbilal/certa/internal/audit"
	"github.com/ohkbilal/certa/internal/material"
	"github.com/ohkbilal/certa/internal/runctx"
)

// #region types

// AssessResult is the decoded response of an Assess call.
type AssessResult struct {
	Output     assess.Output `json:"output"`
	FAOHash    string        `json:"fao_hash"`
	ArchiveKey string        `json:"archive_key,omitempty"`
}

// EvaluateResult is the decoded response of an Evaluate call.
type EvaluateResult struct {
	Context       runctx.Snapshot  `json:"context"`
	Verdict       material.Verdict `json:"verdict"`
	Recommendable bool             `json:"recommendable"`
}

// #endregion types

// #region client-struct
// Client wraps the gRPC connection to a CERTA server.
type Client struct {
	conn   *grpc.ClientConn
	client CompatibilityClient
}

// #endregion client-struct

// #region constructor

// NewClient connects to addr without transport security. Extra dial
// options are appended, which tests use to route through bufconn.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, client: NewCompatibilityClient(conn)}, nil
}

// NewClientWithService creates a Client with an injected service
// implementation. Used for testing without a real gRPC connection.
func NewClientWithService(svc CompatibilityClient) *Client {
	return &Client{client: svc}
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region assess

// Assess sends a typed request. Use AssessRaw to forward loosely typed
// values such as string temperatures or nulls.
func (c *Client) Assess(ctx context.Context, req assess.Request) (AssessResult, error) {
	return c.AssessRaw(ctx, req.FluidID, req.Temperature, req.Unit, req.Materials)
}

// AssessRaw sends the four API fields as given.
func (c *Client) AssessRaw(ctx context.Context, fluidID, temperature, unit any, materials []string) (AssessResult, error) {
	list := make([]any, len(materials))
	for i, m := range materials {
		list[i] = m
	}
	in, err := structpb.NewStruct(map[string]any{
		"fluid_id":    fluidID,
		"temperature": temperature,
		"unit":        unit,
		"materials":   list,
	})
	if err != nil {
		return AssessResult{}, fmt.Errorf("build assess request: %w", err)
	}
	resp, err := c.client.Assess(ctx, in)
	if err != nil {
		return AssessResult{}, fmt.Errorf("assess rpc: %w", err)
	}
	var out AssessResult
	if err := fromStruct(resp, &out); err != nil {
		return AssessResult{}, fmt.Errorf("decode assess response: %w", err)
	}
	return out, nil
}

// #endregion assess

// #region evaluate

// Evaluate scores one material for a fluid and temperature.
func (c *Client) Evaluate(ctx context.Context, fluidID string, temperature float64, unit, materialID string) (EvaluateResult, error) {
	in, err := structpb.NewStruct(map[string]any{
		"fluid_id":    fluidID,
		"temperature": temperature,
		"unit":        unit,
		"material":    materialID,
	})
	if err != nil {
		return EvaluateResult{}, fmt.Errorf("build evaluate request: %w", err)
	}
	resp, err := c.client.Evaluate(ctx, in)
	if err != nil {
		return EvaluateResult{}, fmt.Errorf("evaluate rpc: %w", err)
	}
	var out EvaluateResult
	if err := fromStruct(resp, &out); err != nil {
		return EvaluateResult{}, fmt.Errorf("decode evaluate response: %w", err)
	}
	return out, nil
}

// #endregion evaluate

// #region get-assessment

// GetAssessment fetches a recorded assessment.
func (c *Client) GetAssessment(ctx context.Context, runID string) (audit.Record, error) {
	in, err := structpb.NewStruct(map[string]any{"run_id": runID})
	if err != nil {
		return audit.Record{}, fmt.Errorf("build get request: %w", err)
	}
	resp, err := c.client.GetAssessment(ctx, in)
	if err != nil {
		return audit.Record{}, fmt.Errorf("get assessment rpc: %w", err)
	}
	var out struct {
		Record audit.Record `json:"record"`
	}
	if err := fromStruct(resp, &out); err != nil {
		return audit.Record{}, fmt.Errorf("decode get response: %w", err)
	}
	return out.Record, nil
}

// #endregion get-assessment
