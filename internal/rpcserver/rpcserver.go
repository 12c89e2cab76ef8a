// Package rpcserver exposes calcengine.Evaluate over gRPC, using a
// hand-written service descriptor and a JSON wire codec rather than
// generated protobuf stubs — a deliberately smaller echo of the manual
// grpc.ServiceDesc + JSON-codec pattern the teacher's cmd/server uses for
// its own SQL service, giving the MCP-server-wrapper collaborator
// spec.md names as external a concrete, if thin, home.
package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"

	"github.com/planforge/calcengine/internal/calcerr"
	"github.com/planforge/calcengine/internal/model"
	"github.com/planforge/calcengine/internal/value"
)

// RegisterEvaluator lets the calling binary inject the real
// calcengine.Evaluate function without rpcserver importing the root
// package directly.
func RegisterEvaluator(fn func(context.Context, *model.Model) error) {
	evaluateFn = fn
}

var evaluateFn func(context.Context, *model.Model) error

// ValueDTO is the wire representation of a value.Value: internal Values
// carry unexported fields, so the wire format round-trips through this
// explicit struct instead of marshaling the internal type directly.
type ValueDTO struct {
	Kind string     `json:"kind"`
	Num  float64    `json:"num,omitempty"`
	Str  string     `json:"str,omitempty"`
	Bool bool       `json:"bool,omitempty"`
	Arr  []ValueDTO `json:"arr,omitempty"`
}

func valueToDTO(v value.Value) ValueDTO {
	switch v.Kind() {
	case value.NumberKind:
		return ValueDTO{Kind: "number", Num: v.RawNum()}
	case value.TextKind:
		return ValueDTO{Kind: "text", Str: v.Str()}
	case value.BooleanKind:
		return ValueDTO{Kind: "boolean", Bool: v.RawBool()}
	case value.DateKind:
		return ValueDTO{Kind: "date", Str: v.Str()}
	case value.ArrayKind:
		items := v.Items()
		out := make([]ValueDTO, len(items))
		for i, item := range items {
			out[i] = valueToDTO(item)
		}
		return ValueDTO{Kind: "array", Arr: out}
	default:
		return ValueDTO{Kind: "empty"}
	}
}

func dtoToValue(d ValueDTO) value.Value {
	switch d.Kind {
	case "number":
		return value.Num(d.Num)
	case "text":
		return value.Text(d.Str)
	case "boolean":
		return value.Bool(d.Bool)
	case "date":
		return value.Date(d.Str)
	case "array":
		items := make([]value.Value, len(d.Arr))
		for i, item := range d.Arr {
			items[i] = dtoToValue(item)
		}
		return value.Arr(items)
	default:
		return value.Nil
	}
}

// ScalarDTO is the wire representation of a model.Scalar.
type ScalarDTO struct {
	Name    string   `json:"name"`
	Literal *float64 `json:"literal,omitempty"`
	Formula string   `json:"formula,omitempty"`
	Value   ValueDTO `json:"value"`
}

// ColumnDTO is the wire representation of a model.Column.
type ColumnDTO struct {
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	Nums  []float64 `json:"nums,omitempty"`
	Strs  []string  `json:"strs,omitempty"`
	Bools []bool    `json:"bools,omitempty"`
}

// TableDTO is the wire representation of a model.Table.
type TableDTO struct {
	Name        string            `json:"name"`
	Columns     []ColumnDTO       `json:"columns"`
	RowFormulas map[string]string `json:"row_formulas,omitempty"`
}

// ModelDTO is the wire representation of an entire model.Model, used for
// both EvaluateRequest and EvaluateResponse.
type ModelDTO struct {
	Scalars []ScalarDTO `json:"scalars"`
	Tables  []TableDTO  `json:"tables"`
}

// ToDTO snapshots m into its wire representation.
func ToDTO(m *model.Model) ModelDTO {
	var out ModelDTO
	for _, name := range m.Scalars.Keys() {
		s, _ := m.Scalars.Get(name)
		out.Scalars = append(out.Scalars, ScalarDTO{
			Name: s.Name, Literal: s.Literal, Formula: s.Formula, Value: valueToDTO(s.Value),
		})
	}
	for _, name := range m.Tables.Keys() {
		t, _ := m.Tables.Get(name)
		td := TableDTO{Name: t.Name, RowFormulas: map[string]string{}}
		for _, colName := range t.Columns.Keys() {
			col, _ := t.Columns.Get(colName)
			td.Columns = append(td.Columns, ColumnDTO{
				Name: col.Name, Type: col.Type.String(), Nums: col.Nums, Strs: col.Strs, Bools: col.Bools,
			})
		}
		for _, rf := range t.RowFormulas.Keys() {
			formula, _ := t.RowFormulas.Get(rf)
			td.RowFormulas[rf] = formula
		}
		out.Tables = append(out.Tables, td)
	}
	return out
}

// FromDTO rebuilds a *model.Model from its wire representation.
func FromDTO(d ModelDTO) (*model.Model, error) {
	m := model.New()
	for _, s := range d.Scalars {
		var sc *model.Scalar
		switch {
		case s.Formula != "":
			sc = model.NewFormulaScalar(s.Name, s.Formula)
		case s.Literal != nil:
			sc = model.NewLiteralScalar(s.Name, *s.Literal)
		default:
			sc = &model.Scalar{Name: s.Name, Value: dtoToValue(s.Value)}
		}
		m.AddScalar(sc)
	}
	for _, td := range d.Tables {
		t := model.NewTable(td.Name)
		for _, cd := range td.Columns {
			col, err := columnFromDTO(cd)
			if err != nil {
				return nil, err
			}
			if err := t.AddColumn(col); err != nil {
				return nil, err
			}
		}
		for name, formula := range td.RowFormulas {
			t.AddRowFormula(name, formula)
		}
		m.AddTable(t)
	}
	return m, nil
}

func columnFromDTO(cd ColumnDTO) (*model.Column, error) {
	switch cd.Type {
	case "number":
		return model.NewNumberColumn(cd.Name, cd.Nums), nil
	case "text":
		return model.NewTextColumn(cd.Name, cd.Strs), nil
	case "boolean":
		return model.NewBooleanColumn(cd.Name, cd.Bools), nil
	case "date":
		return model.NewDateColumn(cd.Name, cd.Strs), nil
	default:
		return nil, fmt.Errorf("rpcserver: unknown column type %q for column %q", cd.Type, cd.Name)
	}
}

// EvaluateRequest carries a document already decoded into a ModelDTO by
// the caller's own loader; rpcserver never parses documents itself.
type EvaluateRequest struct {
	Model ModelDTO `json:"model"`
}

// EvaluateResponse mirrors the model back with computed values, or an
// error description if evaluation failed.
type EvaluateResponse struct {
	Model ModelDTO `json:"model,omitempty"`
	Error string   `json:"error,omitempty"`
}

// jsonCodec marshals gRPC messages as JSON instead of protobuf wire
// format, matching the teacher's own codec for its hand-rolled service.
type jsonCodec struct{}

func (jsonCodec) Name() string                       { return "json" }
func (jsonCodec) Marshal(v any) ([]byte, error)       { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Codec returns the JSON codec used by this service, for registration
// via encoding.RegisterCodec in the server binary.
func Codec() interface {
	Name() string
	Marshal(any) ([]byte, error)
	Unmarshal([]byte, any) error
} {
	return jsonCodec{}
}

// CalcService is the gRPC-facing interface this package registers.
type CalcService interface {
	Evaluate(context.Context, *EvaluateRequest) (*EvaluateResponse, error)
}

// server is the default CalcService: evaluate the submitted model and
// return it, or the structured error as text.
type server struct{}

// NewService returns a CalcService backed by the evaluator function
// registered via RegisterEvaluator (normally calcengine.Evaluate).
func NewService() CalcService { return server{} }

func (server) Evaluate(ctx context.Context, req *EvaluateRequest) (*EvaluateResponse, error) {
	if evaluateFn == nil {
		return &EvaluateResponse{Error: "rpcserver: no evaluator registered"}, nil
	}
	m, err := FromDTO(req.Model)
	if err != nil {
		return &EvaluateResponse{Error: err.Error()}, nil
	}
	if err := evaluateFn(ctx, m); err != nil {
		if ce, ok := calcerr.As(err); ok {
			return &EvaluateResponse{Model: ToDTO(m), Error: ce.Error()}, nil
		}
		return &EvaluateResponse{Model: ToDTO(m), Error: err.Error()}, nil
	}
	return &EvaluateResponse{Model: ToDTO(m)}, nil
}

// Register attaches svc to s under the calcengine.Calc service name.
func Register(s *grpc.Server, svc CalcService) {
	s.RegisterService(&grpc.ServiceDesc{
		ServiceName: "calcengine.Calc",
		HandlerType: (*CalcService)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "Evaluate", Handler: evaluateHandler},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "calcengine",
	}, svc)
}

func evaluateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(EvaluateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalcService).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/calcengine.Calc/Evaluate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CalcService).Evaluate(ctx, req.(*EvaluateRequest))
	}
	return interceptor(ctx, in, info, handler)
}
