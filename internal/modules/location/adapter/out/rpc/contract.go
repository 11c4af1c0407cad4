// Package rpc is the wire contract between vecino and out-of-process
// location sensors. Messages travel as JSON over gRPC.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey            = "location"
	serviceName             = "vecino.location.v1.Sensor"
	jsonCodecName           = "json"
	methodGetMetadata       = "/" + serviceName + "/GetMetadata"
	methodRequestPermission = "/" + serviceName + "/RequestPermission"
	methodCurrentPosition   = "/" + serviceName + "/CurrentPosition"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "VECINO_LOCATION_PLUGIN",
	MagicCookieValue: "vecino",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type PermissionResponse struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

type PositionRequest struct {
	MaxAgeMS int64 `json:"max_age_ms"`
}

type PositionResponse struct {
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Accuracy        float64 `json:"accuracy"`
	TimestampUnixMS int64   `json:"timestamp_unix_ms"`
}

type SensorServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	RequestPermission(ctx context.Context, in *Empty) (*PermissionResponse, error)
	CurrentPosition(ctx context.Context, in *PositionRequest) (*PositionResponse, error)
}

type SensorClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	RequestPermission(ctx context.Context) (*PermissionResponse, error)
	CurrentPosition(ctx context.Context, in *PositionRequest) (*PositionResponse, error)
}

type sensorClient struct {
	conn *grpc.ClientConn
}

func NewSensorClient(conn *grpc.ClientConn) SensorClient {
	return &sensorClient{conn: conn}
}

func (c *sensorClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sensorClient) RequestPermission(ctx context.Context) (*PermissionResponse, error) {
	out := &PermissionResponse{}
	if err := c.conn.Invoke(ctx, methodRequestPermission, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *sensorClient) CurrentPosition(ctx context.Context, in *PositionRequest) (*PositionResponse, error) {
	out := &PositionResponse{}
	if err := c.conn.Invoke(ctx, methodCurrentPosition, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func unary[Req, Resp any](name, fullMethod string, call func(context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				typed, ok := req.(*Req)
				if !ok {
					return nil, fmt.Errorf("invalid request type")
				}
				return call(ctx, typed)
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterSensorServer(server grpc.ServiceRegistrar, impl SensorServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*SensorServer)(nil),
		Methods: []grpc.MethodDesc{
			unary("GetMetadata", methodGetMetadata, impl.GetMetadata),
			unary("RequestPermission", methodRequestPermission, impl.RequestPermission),
			unary("CurrentPosition", methodCurrentPosition, impl.CurrentPosition),
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "schemas/location-sensor-v1.proto",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl SensorServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterSensorServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewSensorClient(conn), nil
}

func PluginMap(impl SensorServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
