// Package bulkfsv1 defines the bulkfs.v1.BulkFS gRPC service shared by the
// bulkfsd daemon and its clients.
//
// Messages are plain Go structs carried by a JSON codec registered under
// the "json" content-subtype, so no generated stubs are involved. Clients
// must call with grpc.CallContentSubtype(CodecName); NewBulkFSClient does.
package bulkfsv1

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/jamesainslie/bulkfs/pkg/bulkfs/engine"
	"github.com/jamesainslie/bulkfs/pkg/bulkfs/listing"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "bulkfs.v1.BulkFS"

// Full method names.
const (
	BulkFS_RenameBulk_FullMethodName = "/" + ServiceName + "/RenameBulk"
	BulkFS_DeleteBulk_FullMethodName = "/" + ServiceName + "/DeleteBulk"
	BulkFS_List_FullMethodName       = "/" + ServiceName + "/List"
	BulkFS_Status_FullMethodName     = "/" + ServiceName + "/Status"
	BulkFS_Shutdown_FullMethodName   = "/" + ServiceName + "/Shutdown"
)

// CodecName is the content-subtype of the JSON codec.
const CodecName = "json"

type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func (codec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(codec{})
}

// DeleteRequest is engine.DeleteRequest plus the removal mode.
type DeleteRequest struct {
	engine.DeleteRequest
	Trash bool `json:"trash"`
}

// ListRequest asks for a directory snapshot.
type ListRequest struct {
	Path           string   `json:"path"`
	HideHidden     bool     `json:"hide_hidden"`
	IgnoreSuffixes []string `json:"ignore_suffixes,omitempty"`
	SortBy         string   `json:"sort_by,omitempty"`
	Descending     bool     `json:"descending,omitempty"`
}

// StatusRequest is the empty Status request.
type StatusRequest struct{}

// StatusResponse describes a running daemon.
type StatusResponse struct {
	PID           int    `json:"pid"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Operations    int64  `json:"operations"`
	BaseDir       string `json:"base_dir"`
}

// ShutdownRequest is the empty Shutdown request.
type ShutdownRequest struct{}

// ShutdownResponse acknowledges a shutdown.
type ShutdownResponse struct {
	Accepted bool `json:"accepted"`
}

// BulkFSServer is implemented by the daemon.
type BulkFSServer interface {
	RenameBulk(context.Context, *engine.RenameRequest) (*engine.Summary, error)
	DeleteBulk(context.Context, *DeleteRequest) (*engine.Summary, error)
	List(context.Context, *ListRequest) (*listing.Snapshot, error)
	Status(context.Context, *StatusRequest) (*StatusResponse, error)
	Shutdown(context.Context, *ShutdownRequest) (*ShutdownResponse, error)
}

// RegisterBulkFSServer registers srv on s.
func RegisterBulkFSServer(s grpc.ServiceRegistrar, srv BulkFSServer) {
	s.RegisterService(&BulkFS_ServiceDesc, srv)
}

// unary builds a method handler for one request type.
func unary[Req any, Resp any](method string, call func(BulkFSServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BulkFSServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BulkFSServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// BulkFS_ServiceDesc describes the service for grpc.Server.RegisterService.
var BulkFS_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BulkFSServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "RenameBulk",
			Handler:    unary(BulkFS_RenameBulk_FullMethodName, BulkFSServer.RenameBulk),
		},
		{
			MethodName: "DeleteBulk",
			Handler:    unary(BulkFS_DeleteBulk_FullMethodName, BulkFSServer.DeleteBulk),
		},
		{
			MethodName: "List",
			Handler:    unary(BulkFS_List_FullMethodName, BulkFSServer.List),
		},
		{
			MethodName: "Status",
			Handler:    unary(BulkFS_Status_FullMethodName, BulkFSServer.Status),
		},
		{
			MethodName: "Shutdown",
			Handler:    unary(BulkFS_Shutdown_FullMethodName, BulkFSServer.Shutdown),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bulkfs/v1/bulkfs",
}

// BulkFSClient is the client side of the service.
type BulkFSClient interface {
	RenameBulk(ctx context.Context, in *engine.RenameRequest, opts ...grpc.CallOption) (*engine.Summary, error)
	DeleteBulk(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*engine.Summary, error)
	List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*listing.Snapshot, error)
	Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error)
	Shutdown(ctx context.Context, in *ShutdownRequest, opts ...grpc.CallOption) (*ShutdownResponse, error)
}

type bulkFSClient struct {
	cc grpc.ClientConnInterface
}

// NewBulkFSClient wraps cc. Every call uses the JSON codec.
func NewBulkFSClient(cc grpc.ClientConnInterface) BulkFSClient {
	return &bulkFSClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *bulkFSClient) RenameBulk(ctx context.Context, in *engine.RenameRequest, opts ...grpc.CallOption) (*engine.Summary, error) {
	return invoke[engine.Summary](ctx, c.cc, BulkFS_RenameBulk_FullMethodName, in, opts)
}

func (c *bulkFSClient) DeleteBulk(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*engine.Summary, error) {
	return invoke[engine.Summary](ctx, c.cc, BulkFS_DeleteBulk_FullMethodName, in, opts)
}

func (c *bulkFSClient) List(ctx context.Context, in *ListRequest, opts ...grpc.CallOption) (*listing.Snapshot, error) {
	return invoke[listing.Snapshot](ctx, c.cc, BulkFS_List_FullMethodName, in, opts)
}

func (c *bulkFSClient) Status(ctx context.Context, in *StatusRequest, opts ...grpc.CallOption) (*StatusResponse, error) {
	return invoke[StatusResponse](ctx, c.cc, BulkFS_Status_FullMethodName, in, opts)
}

func (c *bulkFSClient) Shutdown(ctx context.Context, in *ShutdownRequest, opts ...grpc.CallOption) (*ShutdownResponse, error) {
	return invoke[ShutdownResponse](ctx, c.cc, BulkFS_Shutdown_FullMethodName, in, opts)
}

// UnimplementedBulkFSServer can be embedded for forward compatibility.
type UnimplementedBulkFSServer struct{}

func (UnimplementedBulkFSServer) RenameBulk(context.Context, *engine.RenameRequest) (*engine.Summary, error) {
	return nil, errUnimplemented("RenameBulk")
}

func (UnimplementedBulkFSServer) DeleteBulk(context.Context, *DeleteRequest) (*engine.Summary, error) {
	return nil, errUnimplemented("DeleteBulk")
}

func (UnimplementedBulkFSServer) List(context.Context, *ListRequest) (*listing.Snapshot, error) {
	return nil, errUnimplemented("List")
}

func (UnimplementedBulkFSServer) Status(context.Context, *StatusRequest) (*StatusResponse, error) {
	return nil, errUnimplemented("Status")
}

func (UnimplementedBulkFSServer) Shutdown(context.Context, *ShutdownRequest) (*ShutdownResponse, error) {
	return nil, errUnimplemented("Shutdown")
}

func errUnimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}
