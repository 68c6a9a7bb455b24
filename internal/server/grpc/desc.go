package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "passbox.v1.PassBox"

// Method names.
const (
	MethodSignUp           = "SignUp"
	MethodLogin            = "Login"
	MethodLogout           = "Logout"
	MethodGeneratePassword = "GeneratePassword"
	MethodGeneratePin      = "GeneratePin"
	MethodSaveItem         = "SaveItem"
	MethodEditItem         = "EditItem"
	MethodViewItem         = "ViewItem"
	MethodDeleteItem       = "DeleteItem"
	MethodListItems        = "ListItems"
)

// FullMethod returns the "/service/method" path used by clients and interceptors.
func FullMethod(name string) string { return "/" + ServiceName + "/" + name }

// PublicMethods need no bearer token.
var PublicMethods = map[string]bool{
	FullMethod(MethodSignUp):           true,
	FullMethod(MethodLogin):            true,
	FullMethod(MethodGeneratePassword): true,
	FullMethod(MethodGeneratePin):      true,
}

// PassBoxServer is the handler set behind ServiceDesc. Every message is a
// google.protobuf.Struct whose fields follow the JSON names of the model types.
type PassBoxServer interface {
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Login(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Logout(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GeneratePassword(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GeneratePin(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ViewItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteItem(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(PassBoxServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func method(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PassBoxServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PassBoxServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the PassBox service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PassBoxServer)(nil),
	Methods: []grpc.MethodDesc{
		method(MethodSignUp, PassBoxServer.SignUp),
		method(MethodLogin, PassBoxServer.Login),
		method(MethodLogout, PassBoxServer.Logout),
		method(MethodGeneratePassword, PassBoxServer.GeneratePassword),
		method(MethodGeneratePin, PassBoxServer.GeneratePin),
		method(MethodSaveItem, PassBoxServer.SaveItem),
		method(MethodEditItem, PassBoxServer.EditItem),
		method(MethodViewItem, PassBoxServer.ViewItem),
		method(MethodDeleteItem, PassBoxServer.DeleteItem),
		method(MethodListItems, PassBoxServer.ListItems),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "passbox/v1/passbox.proto",
}

// Register attaches srv to gs.
func Register(gs grpc.ServiceRegistrar, srv PassBoxServer) {
	gs.RegisterService(&ServiceDesc, srv)
}
