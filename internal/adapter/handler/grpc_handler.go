package handler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rl1809/pantry/internal/core/domain"
)

const pantryServiceName = "pantry.v1.Pantry"

// PantryServer is the server API of the pantry.v1.Pantry service.
type PantryServer interface {
	ResolveProduct(context.Context, *ResolveProductRequest) (*ProductResponse, error)
	AddItem(context.Context, *AddItemRequest) (*PantryItemResponse, error)
	UpdateItem(context.Context, *UpdateItemRequest) (*PantryItemResponse, error)
	DeleteItem(context.Context, *DeleteItemRequest) (*Empty, error)
	ListItems(context.Context, *ListItemsRequest) (*ListItemsResponse, error)
	MatchRecipes(context.Context, *MatchRecipesRequest) (*MatchRecipesResponse, error)
}

var pantryServiceDesc = grpc.ServiceDesc{
	ServiceName: pantryServiceName,
	HandlerType: (*PantryServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ResolveProduct", PantryServer.ResolveProduct),
		unaryMethod("AddItem", PantryServer.AddItem),
		unaryMethod("UpdateItem", PantryServer.UpdateItem),
		unaryMethod("DeleteItem", PantryServer.DeleteItem),
		unaryMethod("ListItems", PantryServer.ListItems),
		unaryMethod("MatchRecipes", PantryServer.MatchRecipes),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pantry/v1/pantry",
}

func RegisterPantryServer(s grpc.ServiceRegistrar, srv PantryServer) {
	s.RegisterService(&pantryServiceDesc, srv)
}

func unaryMethod[Req, Resp any](name string, call func(PantryServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PantryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + pantryServiceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(srv.(PantryServer), ctx, req.(*Req))
			})
		},
	}
}

// UnaryInterceptor bounds every call by timeout and logs its outcome.
func UnaryInterceptor(logger *zap.Logger, timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (any, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		start := time.Now()
		resp, err := next(ctx, req)
		logger.Info("grpc request",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("duration", time.Since(start)),
		)
		return resp, err
	}
}

type GRPCHandler struct {
	svc    Services
	logger *zap.Logger
}

func NewGRPCHandler(svc Services, logger *zap.Logger) *GRPCHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GRPCHandler{svc: svc, logger: logger}
}

func (h *GRPCHandler) ResolveProduct(ctx context.Context, req *ResolveProductRequest) (*ProductResponse, error) {
	res, err := h.svc.Resolver.Resolve(ctx, req.Name, req.Unit)
	if err != nil {
		return nil, h.toStatus("ResolveProduct", err)
	}
	out := toProductResponse(res)
	return &out, nil
}

func (h *GRPCHandler) AddItem(ctx context.Context, req *AddItemRequest) (*PantryItemResponse, error) {
	item, err := h.svc.Pantry.Add(ctx, req.UserID, req.Name, req.Unit, req.Quantity)
	if err != nil {
		return nil, h.toStatus("AddItem", err)
	}
	out := toPantryItemResponse(item)
	return &out, nil
}

func (h *GRPCHandler) UpdateItem(ctx context.Context, req *UpdateItemRequest) (*PantryItemResponse, error) {
	item, err := h.svc.Pantry.Update(ctx, req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, h.toStatus("UpdateItem", err)
	}
	out := toPantryItemResponse(item)
	return &out, nil
}

func (h *GRPCHandler) DeleteItem(ctx context.Context, req *DeleteItemRequest) (*Empty, error) {
	if err := h.svc.Pantry.Delete(ctx, req.UserID, req.ProductID); err != nil {
		return nil, h.toStatus("DeleteItem", err)
	}
	return &Empty{}, nil
}

func (h *GRPCHandler) ListItems(ctx context.Context, req *ListItemsRequest) (*ListItemsResponse, error) {
	items, err := h.svc.Pantry.List(ctx, req.UserID)
	if err != nil {
		return nil, h.toStatus("ListItems", err)
	}
	return &ListItemsResponse{Items: toPantryItemResponses(items)}, nil
}

func (h *GRPCHandler) MatchRecipes(ctx context.Context, req *MatchRecipesRequest) (*MatchRecipesResponse, error) {
	matches, err := h.svc.Recipes.MatchRecipes(ctx, req.UserID, req.Category)
	if err != nil {
		return nil, h.toStatus("MatchRecipes", err)
	}
	return &MatchRecipesResponse{Matches: toMatchResponses(matches)}, nil
}

func (h *GRPCHandler) toStatus(method string, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnitMismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	h.logger.Error("grpc call failed", zap.String("method", method), zap.Error(err))
	return status.Error(codes.Internal, "internal error")
}

// PantryClient calls the pantry.v1.Pantry service over the JSON codec.
type PantryClient struct {
	cc grpc.ClientConnInterface
}

func NewPantryClient(cc grpc.ClientConnInterface) *PantryClient {
	return &PantryClient{cc: cc}
}

func (c *PantryClient) ResolveProduct(ctx context.Context, in *ResolveProductRequest) (*ProductResponse, error) {
	return invoke[ProductResponse](ctx, c.cc, "ResolveProduct", in)
}

func (c *PantryClient) AddItem(ctx context.Context, in *AddItemRequest) (*PantryItemResponse, error) {
	return invoke[PantryItemResponse](ctx, c.cc, "AddItem", in)
}

func (c *PantryClient) UpdateItem(ctx context.Context, in *UpdateItemRequest) (*PantryItemResponse, error) {
	return invoke[PantryItemResponse](ctx, c.cc, "UpdateItem", in)
}

func (c *PantryClient) DeleteItem(ctx context.Context, in *DeleteItemRequest) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, "DeleteItem", in)
}

func (c *PantryClient) ListItems(ctx context.Context, in *ListItemsRequest) (*ListItemsResponse, error) {
	return invoke[ListItemsResponse](ctx, c.cc, "ListItems", in)
}

func (c *PantryClient) MatchRecipes(ctx context.Context, in *MatchRecipesRequest) (*MatchRecipesResponse, error) {
	return invoke[MatchRecipesResponse](ctx, c.cc, "MatchRecipes", in)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any) (*Resp, error) {
	out := new(Resp)
	err := cc.Invoke(ctx, "/"+pantryServiceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName))
	if err != nil {
		return nil, err
	}
	return out, nil
}
