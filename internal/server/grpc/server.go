// Package grpcserver exposes the PassBox gRPC API handlers.
package grpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/passbox/internal/convert"
	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
	"github.com/and161185/passbox/internal/service"
)

// Server wires the vault service into gRPC handlers.
type Server struct {
	svc    service.VaultService
	tokens *Tokens
}

var _ PassBoxServer = (*Server)(nil)

// New constructs a gRPC server over svc.
func New(svc service.VaultService, tokens *Tokens) *Server {
	return &Server{svc: svc, tokens: tokens}
}

// LoginResponse carries the unlocked account and its access token.
type LoginResponse struct {
	Account     model.AccountResponse `json:"account"`
	AccessToken string                `json:"access_token"`
	ExpiresAt   time.Time             `json:"expires_at"`
}

// ItemEnvelope wraps an item payload with its kind on save and edit.
type ItemEnvelope struct {
	Kind string          `json:"kind"`
	Item json.RawMessage `json:"item"`
}

// ItemSelector names an item on view and delete.
type ItemSelector struct {
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	MasterPassword string `json:"master_password,omitempty"`
}

// ListRequest selects the kind to list.
type ListRequest struct {
	Kind string `json:"kind"`
}

// ListResponse lists item titles without secrets.
type ListResponse struct {
	Items []model.ItemRef `json:"items"`
}

// LengthRequest asks for a generated passcode.
type LengthRequest struct {
	Length string `json:"length"`
}

func reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := convert.ToStruct(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return out, nil
}

// username returns the caller set by AuthUnary or verifies the bearer token itself.
func (s *Server) username(ctx context.Context) (string, error) {
	if name, ok := UsernameFromCtx(ctx); ok {
		return name, nil
	}
	name, err := s.tokens.FromContext(ctx)
	if err != nil {
		return "", status.Error(codes.Unauthenticated, "no auth")
	}
	return name, nil
}

func parseKind(raw string) (model.ItemKind, error) {
	k, ok := model.ParseKind(raw)
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "unknown item kind %q", raw)
	}
	return k, nil
}

// --- Account ---

// SignUp creates a new account.
func (s *Server) SignUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.SignUpRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return reply(s.svc.SignUp(ctx, req))
}

// Login unlocks the account and returns an access token.
func (s *Server) Login(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req model.LoginRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	acc, err := s.svc.Login(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	tok, exp, err := s.tokens.Issue(acc.Username)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "issue token: %v", err)
	}
	return reply(LoginResponse{Account: acc, AccessToken: tok, ExpiresAt: exp}, nil)
}

// Logout locks the caller's account. The token stays valid but item calls fail until the next login.
func (s *Server) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	name, err := s.username(ctx)
	if err != nil {
		return nil, err
	}
	return reply(s.svc.Logout(ctx, name))
}

func (s *Server) GeneratePassword(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req LengthRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return reply(s.svc.GeneratePassword(ctx, req.Length))
}

func (s *Server) GeneratePin(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req LengthRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	return reply(s.svc.GeneratePin(ctx, req.Length))
}

// --- Items ---

// SaveItem creates an item of the envelope's kind in the caller's vault.
func (s *Server) SaveItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, env, kind, err := s.envelope(ctx, in)
	if err != nil {
		return nil, err
	}
	switch kind {
	case model.KindLoginInfo:
		var req model.SaveLoginInfoRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.SaveLoginInfo(ctx, req))
	case model.KindNote:
		var req model.SaveNoteRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.CreateNote(ctx, req))
	case model.KindCreditCard:
		var req model.SaveCreditCardRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.SaveCreditCard(ctx, req))
	default:
		var req model.SavePassportRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.SavePassport(ctx, req))
	}
}

// EditItem applies a partial update; omitted fields stay unchanged.
func (s *Server) EditItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, env, kind, err := s.envelope(ctx, in)
	if err != nil {
		return nil, err
	}
	switch kind {
	case model.KindLoginInfo:
		var req model.EditLoginInfoRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.EditLoginInfo(ctx, req))
	case model.KindNote:
		var req model.EditNoteRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.EditNote(ctx, req))
	case model.KindCreditCard:
		var req model.EditCreditCardRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.EditCreditCard(ctx, req))
	default:
		var req model.EditPassportRequest
		if err := convert.DecodeJSON(env.Item, &req); err != nil {
			return nil, toStatus(err)
		}
		req.Username = name
		return reply(s.svc.EditPassport(ctx, req))
	}
}

// ViewItem returns the decrypted item.
func (s *Server) ViewItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, sel, kind, err := s.selector(ctx, in)
	if err != nil {
		return nil, err
	}
	req := model.ViewItemRequest{Username: name, Title: sel.Title}
	switch kind {
	case model.KindLoginInfo:
		return reply(s.svc.ViewLoginInfo(ctx, req))
	case model.KindNote:
		return reply(s.svc.ViewNote(ctx, req))
	case model.KindCreditCard:
		return reply(s.svc.ViewCreditCard(ctx, req))
	default:
		return reply(s.svc.ViewPassport(ctx, req))
	}
}

// DeleteItem removes an item after re-checking the master password.
func (s *Server) DeleteItem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, sel, kind, err := s.selector(ctx, in)
	if err != nil {
		return nil, err
	}
	req := model.DeleteItemRequest{Username: name, Title: sel.Title, MasterPassword: sel.MasterPassword}
	switch kind {
	case model.KindLoginInfo:
		return reply(s.svc.DeleteLoginInfo(ctx, req))
	case model.KindNote:
		return reply(s.svc.DeleteNote(ctx, req))
	case model.KindCreditCard:
		return reply(s.svc.DeleteCreditCard(ctx, req))
	default:
		return reply(s.svc.DeletePassport(ctx, req))
	}
}

// ListItems returns the titles of one kind in insertion order.
func (s *Server) ListItems(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, err := s.username(ctx)
	if err != nil {
		return nil, err
	}
	var req ListRequest
	if err := convert.FromStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	kind, err := parseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	refs, err := s.svc.ListItems(ctx, name, kind)
	return reply(ListResponse{Items: refs}, err)
}

func (s *Server) envelope(ctx context.Context, in *structpb.Struct) (string, ItemEnvelope, model.ItemKind, error) {
	var env ItemEnvelope
	name, err := s.username(ctx)
	if err != nil {
		return "", env, "", err
	}
	if err := convert.FromStruct(in, &env); err != nil {
		return "", env, "", toStatus(err)
	}
	kind, err := parseKind(env.Kind)
	if err != nil {
		return "", env, "", err
	}
	if len(env.Item) == 0 || string(env.Item) == "null" {
		return "", env, "", toStatus(fmt.Errorf("item is required: %w", errs.ErrInvalidArgument))
	}
	return name, env, kind, nil
}

func (s *Server) selector(ctx context.Context, in *structpb.Struct) (string, ItemSelector, model.ItemKind, error) {
	var sel ItemSelector
	name, err := s.username(ctx)
	if err != nil {
		return "", sel, "", err
	}
	if err := convert.FromStruct(in, &sel); err != nil {
		return "", sel, "", toStatus(err)
	}
	kind, err := parseKind(sel.Kind)
	if err != nil {
		return "", sel, "", err
	}
	return name, sel, kind, nil
}
