package convert

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/and161185/passbox/internal/errs"
	"github.com/and161185/passbox/internal/model"
)

func TestToStruct_FieldNames(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	s, err := ToStruct(model.ItemRef{ID: id, Kind: model.KindNote, Title: "diary"})
	require.NoError(t, err)
	require.Equal(t, id.String(), s.Fields["id"].GetStringValue())
	require.Equal(t, "note", s.Fields["kind"].GetStringValue())
	require.Equal(t, "diary", s.Fields["title"].GetStringValue())
}

func TestToStruct_NotObject(t *testing.T) {
	_, err := ToStruct([]string{"a"})
	require.Error(t, err)
}

func TestFromStruct_PartialEdit(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{
		"title":   "gmail",
		"website": "mail.example.com",
	})
	require.NoError(t, err)

	var req model.EditLoginInfoRequest
	require.NoError(t, FromStruct(in, &req))
	require.Equal(t, "gmail", req.Title)
	require.NotNil(t, req.Website)
	require.Equal(t, "mail.example.com", *req.Website)
	require.Nil(t, req.Password)
	require.Nil(t, req.NewTitle)
}

func TestFromStruct_Rejects(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"title": "x", "colour": "red"})
	require.NoError(t, err)
	var req model.SaveNoteRequest
	require.ErrorIs(t, FromStruct(in, &req), errs.ErrInvalidArgument)

	in, err = structpb.NewStruct(map[string]any{"title": 42.0})
	require.NoError(t, err)
	require.ErrorIs(t, FromStruct(in, &req), errs.ErrInvalidArgument)
}

func TestFromStruct_Nil(t *testing.T) {
	var req model.LoginRequest
	require.NoError(t, FromStruct(nil, &req))
	require.Empty(t, req.Username)
}

func TestPasscodeLengthSurvivesNumberEncoding(t *testing.T) {
	s, err := ToStruct(model.Passcode{Value: "abc", Length: 3})
	require.NoError(t, err)
	var out model.Passcode
	require.NoError(t, FromStruct(s, &out))
	require.Equal(t, 3, out.Length)
}
