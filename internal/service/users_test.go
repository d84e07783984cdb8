package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUsers_Me_WithPartner(t *testing.T) {
	a, b := newUser("a@x.io", "A"), newUser("b@x.io", "B")
	pair(a, b)
	s := NewUserService(newFakeUsers(a, b))

	p, err := s.Me(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, p.User.ID)
	require.NotNil(t, p.Partner)
	require.Equal(t, "B", p.Partner.Name)

	solo := newUser("s@x.io", "S")
	s = NewUserService(newFakeUsers(solo))
	p, err = s.Me(context.Background(), solo.ID)
	require.NoError(t, err)
	require.Nil(t, p.Partner)
}

func TestUsers_UpdateMe(t *testing.T) {
	u := newUser("a@x.io", "A")
	s := NewUserService(newFakeUsers(u))
	ctx := context.Background()

	p, err := s.UpdateMe(ctx, u.ID, model.ProfileUpdate{Name: strPtr("  Anna "), ReminderTime: strPtr("21:30")})
	require.NoError(t, err)
	require.Equal(t, "Anna", p.User.Name)
	require.Equal(t, "21:30", p.User.ReminderTime)

	_, err = s.UpdateMe(ctx, u.ID, model.ProfileUpdate{Name: strPtr(" ")})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = s.UpdateMe(ctx, u.ID, model.ProfileUpdate{ReminderTime: strPtr("25:00")})
	require.ErrorIs(t, err, errs.ErrValidation)

	p, err = s.UpdateMe(ctx, u.ID, model.ProfileUpdate{ReminderTime: strPtr("")})
	require.NoError(t, err, "empty reminder clears it")
	require.Empty(t, p.User.ReminderTime)
}

func TestUsers_Search(t *testing.T) {
	me := newUser("me@x.io", "Me")
	s := NewUserService(newFakeUsers(me, newUser("ann@x.io", "Ann"), newUser("anton@y.io", "Anton")))

	res, err := s.Search(context.Background(), me.ID, "AN")
	require.NoError(t, err)
	require.Len(t, res, 2)

	res, err = s.Search(context.Background(), me.ID, "me@")
	require.NoError(t, err)
	require.Empty(t, res, "caller is excluded")

	res, err = s.Search(context.Background(), me.ID, "  ")
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestUsers_SavePushSubscription(t *testing.T) {
	u := newUser("a@x.io", "A")
	users := newFakeUsers(u)
	s := NewUserService(users)

	var sub model.PushSubscription
	sub.Endpoint = "https://push.example/x"
	require.ErrorIs(t, s.SavePushSubscription(context.Background(), u.ID, sub), errs.ErrValidation)

	sub.Keys.P256dh, sub.Keys.Auth = "p", "a"
	require.NoError(t, s.SavePushSubscription(context.Background(), u.ID, sub))

	var stored model.PushSubscription
	require.NoError(t, json.Unmarshal([]byte(users.byID[u.ID].PushSubscription), &stored))
	require.Equal(t, sub, stored)
}

func TestUsers_DeleteAccount_UnpairsPartner(t *testing.T) {
	a, b := newUser("a@x.io", "A"), newUser("b@x.io", "B")
	pair(a, b)
	users := newFakeUsers(a, b)
	s := NewUserService(users)

	require.NoError(t, s.DeleteAccount(context.Background(), a.ID))
	require.False(t, users.byID[b.ID].HasPartner())
	require.ErrorIs(t, s.DeleteAccount(context.Background(), a.ID), errs.ErrNotFound)
}
