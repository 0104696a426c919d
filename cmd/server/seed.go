package main

import (
	"context"

	"github.com/rl1809/shareit/internal/core/domain"
)

type seedTarget interface {
	AddUser(ctx context.Context, user *domain.User) error
	AddItem(ctx context.Context, item *domain.Item) error
}

// seedDemo creates two owners with a few items each and one renter.
func seedDemo(ctx context.Context, target seedTarget) error {
	users := []*domain.User{
		{Name: "Alice", Email: "alice@shareit.local"},
		{Name: "Bob", Email: "bob@shareit.local"},
		{Name: "Carol", Email: "carol@shareit.local"},
	}
	for _, u := range users {
		if err := target.AddUser(ctx, u); err != nil {
			return err
		}
	}

	items := []*domain.Item{
		{OwnerID: users[0].ID, Name: "Drill", Description: "Cordless drill with two batteries", Available: true},
		{OwnerID: users[0].ID, Name: "Tent", Description: "Four-person camping tent", Available: true},
		{OwnerID: users[1].ID, Name: "Kayak", Description: "Single kayak with paddle", Available: true},
		{OwnerID: users[1].ID, Name: "Projector", Description: "Out for repair", Available: false},
	}
	for _, it := range items {
		if err := target.AddItem(ctx, it); err != nil {
			return err
		}
	}
	return nil
}
