package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmtran/tourbook/internal/cart"
	"github.com/vmtran/tourbook/internal/model"
)

// The ledger itself is in-memory state; the CLI persists its contents as
// plain JSON between invocations the way a screen keeps its store alive.
// Ticket selections are not secrets, so this stays outside the secstore.

func cartPath(dir string) string { return filepath.Join(dir, "cart.json") }

func loadCart(dir string, l *cart.Ledger) error {
	b, err := os.ReadFile(cartPath(dir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	var items []model.CartItem
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("load cart: %w", err)
	}
	for _, it := range items {
		l.AddItem(it)
	}
	return nil
}

func saveCart(dir string, l *cart.Ledger) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	b, err := json.MarshalIndent(l.Items(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(cartPath(dir), b, 0o600); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}
