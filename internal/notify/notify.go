// Package notify turns store changes into shopper-facing notices.
package notify

import (
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
)

// Level is the notice severity.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a toast-style message for the shopper.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Cart returns the notice for a cart change, or nil when the change should
// be silent.
func Cart(c domain.Change) *Notice {
	switch c.Kind {
	case domain.ChangeAdded:
		return success(fmt.Sprintf("Added %s to cart", c.ProductName))
	case domain.ChangeUpdated:
		if c.QuantityOnly {
			return nil
		}
		return success(fmt.Sprintf("Updated %s quantity", c.ProductName))
	case domain.ChangeRemoved:
		return success(fmt.Sprintf("Removed %s from cart", c.ProductName))
	case domain.ChangeCleared:
		return success("Cart cleared")
	default:
		return nil
	}
}

// Wishlist returns the notice for a wishlist change, or nil.
func Wishlist(c domain.Change) *Notice {
	switch c.Kind {
	case domain.ChangeAdded:
		return success(fmt.Sprintf("Added %s to wishlist", c.ProductName))
	case domain.ChangeDuplicate:
		return &Notice{Level: LevelError, Message: "Item already in wishlist"}
	case domain.ChangeRemoved:
		return success(fmt.Sprintf("Removed %s from wishlist", c.ProductName))
	case domain.ChangeCleared:
		return success("Wishlist cleared")
	default:
		return nil
	}
}

func success(msg string) *Notice {
	return &Notice{Level: LevelSuccess, Message: msg}
}
